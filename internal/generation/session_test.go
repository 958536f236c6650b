package generation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

// newProjectServer fakes the provider's REST surface: every submission is
// accepted under the given project id.
func newProjectServer(t *testing.T, projectID string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/projects" {
			http.NotFound(w, r)
			return
		}
		var pr projectRequest
		if err := json.NewDecoder(r.Body).Decode(&pr); err != nil {
			t.Errorf("decode project request: %v", err)
		}
		if err := json.NewEncoder(w).Encode(projectResponse{ProjectID: projectID}); err != nil {
			t.Errorf("encode project response: %v", err)
		}
	}))
}

// newOpenSession builds a session that believes its socket is up, so
// dispatch can be driven directly with scripted events.
func newOpenSession(restURL string) *Session {
	s := &Session{
		cfg:        SessionConfig{RestEndpoint: restURL},
		httpClient: http.DefaultClient,
		pending:    make(map[string]chan jobEvent),
	}
	s.connected.Store(true)
	return s
}

func waitForWaiter(t *testing.T, s *Session, projectID string) chan jobEvent {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		s.mu.Lock()
		ch, ok := s.pending[projectID]
		s.mu.Unlock()
		if ok {
			return ch
		}
		select {
		case <-deadline:
			t.Fatal("job never registered for events")
		case <-time.After(2 * time.Millisecond):
		}
	}
}

type generateResult struct {
	res *Result
	err error
}

func TestProviderGenerateCompleted(t *testing.T) {
	srv := newProjectServer(t, "p1")
	defer srv.Close()
	s := newOpenSession(srv.URL)
	client := NewProviderClient(s, DefaultParams(), 5*time.Second)

	var mu sync.Mutex
	var ticks []int
	done := make(chan generateResult, 1)
	go func() {
		res, err := client.Generate(context.Background(), Request{PositivePrompt: "cozy cabin bedroom"}, func(pct int) {
			mu.Lock()
			ticks = append(ticks, pct)
			mu.Unlock()
		})
		done <- generateResult{res, err}
	}()

	waitForWaiter(t, s, "p1")
	s.dispatch(wireEvent{Type: "progress", ProjectID: "p1", Percent: 25})
	s.dispatch(wireEvent{Type: "progress", ProjectID: "p1", Percent: 75})
	s.dispatch(wireEvent{Type: "completed", ProjectID: "p1", ResultURLs: []string{"https://cdn.example/p1.jpg"}})

	out := <-done
	if out.err != nil {
		t.Fatalf("Generate: %v", out.err)
	}
	if out.res.URL != "https://cdn.example/p1.jpg" {
		t.Errorf("result URL = %q", out.res.URL)
	}
	mu.Lock()
	defer mu.Unlock()
	if len(ticks) != 2 || ticks[0] != 25 || ticks[1] != 75 {
		t.Errorf("progress ticks = %v, want [25 75]", ticks)
	}
}

func TestProviderGenerateFailed(t *testing.T) {
	srv := newProjectServer(t, "p2")
	defer srv.Close()
	s := newOpenSession(srv.URL)
	client := NewProviderClient(s, DefaultParams(), 5*time.Second)

	done := make(chan generateResult, 1)
	go func() {
		res, err := client.Generate(context.Background(), Request{PositivePrompt: "x"}, nil)
		done <- generateResult{res, err}
	}()

	waitForWaiter(t, s, "p2")
	s.dispatch(wireEvent{Type: "failed", ProjectID: "p2", Error: "NSFW filter"})

	out := <-done
	if !errors.Is(out.err, ErrGenerationFailed) {
		t.Fatalf("err = %v, want ErrGenerationFailed", out.err)
	}
	if !strings.Contains(out.err.Error(), "NSFW filter") {
		t.Errorf("err = %v, want provider message preserved", out.err)
	}
}

func TestProviderGenerateTimeout(t *testing.T) {
	srv := newProjectServer(t, "p3")
	defer srv.Close()
	s := newOpenSession(srv.URL)
	client := NewProviderClient(s, DefaultParams(), 20*time.Millisecond)

	_, err := client.Generate(context.Background(), Request{PositivePrompt: "x"}, nil)
	if !errors.Is(err, ErrGenerationTimeout) {
		t.Fatalf("err = %v, want ErrGenerationTimeout", err)
	}
}

func TestProviderGenerateDisconnected(t *testing.T) {
	s := newOpenSession("http://unused.invalid")
	s.connected.Store(false)
	client := NewProviderClient(s, DefaultParams(), time.Second)

	_, err := client.Generate(context.Background(), Request{PositivePrompt: "x"}, nil)
	if !errors.Is(err, ErrUpstreamUnavailable) {
		t.Fatalf("err = %v, want ErrUpstreamUnavailable", err)
	}
}

// A terminal event for a waiter that already gave up (timed out, cancelled)
// must not block the read loop: other jobs share the socket.
func TestDispatchTerminalAfterWaiterGone(t *testing.T) {
	s := newOpenSession("")
	ch := s.register("p4")
	for i := 0; i < cap(ch); i++ {
		s.dispatch(wireEvent{Type: "progress", ProjectID: "p4", Percent: i})
	}
	s.unregister("p4")

	done := make(chan struct{})
	go func() {
		s.dispatch(wireEvent{Type: "completed", ProjectID: "p4", ResultURLs: []string{"u"}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked on a departed waiter")
	}
}

// With the waiter still registered but its buffer full of stale progress
// ticks, a terminal event sheds ticks instead of blocking, and the waiter
// still receives it.
func TestDispatchTerminalShedsStaleProgress(t *testing.T) {
	s := newOpenSession("")
	ch := s.register("p5")
	defer s.unregister("p5")
	for i := 0; i < cap(ch); i++ {
		s.dispatch(wireEvent{Type: "progress", ProjectID: "p5", Percent: i})
	}

	done := make(chan struct{})
	go func() {
		s.dispatch(wireEvent{Type: "completed", ProjectID: "p5", ResultURLs: []string{"u"}})
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch blocked despite a registered waiter")
	}

	var last jobEvent
	for len(ch) > 0 {
		last = <-ch
	}
	if last.kind != "completed" {
		t.Errorf("last buffered event = %q, want completed", last.kind)
	}
}

// An overflowing progress tick is dropped rather than queued behind a slow
// waiter.
func TestDispatchDropsOverflowProgress(t *testing.T) {
	s := newOpenSession("")
	ch := s.register("p6")
	defer s.unregister("p6")
	for i := 0; i < cap(ch)+5; i++ {
		s.dispatch(wireEvent{Type: "progress", ProjectID: "p6", Percent: i})
	}
	if len(ch) != cap(ch) {
		t.Errorf("buffered events = %d, want exactly %d", len(ch), cap(ch))
	}
}
