package generation

// session.go maintains the single shared provider session: an authenticated
// REST endpoint for job submission plus a websocket carrying asynchronous
// job events (progress, completed, failed). One session serves the whole
// process; jobs register interest in their project id and the read loop
// routes events to them.

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// SessionConfig carries the provider connection settings.
type SessionConfig struct {
	RestEndpoint   string
	SocketEndpoint string
	AppID          string
	Username       string
	Password       string
}

// Configured reports whether enough settings are present to attempt a
// connection. An unconfigured session means the deployment runs on the mock
// generator.
func (c SessionConfig) Configured() bool {
	return c.RestEndpoint != "" && c.SocketEndpoint != "" && c.Username != ""
}

// jobEvent is one routed provider notification for a single project.
type jobEvent struct {
	kind    string // "progress", "completed", "failed"
	percent int
	urls    []string
	errMsg  string
}

// wireEvent is the provider's websocket frame format.
type wireEvent struct {
	Type       string   `json:"type"`
	ProjectID  string   `json:"projectId"`
	Percent    int      `json:"percent"`
	ResultURLs []string `json:"resultUrls"`
	Error      string   `json:"error"`
}

// Session is the process-wide provider connection. It is shared read-mostly
// across all jobs; no job may re-initialize or tear it down. On unexpected
// disconnection the session marks itself dead and fails all waiting jobs;
// re-establishment is the process supervisor's concern, not ours.
type Session struct {
	cfg        SessionConfig
	httpClient *http.Client
	conn       *websocket.Conn

	mu        sync.Mutex
	pending   map[string]chan jobEvent
	connected atomic.Bool
}

type loginRequest struct {
	AppID    string `json:"appId"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
	Error string `json:"error,omitempty"`
}

// Connect authenticates against the provider REST endpoint and opens the
// event websocket.
func Connect(ctx context.Context, cfg SessionConfig) (*Session, error) {
	s := &Session{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		pending: make(map[string]chan jobEvent),
	}

	token, err := s.login(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}

	header := http.Header{}
	header.Set("Authorization", "Bearer "+token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, cfg.SocketEndpoint, header)
	if err != nil {
		return nil, fmt.Errorf("%w: dial socket: %v", ErrUpstreamUnavailable, err)
	}
	s.conn = conn
	s.connected.Store(true)

	go s.readLoop()

	log.Info().
		Str("rest_endpoint", cfg.RestEndpoint).
		Str("socket_endpoint", cfg.SocketEndpoint).
		Msg("Provider session established")

	return s, nil
}

func (s *Session) login(ctx context.Context) (string, error) {
	body, err := json.Marshal(loginRequest{
		AppID:    s.cfg.AppID,
		Username: s.cfg.Username,
		Password: s.cfg.Password,
	})
	if err != nil {
		return "", fmt.Errorf("marshal login request: %w", err)
	}

	url := s.cfg.RestEndpoint + "/v1/auth/login"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create login request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read login response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login returned status %d: %s", resp.StatusCode, truncateString(string(respBody), 200))
	}

	var loginResp loginResponse
	if err := json.Unmarshal(respBody, &loginResp); err != nil {
		return "", fmt.Errorf("parse login response: %w", err)
	}
	if loginResp.Token == "" {
		return "", fmt.Errorf("login returned no token: %s", loginResp.Error)
	}
	return loginResp.Token, nil
}

// Connected reports whether the event socket is still up. Checked as a
// precondition before each provider submission.
func (s *Session) Connected() bool {
	return s != nil && s.connected.Load()
}

// Close tears down the websocket. Only the process lifecycle may call this.
func (s *Session) Close() error {
	s.connected.Store(false)
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

func (s *Session) readLoop() {
	for {
		var ev wireEvent
		if err := s.conn.ReadJSON(&ev); err != nil {
			log.Error().Err(err).Msg("Provider socket disconnected, failing in-flight jobs")
			s.connected.Store(false)
			s.failAllPending("provider connection lost")
			return
		}
		s.dispatch(ev)
	}
}

func (s *Session) dispatch(ev wireEvent) {
	s.mu.Lock()
	ch, ok := s.pending[ev.ProjectID]
	s.mu.Unlock()
	if !ok {
		log.Debug().Str("project_id", ev.ProjectID).Str("type", ev.Type).Msg("Event for unknown project, dropping")
		return
	}

	je := jobEvent{kind: ev.Type, percent: ev.Percent, urls: ev.ResultURLs, errMsg: ev.Error}
	if ev.Type != "completed" && ev.Type != "failed" {
		// Progress ticks are droppable. The read loop must never block on
		// one slow waiter: every other job shares this socket.
		select {
		case ch <- je:
		default:
		}
		return
	}

	// Terminal events must reach the waiter, but still without an unbounded
	// blocking send: shed stale progress ticks until the event fits, and
	// drop it once the waiter has unregistered (timeout or cancellation).
	for {
		select {
		case ch <- je:
			return
		default:
		}
		s.mu.Lock()
		cur, registered := s.pending[ev.ProjectID]
		s.mu.Unlock()
		if !registered || cur != ch {
			log.Debug().Str("project_id", ev.ProjectID).Str("type", ev.Type).Msg("Terminal event for departed waiter, dropping")
			return
		}
		select {
		case <-ch:
		default:
		}
	}
}

func (s *Session) failAllPending(reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, ch := range s.pending {
		select {
		case ch <- jobEvent{kind: "failed", errMsg: reason}:
		default:
		}
		delete(s.pending, id)
	}
}

// register opens an event channel for a project id. The channel is buffered
// so the read loop never blocks on progress ticks.
func (s *Session) register(projectID string) chan jobEvent {
	ch := make(chan jobEvent, 16)
	s.mu.Lock()
	s.pending[projectID] = ch
	s.mu.Unlock()
	return ch
}

func (s *Session) unregister(projectID string) {
	s.mu.Lock()
	delete(s.pending, projectID)
	s.mu.Unlock()
}

// truncateString truncates a string to maxLen, appending "..." if truncated.
func truncateString(str string, maxLen int) string {
	if len(str) <= maxLen {
		return str
	}
	return str[:maxLen] + "..."
}
