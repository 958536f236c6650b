package generation

// provider.go is the live-provider Generator: REST job submission followed
// by an event-driven completion wait on the shared session socket.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

// ProviderClient generates images through the live provider session.
type ProviderClient struct {
	session *Session
	params  Params
	timeout time.Duration
}

// NewProviderClient wraps an established session. timeout bounds the
// completion wait per job; zero means DefaultTimeout.
func NewProviderClient(session *Session, params Params, timeout time.Duration) *ProviderClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &ProviderClient{session: session, params: params, timeout: timeout}
}

// --- provider REST request/response types ---

type projectRequest struct {
	ModelID         string  `json:"modelId"`
	PositivePrompt  string  `json:"positivePrompt"`
	NegativePrompt  string  `json:"negativePrompt"`
	Steps           int     `json:"steps"`
	Guidance        float64 `json:"guidance"`
	NumberOfImages  int     `json:"numberOfImages"`
	Scheduler       string  `json:"scheduler"`
	TimeStepSpacing string  `json:"timeStepSpacing"`
	SizePreset      string  `json:"sizePreset"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`

	SourceImage     string  `json:"sourceImage,omitempty"` // base64
	SourceInfluence float64 `json:"sourceInfluence,omitempty"`
}

type projectResponse struct {
	ProjectID string `json:"projectId"`
	Error     string `json:"error,omitempty"`
}

// Generate submits one job and waits for the session's unified done-or-failed
// signal. Intermediate provider progress is forwarded to the callback.
func (c *ProviderClient) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if !c.session.Connected() {
		return nil, ErrUpstreamUnavailable
	}

	startTime := time.Now()
	projectID, err := c.submit(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Debug().
		Str("project_id", projectID).
		Str("prompt", truncateString(req.PositivePrompt, 100)).
		Bool("has_source", req.SourceImage != nil).
		Msg("Provider job submitted, awaiting completion")

	ch := c.session.register(projectID)
	defer c.session.unregister(projectID)

	timer := time.NewTimer(c.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
			return nil, fmt.Errorf("%w: project %s after %s", ErrGenerationTimeout, projectID, c.timeout)
		case ev := <-ch:
			switch ev.kind {
			case "progress":
				if progress != nil {
					progress(ev.percent)
				}
			case "completed":
				if len(ev.urls) == 0 {
					return nil, fmt.Errorf("%w: project %s completed with no results", ErrGenerationFailed, projectID)
				}
				log.Debug().
					Str("project_id", projectID).
					Dur("duration", time.Since(startTime)).
					Msg("Provider job completed")
				return &Result{URL: ev.urls[0]}, nil
			case "failed":
				return nil, fmt.Errorf("%w: %s", ErrGenerationFailed, ev.errMsg)
			}
		}
	}
}

func (c *ProviderClient) submit(ctx context.Context, req Request) (string, error) {
	pr := projectRequest{
		ModelID:         c.params.ModelID,
		PositivePrompt:  req.PositivePrompt,
		NegativePrompt:  req.NegativePrompt,
		Steps:           c.params.Steps,
		Guidance:        c.params.Guidance,
		NumberOfImages:  c.params.NumberOfImages,
		Scheduler:       c.params.Scheduler,
		TimeStepSpacing: c.params.TimeStepSpacing,
		SizePreset:      "custom",
		Width:           c.params.Width,
		Height:          c.params.Height,
	}
	if req.SourceImage != nil {
		pr.SourceImage = base64.StdEncoding.EncodeToString(req.SourceImage)
		pr.SourceInfluence = req.SourceInfluence
	}

	body, err := json.Marshal(pr)
	if err != nil {
		return "", fmt.Errorf("marshal project request: %w", err)
	}

	url := c.session.cfg.RestEndpoint + "/v1/projects"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create project request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.session.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: submit: %v", ErrGenerationFailed, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read project response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncateString(string(respBody), 500)).
			Msg("Provider rejected job submission")
		return "", fmt.Errorf("%w: status %d", ErrGenerationFailed, resp.StatusCode)
	}

	var projResp projectResponse
	if err := json.Unmarshal(respBody, &projResp); err != nil {
		return "", fmt.Errorf("parse project response: %w", err)
	}
	if projResp.ProjectID == "" {
		return "", fmt.Errorf("%w: no project id returned: %s", ErrGenerationFailed, projResp.Error)
	}
	return projResp.ProjectID, nil
}
