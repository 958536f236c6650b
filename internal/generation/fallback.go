package generation

// fallback.go selects between the live provider and the mock. The two-variant
// strategy is decided here, once per job, on an explicit precondition (live
// session still connected) rather than by catching errors deep in the call
// chain. ErrUpstreamUnavailable never escapes this type.

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Fallback is the Generator handed to the batch orchestrator. It prefers the
// provider while the session is up and silently degrades to the mock when the
// session is absent or lost.
type Fallback struct {
	session  *Session
	provider *ProviderClient
	mock     *MockGenerator
}

var _ Generator = (*Fallback)(nil)

// NewFallback wires the deployment's generator. session may be nil, in which
// case every job runs on the mock.
func NewFallback(session *Session, provider *ProviderClient, mock *MockGenerator) *Fallback {
	if mock == nil {
		mock = &MockGenerator{}
	}
	return &Fallback{session: session, provider: provider, mock: mock}
}

// Generate routes the job. The session check is the fallback precondition:
// once the shared session drops, no further provider submissions are issued.
func (f *Fallback) Generate(ctx context.Context, req Request, progress ProgressFunc) (*Result, error) {
	if f.provider != nil && f.session.Connected() {
		return f.provider.Generate(ctx, req, progress)
	}
	if f.provider != nil {
		log.Warn().Msg("Provider session lost, job running on mock generator")
	}
	return f.mock.Generate(ctx, req, progress)
}
