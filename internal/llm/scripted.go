package llm

import (
	"context"
	"sync"
)

// ScriptedClient is a Client that replays canned completions in order.
// It backs tests and the CLI's --dry-run mode, where no provider is
// configured.
type ScriptedClient struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []Call
}

// Call records one completion request for assertion.
type Call struct {
	System string
	Prompt string
}

// NewScriptedClient returns a client that answers with the given
// responses in order. Once exhausted it repeats the last response.
func NewScriptedClient(responses ...string) *ScriptedClient {
	return &ScriptedClient{responses: responses}
}

// NewFailingClient returns a client whose every call fails with err.
func NewFailingClient(err error) *ScriptedClient {
	return &ScriptedClient{err: err}
}

func (s *ScriptedClient) Complete(ctx context.Context, prompt string) (string, error) {
	return s.CompleteWithSystem(ctx, "", prompt)
}

func (s *ScriptedClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{System: systemPrompt, Prompt: userPrompt})
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", ErrNoCompletion
	}

	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

// Calls returns a copy of all recorded requests.
func (s *ScriptedClient) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Call, len(s.calls))
	copy(out, s.calls)
	return out
}
