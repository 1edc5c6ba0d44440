package assistant

import (
	"context"
	"sync"
)

// stubLLMClient scripts LLM responses for tests. When blockFirst is set, the
// first call parks until its context is cancelled, which lets tests exercise
// the supersede path.
type stubLLMClient struct {
	mu         sync.Mutex
	responses  []LLMResponse
	err        error
	calls      int
	blockFirst bool
	started    chan struct{}
}

func (s *stubLLMClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	s.mu.Lock()
	s.calls++
	call := s.calls
	s.mu.Unlock()

	if s.blockFirst && call == 1 {
		if s.started != nil {
			close(s.started)
		}
		<-ctx.Done()
		return LLMResponse{}, ctx.Err()
	}

	if s.err != nil {
		return LLMResponse{}, s.err
	}
	idx := call - 1
	if idx < len(s.responses) {
		return s.responses[idx], nil
	}
	if len(s.responses) > 0 {
		return s.responses[len(s.responses)-1], nil
	}
	return LLMResponse{Text: "ok"}, nil
}

func (s *stubLLMClient) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
