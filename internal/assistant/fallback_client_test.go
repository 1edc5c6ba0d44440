package assistant

import (
	"context"
	"errors"
	"testing"
)

func TestFallbackClientUsesPrimaryFirst(t *testing.T) {
	primary := &stubLLMClient{responses: []LLMResponse{{Text: "primary"}}}
	fallback := &stubLLMClient{responses: []LLMResponse{{Text: "fallback"}}}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "primary" {
		t.Errorf("text = %q, want primary", resp.Text)
	}
	if fallback.callCount() != 0 {
		t.Error("fallback must not be called when primary succeeds")
	}
}

func TestFallbackClientRetriesOnPrimaryFailure(t *testing.T) {
	primary := &stubLLMClient{err: errors.New("gemini quota")}
	fallback := &stubLLMClient{responses: []LLMResponse{{Text: "fallback"}}}
	client := NewFallbackLLMClient(primary, fallback, nil)

	resp, err := client.Complete(context.Background(), LLMRequest{})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if resp.Text != "fallback" {
		t.Errorf("text = %q, want fallback", resp.Text)
	}
}

func TestFallbackClientReturnsFallbackError(t *testing.T) {
	primaryErr := errors.New("primary down")
	fallbackErr := errors.New("fallback down")
	client := NewFallbackLLMClient(&stubLLMClient{err: primaryErr}, &stubLLMClient{err: fallbackErr}, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if !errors.Is(err, fallbackErr) {
		t.Errorf("err = %v, want the fallback error", err)
	}
}

func TestFallbackClientWithoutFallback(t *testing.T) {
	primaryErr := errors.New("primary down")
	client := NewFallbackLLMClient(&stubLLMClient{err: primaryErr}, nil, nil)

	_, err := client.Complete(context.Background(), LLMRequest{})
	if !errors.Is(err, primaryErr) {
		t.Errorf("err = %v, want the primary error", err)
	}
}

func TestFallbackClientSkipsFallbackWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fallback := &stubLLMClient{responses: []LLMResponse{{Text: "fallback"}}}
	client := NewFallbackLLMClient(&stubLLMClient{err: context.Canceled}, fallback, nil)

	_, err := client.Complete(ctx, LLMRequest{})
	if err == nil {
		t.Fatal("expected an error on a cancelled context")
	}
	if fallback.callCount() != 0 {
		t.Error("a cancelled turn must not burn a fallback call")
	}
}
