package llm

import (
	"context"
	"testing"

	pkgerrors "study-buddy/pkg/errors"
)

// stubClient 固定返回值的测试客户端
type stubClient struct {
	provider string
	model    string
	reply    string
	err      error
	calls    int
}

func (s *stubClient) Generate(prompt string, options GenerateOptions) (string, error) {
	return s.GenerateWithContext(context.Background(), prompt, options)
}

func (s *stubClient) GenerateWithContext(ctx context.Context, prompt string, options GenerateOptions) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubClient) Chat(messages []Message, options GenerateOptions) (string, error) {
	return s.ChatWithContext(context.Background(), messages, options)
}

func (s *stubClient) ChatWithContext(ctx context.Context, messages []Message, options GenerateOptions) (string, error) {
	s.calls++
	return s.reply, s.err
}

func (s *stubClient) Model() string           { return s.model }
func (s *stubClient) Provider() string        { return s.provider }
func (s *stubClient) SetModel(model string)   { s.model = model }
func (s *stubClient) SetAPIKey(apiKey string) {}

func TestNewClientProviders(t *testing.T) {
	client, err := NewClient("groq", "", "key", "")
	if err != nil {
		t.Fatalf("NewClient(groq) failed: %v", err)
	}
	if client.Provider() != "groq" {
		t.Errorf("provider = %q, want groq", client.Provider())
	}
	if client.Model() != "llama-3.3-70b-versatile" {
		t.Errorf("default model = %q", client.Model())
	}

	client, err = NewClient("ollama", "", "", "")
	if err != nil {
		t.Fatalf("NewClient(ollama) failed: %v", err)
	}
	if client.Provider() != "ollama" {
		t.Errorf("provider = %q, want ollama", client.Provider())
	}
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	if opts.Temperature != 0.7 || opts.MaxTokens != 2048 || opts.TopP != 0.9 {
		t.Errorf("unexpected defaults: %+v", opts)
	}
}

func TestRateLimitedClientPassthrough(t *testing.T) {
	inner := &stubClient{provider: "groq", model: "m", reply: "hello"}
	client := NewRateLimitedClient(inner, nil)

	got, err := client.Generate("hi", DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("reply = %q", got)
	}
	if client.Provider() != "groq" || client.Model() != "m" {
		t.Error("proxy methods not forwarded")
	}
}

func TestRateLimiterConcurrency(t *testing.T) {
	limiter := NewLLMRateLimiter(map[string]LLMLimitConfig{
		"groq": {MaxConcurrent: 1},
	}, nil)

	if err := limiter.Wait(context.Background(), "groq"); err != nil {
		t.Fatalf("Wait failed: %v", err)
	}
	// 唯一的 slot 已占用
	if limiter.Allow("groq") {
		t.Error("Allow should fail while slot is held")
	}
	limiter.Release("groq")
	if !limiter.Allow("groq") {
		t.Error("Allow should succeed after Release")
	}
}

func TestFallbackClientRecoverable(t *testing.T) {
	primary := &stubClient{provider: "groq", err: pkgerrors.Wrap(pkgerrors.ErrRateLimit, "429")}
	fallback := &stubClient{provider: "ollama", reply: "local answer"}
	client := NewFallbackClient(primary, fallback, nil)

	got, err := client.Generate("hi", DefaultOptions())
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "local answer" {
		t.Errorf("reply = %q, want local answer", got)
	}
	if fallback.calls != 1 {
		t.Errorf("fallback calls = %d, want 1", fallback.calls)
	}
}

func TestFallbackClientUnrecoverable(t *testing.T) {
	primary := &stubClient{provider: "groq", err: pkgerrors.ErrConfiguration}
	fallback := &stubClient{provider: "ollama", reply: "local answer"}
	client := NewFallbackClient(primary, fallback, nil)

	if _, err := client.Generate("hi", DefaultOptions()); err == nil {
		t.Fatal("expected error for unrecoverable failure")
	}
	if fallback.calls != 0 {
		t.Errorf("fallback should not run, calls = %d", fallback.calls)
	}
}

func TestEstimateTokens(t *testing.T) {
	if got := estimateTokens(""); got != 1 {
		t.Errorf("estimateTokens(empty) = %d, want 1", got)
	}
	if got := estimateTokens("12345678"); got != 2 {
		t.Errorf("estimateTokens(8 chars) = %d, want 2", got)
	}
}
