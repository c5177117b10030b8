package deepseek

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/llm"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func replyWith(content string) string {
	b, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(b)
}

// ---------------------------------------------------------------------------
// Request shape
// ---------------------------------------------------------------------------

func TestProvider_Complete_TextMode(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(replyWith("我今天很開心。")))
	}))
	defer srv.Close()

	p := NewProvider(Options{BaseURL: srv.URL, APIKey: "sk-test", Persona: "老師。"}, newTestLogger())
	reply, err := p.Complete(context.Background(), llm.Request{Prompt: "造句", Temperature: 0.7})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reply.Text != "我今天很開心。" {
		t.Errorf("Text = %q", reply.Text)
	}
	if reply.JSON != nil {
		t.Errorf("JSON = %v, want nil in text mode", reply.JSON)
	}
	if got.Model != defaultModel {
		t.Errorf("model = %q, want %q", got.Model, defaultModel)
	}
	if got.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", got.Temperature)
	}
	if got.ResponseFormat != nil {
		t.Errorf("response_format = %+v, want omitted", got.ResponseFormat)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("len(messages) = %d, want 2", len(got.Messages))
	}
	if got.Messages[0].Role != "system" || got.Messages[0].Content != "老師。" {
		t.Errorf("system message = %+v", got.Messages[0])
	}
	if got.Messages[1].Role != "user" || got.Messages[1].Content != "造句" {
		t.Errorf("user message = %+v", got.Messages[1])
	}
}

func TestProvider_Complete_JSONMode(t *testing.T) {
	t.Parallel()

	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(replyWith(`{"question": "題目", "answer": "答案"}`)))
	}))
	defer srv.Close()

	p := NewProvider(Options{BaseURL: srv.URL, Persona: "老師。"}, newTestLogger())
	reply, err := p.Complete(context.Background(), llm.Request{Prompt: "出題", JSON: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.ResponseFormat == nil || got.ResponseFormat.Type != "json_object" {
		t.Errorf("response_format = %+v, want json_object", got.ResponseFormat)
	}
	if !strings.HasSuffix(got.Messages[0].Content, llm.JSONDirective) {
		t.Errorf("system message = %q, want JSON directive appended", got.Messages[0].Content)
	}
	if reply.JSON["question"] != "題目" || reply.JSON["answer"] != "答案" {
		t.Errorf("JSON = %v", reply.JSON)
	}
}

// ---------------------------------------------------------------------------
// Failure kinds
// ---------------------------------------------------------------------------

func TestProvider_Complete_HTTPError(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	p := NewProviderWithURL(srv.URL, "k", newTestLogger())
	_, err := p.Complete(context.Background(), llm.Request{Prompt: "p"})

	var httpErr *llm.HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("err = %v, want *llm.HTTPError", err)
	}
	if httpErr.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", httpErr.StatusCode)
	}
	if !strings.Contains(httpErr.Body, "rate limited") {
		t.Errorf("Body = %q", httpErr.Body)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 (provider must not retry)", calls.Load())
	}
}

func TestProvider_Complete_MalformedJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		req  llm.Request
		want error
	}{
		{"not json envelope", `<html>oops</html>`, llm.Request{}, llm.ErrMalformedJSON},
		{"empty choices", `{"choices": []}`, llm.Request{}, llm.ErrNoChoices},
		{"null content", `{"choices": [{"message": {"content": null}}]}`, llm.Request{}, llm.ErrNoChoices},
		{"content not json", replyWith("這不是 JSON"), llm.Request{JSON: true}, llm.ErrMalformedJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewProviderWithURL(srv.URL, "k", newTestLogger()).Complete(context.Background(), tt.req)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestProvider_Complete_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewProviderWithURL(url, "k", newTestLogger()).Complete(context.Background(), llm.Request{})
	if !errors.Is(err, llm.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if !llm.Retryable(err) {
		t.Error("network error should be retryable")
	}
}

func TestProvider_Complete_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	p := NewProvider(Options{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, newTestLogger())
	_, err := p.Complete(context.Background(), llm.Request{})
	if !errors.Is(err, llm.ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork on timeout", err)
	}
}
