package deepseek

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/heartmarshall/spiral-worksheets/internal/llm"
)

const (
	defaultBaseURL = "https://api.deepseek.com/chat/completions"
	defaultModel   = "deepseek-chat"
	defaultTimeout = 30 * time.Second
)

// Options configures a Provider. Zero values fall back to the DeepSeek
// defaults.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	Persona   string
	MaxTokens int
	Timeout   time.Duration
}

// Provider calls the DeepSeek chat completions endpoint, which follows the
// OpenAI wire format. It performs a single attempt per call.
type Provider struct {
	baseURL    string
	apiKey     string
	model      string
	persona    string
	maxTokens  int
	httpClient *http.Client
	log        *slog.Logger
}

// NewProvider creates a Provider from opts.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Provider{
		baseURL:    opts.BaseURL,
		apiKey:     opts.APIKey,
		model:      opts.Model,
		persona:    opts.Persona,
		maxTokens:  opts.MaxTokens,
		httpClient: &http.Client{Timeout: opts.Timeout},
		log:        logger.With("adapter", "deepseek"),
	}
}

// NewProviderWithURL creates a Provider with a custom endpoint (for testing).
func NewProviderWithURL(baseURL, apiKey string, logger *slog.Logger) *Provider {
	return NewProvider(Options{BaseURL: baseURL, APIKey: apiKey}, logger)
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete sends one chat completion request.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (llm.Reply, error) {
	payload := chatRequest{
		Model: p.model,
		Messages: []chatMessage{
			{Role: "system", Content: llm.SystemPrompt(p.persona, req)},
			{Role: "user", Content: req.Prompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   p.maxTokens,
	}
	if req.JSON {
		payload.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return llm.Reply{}, fmt.Errorf("deepseek: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, bytes.NewReader(body))
	if err != nil {
		return llm.Reply{}, fmt.Errorf("deepseek: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	start := time.Now()
	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return llm.Reply{}, fmt.Errorf("deepseek: %w", err)
		}
		p.log.WarnContext(ctx, "deepseek request failed", slog.String("error", err.Error()))
		return llm.Reply{}, fmt.Errorf("deepseek: %w", llm.NetworkError(err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return llm.Reply{}, fmt.Errorf("deepseek: read body: %w", llm.NetworkError(err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return llm.Reply{}, fmt.Errorf("deepseek: %w", &llm.HTTPError{
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(respBody)),
		})
	}

	var decoded chatResponse
	if err := json.Unmarshal(respBody, &decoded); err != nil {
		return llm.Reply{}, fmt.Errorf("deepseek: decode response: %w: %v", llm.ErrMalformedJSON, err)
	}
	if len(decoded.Choices) == 0 || decoded.Choices[0].Message.Content == nil {
		return llm.Reply{}, fmt.Errorf("deepseek: %w", llm.ErrNoChoices)
	}
	text := *decoded.Choices[0].Message.Content

	p.log.DebugContext(ctx, "deepseek response",
		slog.Bool("json", req.JSON),
		slog.Int("chars", len([]rune(text))),
		slog.Duration("duration", time.Since(start)),
	)

	reply := llm.Reply{Text: text}
	if req.JSON {
		obj, err := llm.DecodeObject(text)
		if err != nil {
			return llm.Reply{}, fmt.Errorf("deepseek: %w", err)
		}
		reply.JSON = obj
	}
	return reply, nil
}
