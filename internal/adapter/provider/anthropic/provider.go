package anthropic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/heartmarshall/spiral-worksheets/internal/llm"
)

const (
	defaultModel     = "claude-sonnet-4-5"
	defaultMaxTokens = 1024
	defaultTimeout   = 30 * time.Second
)

// Options configures a Provider.
type Options struct {
	APIKey    string
	BaseURL   string
	Model     string
	Persona   string
	MaxTokens int
	Timeout   time.Duration
}

// Provider calls the Anthropic Messages API. SDK retries are disabled so
// that retry policy stays with llm.WithRetry.
type Provider struct {
	client    sdk.Client
	model     string
	persona   string
	maxTokens int64
	log       *slog.Logger
}

// NewProvider creates a Provider from opts.
func NewProvider(opts Options, logger *slog.Logger) *Provider {
	if opts.Model == "" {
		opts.Model = defaultModel
	}
	if opts.MaxTokens <= 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}

	clientOpts := []option.RequestOption{
		option.WithAPIKey(opts.APIKey),
		option.WithMaxRetries(0),
		option.WithHTTPClient(&http.Client{Timeout: opts.Timeout}),
	}
	if opts.BaseURL != "" {
		clientOpts = append(clientOpts, option.WithBaseURL(opts.BaseURL))
	}

	return &Provider{
		client:    sdk.NewClient(clientOpts...),
		model:     opts.Model,
		persona:   opts.Persona,
		maxTokens: int64(opts.MaxTokens),
		log:       logger.With("adapter", "anthropic"),
	}
}

// Complete sends one message request. In JSON mode the first {...} span
// of the reply is decoded.
func (p *Provider) Complete(ctx context.Context, req llm.Request) (llm.Reply, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(p.model),
		MaxTokens: p.maxTokens,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt)),
		},
		Temperature: sdk.Float(req.Temperature),
	}
	if system := llm.SystemPrompt(p.persona, req); system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	msg, err := p.client.Messages.New(ctx, params)
	if err != nil {
		return llm.Reply{}, p.mapError(ctx, err)
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if strings.TrimSpace(text) == "" {
		return llm.Reply{}, fmt.Errorf("anthropic: %w", llm.ErrNoChoices)
	}

	p.log.DebugContext(ctx, "anthropic response",
		slog.Bool("json", req.JSON),
		slog.String("stop_reason", string(msg.StopReason)),
		slog.Duration("duration", time.Since(start)),
	)

	reply := llm.Reply{Text: text}
	if req.JSON {
		obj, err := llm.DecodeObject(text)
		if err != nil {
			return llm.Reply{}, fmt.Errorf("anthropic: %w", err)
		}
		reply.JSON = obj
	}
	return reply, nil
}

func (p *Provider) mapError(ctx context.Context, err error) error {
	var apiErr *sdk.Error
	if errors.As(err, &apiErr) {
		return fmt.Errorf("anthropic: %w", &llm.HTTPError{
			StatusCode: apiErr.StatusCode,
			Body:       apiErr.Error(),
		})
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("anthropic: %w", err)
	}
	p.log.WarnContext(ctx, "anthropic request failed", slog.String("error", err.Error()))
	return fmt.Errorf("anthropic: %w", llm.NetworkError(err))
}
