// Package llm defines the completion client contract shared by every
// language-model provider, its failure kinds, and an optional retry
// decorator.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// JSONDirective is appended to the system persona when a structured
// reply is requested.
const JSONDirective = "請務必以 JSON 格式回傳。"

// Request is one chat-style completion request.
type Request struct {
	// Prompt is sent as the user message.
	Prompt      string
	Temperature float64
	// JSON asks for a JSON-object reply; Reply.JSON is then populated.
	JSON bool
}

// Reply is the first completion returned by the provider.
type Reply struct {
	Text string
	JSON map[string]any
}

// Completer sends one request and returns the provider's reply.
// Implementations perform no retries.
type Completer interface {
	Complete(ctx context.Context, req Request) (Reply, error)
}

// CompleterFunc adapts a function to the Completer interface.
type CompleterFunc func(ctx context.Context, req Request) (Reply, error)

func (f CompleterFunc) Complete(ctx context.Context, req Request) (Reply, error) {
	return f(ctx, req)
}

// SystemPrompt returns the system message for req.
func SystemPrompt(persona string, req Request) string {
	if req.JSON {
		return persona + JSONDirective
	}
	return persona
}

// DecodeObject parses text as a JSON object. Text around the outermost
// braces (for example a markdown fence) is ignored.
func DecodeObject(text string) (map[string]any, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return nil, err
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedJSON, err)
	}
	return obj, nil
}

// ExtractJSON finds the span between the first '{' and the last '}'.
func ExtractJSON(s string) (string, error) {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end == -1 || end <= start {
		return "", fmt.Errorf("%w: no JSON object found in reply", ErrMalformedJSON)
	}
	return s[start : end+1], nil
}
