// Package completion provides text-completion clients for the setlist engine.
package completion

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// ErrEmptyCompletion is returned when the service answers without any choice.
var ErrEmptyCompletion = errors.New("completion returned no choices")

// Config holds configuration for the completion client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	RequestTimeout    time.Duration
	RequestsPerMinute int
}

// Enabled reports whether enough is configured to reach the service.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// OpenAI implements setlist.Completer against an OpenAI-compatible chat API.
type OpenAI struct {
	client *openai.Client
	model  string
}

// NewOpenAI creates a new chat-completion client.
func NewOpenAI(cfg Config) *OpenAI {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	clientCfg.HTTPClient = &http.Client{Timeout: timeout}

	model := cfg.Model
	if model == "" {
		model = openai.GPT3Dot5Turbo
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(clientCfg),
		model:  model,
	}
}

// Model returns the chat model requests are sent to.
func (o *OpenAI) Model() string { return o.model }

// Complete sends prompt as a single user message and returns the first choice.
func (o *OpenAI) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	// A zero temperature is dropped by omitempty and the server applies its
	// own default.
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		// Report an expired caller context rather than the transport error.
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", fmt.Errorf("chat completion: %w", ctxErr)
		}
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	return resp.Choices[0].Message.Content, nil
}

// Completer is the method set wrapped by Throttled.
type Completer interface {
	Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error)
}

// Throttled limits how often the wrapped completer is called. Waiting for a
// slot honours the caller's context.
type Throttled struct {
	next    Completer
	limiter *rate.Limiter
}

// NewThrottled wraps next with a limit of perMinute calls. A non-positive
// limit disables throttling.
func NewThrottled(next Completer, perMinute int) *Throttled {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if perMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
	return &Throttled{next: next, limiter: limiter}
}

// Complete waits for the limiter and delegates.
func (t *Throttled) Complete(ctx context.Context, prompt string, maxTokens int, temperature float32) (string, error) {
	if err := t.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit wait: %w", err)
	}
	return t.next.Complete(ctx, prompt, maxTokens, temperature)
}
