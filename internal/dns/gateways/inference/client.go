// Package inference is the HTTP gateway to the completion service. A
// prompt is sent to each configured model in order until one returns a
// usable completion; the first success short-circuits the chain.
package inference

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/llmdns/llm-dns/internal/dns/common/log"
	"github.com/llmdns/llm-dns/internal/dns/domain"
)

// DefaultBaseURL is the OpenRouter chat completions endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1/chat/completions"

// defaultTimeout bounds each single model attempt.
const defaultTimeout = 30 * time.Second

// Sentinel errors for precondition failures and exhausted fallback.
var (
	ErrNoAPIKey        = errors.New("API key must not be empty")
	ErrNoModels        = errors.New("model list must not be empty")
	ErrEmptyPrompt     = errors.New("prompt must not be empty")
	ErrAllModelsFailed = errors.New("all models failed")
)

// chatMessage is one message in the completion request.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatRequest is the request body sent to the completion endpoint.
type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

// chatResponse is the subset of the response body the client reads.
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Client queries the completion service with ordered model fallback.
// It holds no per-request state and is safe for concurrent use.
type Client struct {
	apiKey       string
	models       []string
	systemPrompt string
	baseURL      string
	httpClient   *http.Client
	logger       log.Logger
}

// Options defines configuration parameters for the inference client.
// APIKey and Models are required; the rest have working defaults.
type Options struct {
	APIKey       string
	Models       []string
	SystemPrompt string
	// BaseURL overrides the completion endpoint; empty means
	// DefaultBaseURL. Timeout and Transport are mainly test seams.
	BaseURL   string
	Timeout   time.Duration
	Transport http.RoundTripper
	Logger    log.Logger
}

// New creates an inference client. It fails fast on a missing API key
// or an empty model list so misconfiguration surfaces at startup, not
// on the first query.
func New(opts Options) (*Client, error) {
	if opts.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	if len(opts.Models) == 0 {
		return nil, ErrNoModels
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNoopLogger()
	}
	return &Client{
		apiKey:       opts.APIKey,
		models:       opts.Models,
		systemPrompt: opts.SystemPrompt,
		baseURL:      opts.BaseURL,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: opts.Transport,
		},
		logger: opts.Logger,
	}, nil
}

// Complete sends the prompt to each model in order and returns the
// first usable completion. Every failure, including HTTP 4xx, advances
// to the next model: a 403 can be a per-model data-policy restriction
// on a key that works elsewhere in the chain. When the chain is
// exhausted the returned error wraps both ErrAllModelsFailed and the
// last error observed.
func (c *Client) Complete(ctx context.Context, prompt string) (domain.CompletionResult, error) {
	if prompt == "" {
		return domain.CompletionResult{}, ErrEmptyPrompt
	}

	var lastErr error
	for i, model := range c.models {
		text, err := c.completeWithModel(ctx, prompt, model)
		if err == nil {
			c.logger.Debug(map[string]any{
				"model":   model,
				"attempt": i + 1,
			}, "Completion succeeded")
			return domain.CompletionResult{Model: model, Text: text}, nil
		}
		lastErr = err
		c.logger.Error(map[string]any{
			"model":   model,
			"attempt": i + 1,
			"of":      len(c.models),
			"error":   err.Error(),
		}, "Model attempt failed")
	}

	return domain.CompletionResult{}, fmt.Errorf("%w (%d tried): %w", ErrAllModelsFailed, len(c.models), lastErr)
}

// completeWithModel issues one HTTP request for a single model.
func (c *Client) completeWithModel(ctx context.Context, prompt, model string) (string, error) {
	messages := make([]chatMessage, 0, 2)
	if c.systemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: c.systemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: prompt})

	body, err := json.Marshal(chatRequest{Model: model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("model %s: %w", model, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// read a little of the body for diagnostics, then discard
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return "", fmt.Errorf("model %s: unexpected status %d: %s", model, resp.StatusCode, snippet)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("model %s: decode response: %w", model, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("model %s: no choices in response", model)
	}
	content := parsed.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("model %s: empty completion", model)
	}
	return content, nil
}
