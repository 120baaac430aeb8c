package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"fileagent/internal/logging"

	"github.com/google/uuid"
)

// maxResponseSize limits the LLM response body to prevent memory exhaustion.
const maxResponseSize = 10 * 1024 * 1024 // 10MB

// HTTPClient implements Client with a hand-rolled OpenAI-compatible transport.
type HTTPClient struct {
	apiKey      string
	baseURL     string
	provider    string
	httpClient  *http.Client
	defaults    Defaults
	retry       RetryConfig
	metrics     *Metrics
	minInterval time.Duration

	mu          sync.Mutex
	lastRequest time.Time
}

// HTTPConfig holds configuration for HTTPClient.
type HTTPConfig struct {
	Provider string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
	Defaults Defaults
}

// Option configures a client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient  *http.Client
	retry       RetryConfig
	metrics     *Metrics
	minInterval time.Duration
}

func defaultClientOptions() clientOptions {
	return clientOptions{
		retry:       DefaultRetryConfig(),
		metrics:     DefaultMetrics,
		minInterval: 100 * time.Millisecond,
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(o *clientOptions) { o.httpClient = c }
}

// WithRetryConfig sets the retry configuration.
func WithRetryConfig(cfg RetryConfig) Option {
	return func(o *clientOptions) { o.retry = cfg }
}

// WithMetrics records calls into m instead of DefaultMetrics.
func WithMetrics(m *Metrics) Option {
	return func(o *clientOptions) { o.metrics = m }
}

// WithMinInterval sets the minimum spacing between outgoing requests.
func WithMinInterval(d time.Duration) Option {
	return func(o *clientOptions) { o.minInterval = d }
}

// NewHTTPClient creates a new OpenAI-compatible HTTP client.
func NewHTTPClient(cfg HTTPConfig, opts ...Option) *HTTPClient {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		o.httpClient = &http.Client{Timeout: timeout}
	}

	return &HTTPClient{
		apiKey:      cfg.APIKey,
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		provider:    cfg.Provider,
		httpClient:  o.httpClient,
		defaults:    cfg.Defaults,
		retry:       o.retry,
		metrics:     o.metrics,
		minInterval: o.minInterval,
	}
}

// Chat sends a chat completion request.
func (c *HTTPClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if c.apiKey == "" {
		logging.APIError("[%s] Chat: API key not configured", c.provider)
		return nil, ErrAPIKeyMissing
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	// Auto-apply timeout if context has no deadline
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.httpClient.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.httpClient.Timeout)
		defer cancel()
	}

	req = c.defaults.apply(req)
	requestID := uuid.New().String()
	startTime := time.Now()

	logging.APIDebug("[%s] Chat: request=%s model=%s messages=%d tools=%d json=%v effort=%s",
		c.provider, requestID, req.Model, len(req.Messages), len(req.Tools), req.JSONMode, req.ReasoningEffort)

	body := OpenAIRequest{
		Model:           req.Model,
		Messages:        MapMessagesToOpenAI(req.Messages),
		MaxTokens:       req.MaxTokens,
		Temperature:     req.Temperature,
		ReasoningEffort: req.ReasoningEffort,
		Tools:           MapToolDefinitionsToOpenAI(req.Tools),
	}
	if req.JSONMode {
		body.ResponseFormat = &OpenAIResponseFormat{Type: "json_object"}
	}

	var resp *ChatResponse
	attempts, err := c.retry.do(ctx, func() error {
		c.throttle()
		r, err := c.execute(ctx, body)
		if err != nil {
			logging.APIDebug("[%s] Chat: request=%s attempt failed: %v", c.provider, requestID, err)
			return err
		}
		resp = r
		return nil
	})

	elapsed := time.Since(startTime)
	var usage Usage
	if resp != nil {
		usage = resp.Usage
	}
	c.metrics.Observe(c.provider, elapsed, usage, err)

	if err != nil {
		logging.APIError("[%s] Chat: request=%s failed after %d attempt(s) in %v: %v", c.provider, requestID, attempts, elapsed, err)
		return nil, err
	}

	resp.RequestID = requestID
	resp.Duration = elapsed
	logging.API("[%s] Chat: request=%s completed in %v tokens=%d tool_calls=%d",
		c.provider, requestID, elapsed, resp.Usage.TotalTokens, len(resp.ToolCalls))
	return resp, nil
}

// throttle enforces the minimum spacing between requests.
func (c *HTTPClient) throttle() {
	if c.minInterval <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	elapsed := time.Since(c.lastRequest)
	if elapsed < c.minInterval {
		time.Sleep(c.minInterval - elapsed)
	}
	c.lastRequest = time.Now()
}

// execute performs a single request attempt.
func (c *HTTPClient) execute(ctx context.Context, reqBody OpenAIRequest) (*ChatResponse, error) {
	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("failed to marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(jsonData))
	if err != nil {
		return nil, NewFatalError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, NewFatalError(ctxErr)
		}
		return nil, NewTransientError(fmt.Errorf("request failed: %w", err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, NewTransientError(fmt.Errorf("failed to read response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return parseOpenAIResponse(body)
}

// parseOpenAIResponse decodes a chat completions body into a ChatResponse.
func parseOpenAIResponse(body []byte) (*ChatResponse, error) {
	var openaiResp OpenAIResponse
	if err := json.Unmarshal(body, &openaiResp); err != nil {
		return nil, NewFatalError(fmt.Errorf("failed to parse response: %w", err))
	}

	if openaiResp.Error != nil {
		return nil, NewFatalError(fmt.Errorf("API error: %s", openaiResp.Error.Message))
	}

	if len(openaiResp.Choices) == 0 {
		return nil, NewFatalError(ErrNoChoices)
	}

	choice := openaiResp.Choices[0]
	content := ""
	if choice.Message.Content != nil {
		content = strings.TrimSpace(*choice.Message.Content)
	}

	return &ChatResponse{
		ID:           openaiResp.ID,
		Model:        openaiResp.Model,
		Content:      content,
		ToolCalls:    MapOpenAIToolCallsToInternal(choice.Message.ToolCalls),
		FinishReason: choice.FinishReason,
		Usage:        openaiResp.Usage,
	}, nil
}

// IsContextError reports whether err came from context cancellation or deadline.
func IsContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
