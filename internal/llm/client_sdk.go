package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fileagent/internal/logging"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

// SDKClient implements Client on top of the go-openai SDK.
type SDKClient struct {
	client   *openai.Client
	provider string
	hasKey   bool
	timeout  time.Duration
	defaults Defaults
	retry    RetryConfig
	metrics  *Metrics
}

// NewSDKClient creates a go-openai backed client pointed at cfg.BaseURL.
func NewSDKClient(cfg HTTPConfig, opts ...Option) *SDKClient {
	o := defaultClientOptions()
	for _, opt := range opts {
		opt(&o)
	}

	sdkCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		sdkCfg.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}
	if o.httpClient != nil {
		sdkCfg.HTTPClient = o.httpClient
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &SDKClient{
		client:   openai.NewClientWithConfig(sdkCfg),
		provider: cfg.Provider,
		hasKey:   cfg.APIKey != "",
		timeout:  timeout,
		defaults: cfg.Defaults,
		retry:    o.retry,
		metrics:  o.metrics,
	}
}

// Chat sends a chat completion request through the SDK.
func (c *SDKClient) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	if !c.hasKey {
		logging.APIError("[%s/sdk] Chat: API key not configured", c.provider)
		return nil, ErrAPIKeyMissing
	}
	if len(req.Messages) == 0 {
		return nil, fmt.Errorf("at least one message is required")
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	req = c.defaults.apply(req)
	requestID := uuid.New().String()
	startTime := time.Now()

	logging.APIDebug("[%s/sdk] Chat: request=%s model=%s messages=%d tools=%d json=%v",
		c.provider, requestID, req.Model, len(req.Messages), len(req.Tools), req.JSONMode)

	sdkReq := toSDKRequest(req)

	var resp *ChatResponse
	attempts, err := c.retry.do(ctx, func() error {
		out, err := c.client.CreateChatCompletion(ctx, sdkReq)
		if err != nil {
			return classifySDKError(ctx, err)
		}
		r, err := fromSDKResponse(out)
		if err != nil {
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
		logging.APIError("[%s/sdk] Chat: request=%s failed after %d attempt(s): %v", c.provider, requestID, attempts, err)
		return nil, err
	}

	resp.RequestID = requestID
	resp.Duration = elapsed
	logging.API("[%s/sdk] Chat: request=%s completed in %v tokens=%d", c.provider, requestID, elapsed, resp.Usage.TotalTokens)
	return resp, nil
}

func toSDKRequest(req ChatRequest) openai.ChatCompletionRequest {
	out := openai.ChatCompletionRequest{
		Model:           req.Model,
		MaxTokens:       req.MaxTokens,
		ReasoningEffort: req.ReasoningEffort,
	}
	if req.Temperature != nil {
		out.Temperature = float32(*req.Temperature)
	}
	if req.JSONMode {
		out.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	for _, m := range req.Messages {
		msg := openai.ChatCompletionMessage{
			Role:       m.Role,
			Content:    m.Content,
			Name:       m.Name,
			ToolCallID: m.ToolCallID,
		}
		for _, tc := range m.ToolCalls {
			msg.ToolCalls = append(msg.ToolCalls, openai.ToolCall{
				ID:   tc.ID,
				Type: openai.ToolTypeFunction,
				Function: openai.FunctionCall{
					Name:      tc.Name,
					Arguments: tc.Arguments,
				},
			})
		}
		out.Messages = append(out.Messages, msg)
	}

	for _, t := range req.Tools {
		out.Tools = append(out.Tools, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        t.Name,
				Description: t.Description,
				Strict:      t.Strict,
				Parameters:  t.Parameters,
			},
		})
	}
	return out
}

func fromSDKResponse(out openai.ChatCompletionResponse) (*ChatResponse, error) {
	if len(out.Choices) == 0 {
		return nil, NewFatalError(ErrNoChoices)
	}
	choice := out.Choices[0]

	var calls []ToolCall
	for _, tc := range choice.Message.ToolCalls {
		if tc.Type != "" && tc.Type != openai.ToolTypeFunction {
			continue
		}
		calls = append(calls, ToolCall{ID: tc.ID, Name: tc.Function.Name, Arguments: tc.Function.Arguments})
	}

	return &ChatResponse{
		ID:           out.ID,
		Model:        out.Model,
		Content:      strings.TrimSpace(choice.Message.Content),
		ToolCalls:    calls,
		FinishReason: string(choice.FinishReason),
		Usage: Usage{
			PromptTokens:     out.Usage.PromptTokens,
			CompletionTokens: out.Usage.CompletionTokens,
			TotalTokens:      out.Usage.TotalTokens,
		},
	}, nil
}

// classifySDKError maps go-openai errors onto the transient/fatal split.
func classifySDKError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return NewFatalError(ctxErr)
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.HTTPStatusCode, apiErr.Message)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return classifyStatus(reqErr.HTTPStatusCode, body)
	}
	return NewTransientError(fmt.Errorf("request failed: %w", err))
}
