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
	"time"

	"maintenance-triage/internal/common/config"
	commonhttp "maintenance-triage/internal/common/http"
	"maintenance-triage/internal/common/logger"
)

const (
	connectTimeout = 10 * time.Second
	callTimeout    = 10 * time.Second
)

// Classifier is implemented by the HTTP client and the caching decorator.
type Classifier interface {
	Classify(ctx context.Context, prompt Prompt) Result
}

// Client calls an OpenAI-compatible chat-completions endpoint. It never retries.
type Client struct {
	cfg        config.LLMConfig
	httpClient *commonhttp.Client
	timeout    time.Duration
	logger     logger.Logger
}

func NewClient(cfg config.LLMConfig, log logger.Logger) *Client {
	timeout := config.GetDuration(cfg.Timeout)
	if timeout <= 0 || timeout > callTimeout {
		timeout = callTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: commonhttp.NewClientWithDialTimeout(connectTimeout, timeout),
		timeout:    timeout,
		logger:     logger.Component(log, "llm"),
	}
}

func (c *Client) Classify(ctx context.Context, prompt Prompt) Result {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body, err := json.Marshal(chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt.Text()}},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return failed("encode request: %v", err)
	}

	endpoint := strings.TrimSuffix(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return failed("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			c.logger.Warn("Remote model timed out", map[string]interface{}{"error": err.Error()})
			return Result{Err: fmt.Errorf("%w: %v", ErrRemoteTimeout, err)}
		}
		return failed("request: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return failed("status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return failed("decode response: %v", err)
	}
	if len(chat.Choices) == 0 {
		return failed("response has no choices")
	}

	reply, err := parseReply(chat.Choices[0].Message.Content)
	if err != nil {
		return failed("%v", err)
	}

	c.logger.Debug("Remote model replied", map[string]interface{}{
		"model":   c.cfg.Model,
		"urgency": reply.Urgency,
	})
	return Result{Reply: reply}
}

func isTimeout(err error) bool {
	var t interface{ Timeout() bool }
	return errors.As(err, &t) && t.Timeout()
}
