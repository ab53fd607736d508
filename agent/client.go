package agent

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Request describes one external decision request.
type Request struct {
	Model          string  `json:"model"`
	SystemPrompt   string  `json:"systemPrompt"`
	UserPrompt     string  `json:"userPrompt"`
	Temperature    float64 `json:"temperature"`
	MaxTokens      int     `json:"maxTokens"`
	ResponseFormat string  `json:"responseFormat,omitempty"` // "json" or ""
}

// DecisionClient abstracts the external decision request service. The
// agent treats every failure the same way (fallback), but transport and
// logical errors stay distinguishable for callers that care.
type DecisionClient interface {
	Request(ctx context.Context, req Request) (string, error)
}

// TransportError marks a network-level failure (retryable).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("transport error: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// APIError marks a logical failure reported by the remote service.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Message)
}

// HTTPClient talks to an OpenAI-compatible chat completions endpoint.
// It retries transient failures with backoff and caches successful
// responses by prompt hash.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	maxRetries int
	backoff    time.Duration

	mu    sync.Mutex
	cache map[string]string
}

// HTTPClientOption tweaks an HTTPClient.
type HTTPClientOption func(*HTTPClient)

func WithHTTPDoer(c *http.Client) HTTPClientOption {
	return func(h *HTTPClient) { h.httpClient = c }
}

func WithRetries(n int, backoff time.Duration) HTTPClientOption {
	return func(h *HTTPClient) { h.maxRetries = n; h.backoff = backoff }
}

func NewHTTPClient(baseURL, apiKey string, opts ...HTTPClientOption) *HTTPClient {
	h := &HTTPClient{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		maxRetries: 2,
		backoff:    500 * time.Millisecond,
		cache:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	Temperature    float64       `json:"temperature"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func (h *HTTPClient) Request(ctx context.Context, req Request) (string, error) {
	key := cacheKey(req)
	h.mu.Lock()
	if cached, ok := h.cache[key]; ok {
		h.mu.Unlock()
		return cached, nil
	}
	h.mu.Unlock()

	var lastErr error
	for attempt := 0; attempt <= h.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", &TransportError{Err: ctx.Err()}
			case <-time.After(h.backoff * time.Duration(attempt)):
			}
		}

		content, err := h.doOnce(ctx, req)
		if err == nil {
			h.mu.Lock()
			h.cache[key] = content
			h.mu.Unlock()
			return content, nil
		}
		lastErr = err

		// Logical 4xx errors (other than rate limits) won't improve on
		// retry.
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Status != http.StatusTooManyRequests && apiErr.Status < 500 {
			return "", err
		}
	}
	return "", lastErr
}

func (h *HTTPClient) doOnce(ctx context.Context, req Request) (string, error) {
	body := chatRequest{
		Model: req.Model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.ResponseFormat == "json" {
		body.ResponseFormat = &struct {
			Type string `json:"type"`
		}{Type: "json_object"}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, h.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if h.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+h.apiKey)
	}

	resp, err := h.httpClient.Do(httpReq)
	if err != nil {
		return "", &TransportError{Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", &TransportError{Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		msg := string(raw)
		var parsed chatResponse
		if json.Unmarshal(raw, &parsed) == nil && parsed.Error != nil {
			msg = parsed.Error.Message
		}
		return "", &APIError{Status: resp.StatusCode, Message: msg}
	}

	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", &APIError{Status: resp.StatusCode, Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if len(parsed.Choices) == 0 {
		return "", &APIError{Status: resp.StatusCode, Message: "response has no choices"}
	}
	return parsed.Choices[0].Message.Content, nil
}

func cacheKey(req Request) string {
	sum := sha256.Sum256([]byte(req.Model + "\x00" + req.SystemPrompt + "\x00" + req.UserPrompt))
	return hex.EncodeToString(sum[:])
}

// StaticClient returns canned responses; used in tests and offline play.
type StaticClient struct {
	mu        sync.Mutex
	Responses []string
	Err       error
	next      int
}

func (s *StaticClient) Request(_ context.Context, _ Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return "", s.Err
	}
	if len(s.Responses) == 0 {
		return "", &APIError{Status: 404, Message: "no canned response"}
	}
	resp := s.Responses[s.next%len(s.Responses)]
	s.next++
	return resp, nil
}
