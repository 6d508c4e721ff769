// Package ai talks to an OpenAI-compatible chat completions endpoint to
// summarize free-text survey answers. The base URL is configuration so the
// dashboard can run against a local runtime as well as a hosted provider.
package ai

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.openai.com/v1"

type Client struct {
	httpClient       *http.Client
	apiKey           string
	baseURL          string
	model            string
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type generatePayload struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	MaxTokens      int             `json:"max_tokens,omitempty"`
	Temperature    float64         `json:"temperature,omitempty"`
	Stream         bool            `json:"stream,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type GenerateRequest struct {
	Messages    []Message
	MaxTokens   int
	Temperature float64
	// JSONMode asks the provider for a valid JSON object response.
	JSONMode bool
}

type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

type Choice struct {
	Message Message `json:"message"`
}

type GenerateResponse struct {
	ID        string   `json:"id"`
	Choices   []Choice `json:"choices"`
	Usage     Usage    `json:"usage"`
	RequestID string   `json:"-"`
}

// Text returns the first choice's content, or empty when the provider sent
// none.
func (r *GenerateResponse) Text() string {
	if r == nil || len(r.Choices) == 0 {
		return ""
	}
	return r.Choices[0].Message.Content
}

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
	RequestID  string         `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			if e.RequestID != "" {
				return fmt.Sprintf("api error: status=%d code=%s request_id=%s message=%s", e.StatusCode, e.Code, e.RequestID, e.Message)
			}
			return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
		}
		if e.RequestID != "" {
			return fmt.Sprintf("api error: status=%d request_id=%s message=%s", e.StatusCode, e.RequestID, e.Message)
		}
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	if e.RequestID != "" {
		return fmt.Sprintf("api error: status=%d request_id=%s", e.StatusCode, e.RequestID)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// NewClient returns a client with default timeouts and retry strategy.
func NewClient(apiKey, baseURL, model string) *Client {
	return NewClientWithRetry(apiKey, baseURL, model, 60*time.Second, 3, 500*time.Millisecond, 4*time.Second)
}

// NewClientWithRetry allows customizing HTTP timeout and retry/backoff
// behavior (tests shorten these).
func NewClientWithRetry(apiKey, baseURL, model string, httpTimeout time.Duration, retryMax int, baseDelay, maxDelay time.Duration) *Client {
	if httpTimeout <= 0 {
		httpTimeout = 60 * time.Second
	}
	if retryMax <= 0 {
		retryMax = 3
	}
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 4 * time.Second
	}
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient:       &http.Client{Timeout: httpTimeout},
		apiKey:           apiKey,
		baseURL:          strings.TrimSuffix(baseURL, "/"),
		model:            model,
		retryMaxAttempts: retryMax,
		retryBaseDelay:   baseDelay,
		retryMaxDelay:    maxDelay,
	}
}

func (c *Client) validate() error {
	if c.apiKey == "" {
		return errors.New("llm_api_key is missing")
	}
	if c.model == "" {
		return errors.New("llm_model is missing")
	}
	return nil
}

func (c *Client) payload(req GenerateRequest, stream bool) generatePayload {
	p := generatePayload{
		Model:       c.model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		Stream:      stream,
	}
	if req.JSONMode {
		p.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	return p
}

// Generate performs one blocking chat completion, retrying transient
// failures (429, 5xx, timeouts) with exponential backoff and jitter.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResponse, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(c.payload(req, false))
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	maxAttempts := c.retryMaxAttempts
	backoff := c.retryBaseDelay

	var lastErr error
	var out GenerateResponse
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		permanent := false
		httpReq, err := c.newRequest(ctx, endpoint, payload)
		if err != nil {
			return nil, err
		}
		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if isRetryableNetErr(err) && attempt < maxAttempts {
				lastErr = err
				time.Sleep(backoff)
				backoff *= 2
				continue
			}
			return nil, fmt.Errorf("http request: %w", err)
		}
		func() {
			defer resp.Body.Close()
			if resp.StatusCode < 200 || resp.StatusCode >= 300 {
				apiErr := decodeAPIError(resp)
				if (resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)) && attempt < maxAttempts {
					// Respect Retry-After if present (seconds or HTTP date).
					if ra := resp.Header.Get("Retry-After"); ra != "" {
						if secs, err := parseRetryAfterSeconds(ra); err == nil && secs > 0 {
							lastErr = &RateLimitError{APIError: apiErr, RetryAfter: time.Duration(secs) * time.Second}
							time.Sleep(time.Duration(secs) * time.Second)
							return
						}
					}
					lastErr = apiErr
					sleep := withJitter(backoff)
					if c.retryMaxDelay > 0 && sleep > c.retryMaxDelay {
						sleep = c.retryMaxDelay
					}
					time.Sleep(sleep)
					backoff *= 2
					return
				}
				// Auth, bad-request and quota failures do not heal on
				// their own; retrying only hammers the endpoint.
				lastErr = classifyAPIError(apiErr, resp)
				permanent = true
				return
			}
			if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
				lastErr = fmt.Errorf("decode response: %w", err)
				return
			}
			out.RequestID = extractRequestID(resp)
			lastErr = nil
		}()
		if lastErr == nil {
			return &out, nil
		}
		if permanent {
			break
		}
		if attempt < maxAttempts {
			continue
		}
		break
	}
	return nil, lastErr
}

// GenerateJSON performs a JSON-mode completion and unmarshals the response
// content into out.
func (c *Client) GenerateJSON(ctx context.Context, req GenerateRequest, out any) error {
	req.JSONMode = true
	resp, err := c.Generate(ctx, req)
	if err != nil {
		return err
	}
	if err := json.Unmarshal([]byte(resp.Text()), out); err != nil {
		return fmt.Errorf("decode model output: %w", err)
	}
	return nil
}

// GenerateStream streams a completion over SSE; onDelta is called for each
// partial content chunk. Canceling the context aborts the stream.
func (c *Client) GenerateStream(ctx context.Context, req GenerateRequest, onDelta func(string)) error {
	if err := c.validate(); err != nil {
		return err
	}
	payload, err := json.Marshal(c.payload(req, true))
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	httpReq, err := c.newRequest(ctx, endpoint, payload)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return classifyAPIError(decodeAPIError(resp), resp)
	}

	type streamDelta struct {
		Choices []struct {
			Delta struct {
				Content string `json:"content"`
			} `json:"delta"`
		} `json:"choices"`
	}
	scanner := bufio.NewScanner(resp.Body)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1<<20)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		line := scanner.Text()
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "data:") {
			data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
			if data == "[DONE]" {
				break
			}
			var d streamDelta
			if err := json.Unmarshal([]byte(data), &d); err == nil {
				if len(d.Choices) > 0 {
					onDelta(d.Choices[0].Delta.Content)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("stream read: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, endpoint string, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func decodeAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
	var raw map[string]any
	_ = json.Unmarshal(body, &raw)
	apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw, RequestID: extractRequestID(resp)}
	if v, ok := raw["error"].(map[string]any); ok {
		if msg, ok := v["message"].(string); ok {
			apiErr.Message = msg
		}
		if code, ok := v["code"].(string); ok {
			apiErr.Code = code
		}
	} else {
		if msg, ok := raw["message"].(string); ok {
			apiErr.Message = msg
		}
		if code, ok := raw["code"].(string); ok {
			apiErr.Code = code
		}
	}
	return apiErr
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// parseRetryAfterSeconds interprets a Retry-After value as seconds or an
// HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// classifyAPIError maps a generic APIError to typed errors for better UX.
func classifyAPIError(apiErr *APIError, resp *http.Response) error {
	sc := apiErr.StatusCode
	msg := apiErr.Message
	code := apiErr.Code
	if sc == http.StatusUnauthorized || sc == http.StatusForbidden {
		return &AuthError{APIError: apiErr}
	}
	if sc == http.StatusTooManyRequests {
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{APIError: apiErr, RetryAfter: ra}
	}
	if sc == http.StatusNotFound {
		if code == "model_not_found" || containsAllFold(msg, "model", "not", "found") {
			return &ModelNotFoundError{APIError: apiErr}
		}
		return apiErr
	}
	if sc == http.StatusBadRequest {
		return &BadRequestError{APIError: apiErr}
	}
	if code == "quota_exceeded" || containsAnyFold(msg, "quota", "billing", "limit exceeded") {
		return &QuotaExceededError{APIError: apiErr}
	}
	if sc >= 500 && sc <= 599 {
		return &ServerError{APIError: apiErr}
	}
	return apiErr
}

func containsAllFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if !containsFold(s, sub) {
			return false
		}
	}
	return true
}

func containsAnyFold(s string, subs ...string) bool {
	for _, sub := range subs {
		if containsFold(s, sub) {
			return true
		}
	}
	return false
}

func containsFold(s, sub string) bool {
	if s == "" || sub == "" {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// extractRequestID pulls a best-effort request ID from common headers.
func extractRequestID(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	keys := []string{"X-Request-Id", "X-Request-ID", "OpenAI-Request-ID"}
	for _, k := range keys {
		if v := resp.Header.Get(k); v != "" {
			return v
		}
	}
	return ""
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}
