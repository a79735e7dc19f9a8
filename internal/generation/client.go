package generation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Conceptual-Machines/lyric-composer/internal/logger"
)

const generatePath = "generate"

// Request is the JSON payload accepted by the generation service
type Request struct {
	Temperature float64 `json:"temperature"`
	TopK        float64 `json:"top-k"`
	TopP        float64 `json:"top-p"`
	NGram       int     `json:"n_gram"`
	NSFW        bool    `json:"nsfw"`
	Prompt      string  `json:"prompt"`
	Repetition  float64 `json:"repetition"`
}

// RequestFailedError is returned when the generation service answers with a non-success status.
// Its message is the response body as sent by the service.
type RequestFailedError struct {
	StatusCode int
	Message    string
}

func (e *RequestFailedError) Error() string {
	return e.Message
}

// Observer receives one call per outbound generation request
type Observer interface {
	RecordGeneration(ctx context.Context, duration time.Duration, candidates int, success bool)
}

// Client calls the external lyric generation service
type Client struct {
	endpoint   string
	httpClient *http.Client
	observer   Observer
}

// NewClient creates a client for baseURL. A zero timeout leaves requests unbounded.
func NewClient(baseURL string, timeout time.Duration, observer Observer) *Client {
	return &Client{
		endpoint:   strings.TrimRight(baseURL, "/") + "/" + generatePath,
		httpClient: &http.Client{Timeout: timeout},
		observer:   observer,
	}
}

// Endpoint returns the full URL requests are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Generate posts req and returns the candidate continuations in service order
func (c *Client) Generate(ctx context.Context, req Request) ([]string, error) {
	start := time.Now()
	candidates, err := c.do(ctx, req)
	duration := time.Since(start)

	logger.LogGenerationRequest(ctx, c.endpoint, duration, len(candidates), err, nil)
	if c.observer != nil {
		c.observer.RecordGeneration(ctx, duration, len(candidates), err == nil)
	}

	return candidates, err
}

func (c *Client) do(ctx context.Context, req Request) ([]string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode generation request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create generation request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		text, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return nil, fmt.Errorf("failed to read generation error body: %w", readErr)
		}
		return nil, &RequestFailedError{StatusCode: resp.StatusCode, Message: string(text)}
	}

	var candidates []string
	if err := json.NewDecoder(resp.Body).Decode(&candidates); err != nil {
		return nil, fmt.Errorf("failed to decode generation response: %w", err)
	}

	return candidates, nil
}
