package extraction

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/pkg/logger"
)

const (
	initialBackoff = time.Second
	maxBackoff     = 30 * time.Second
)

// Generator turns a prompt into model text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// APIError is a non-2xx reply from the model endpoint.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("gemini http %d: %s", e.StatusCode, e.Body)
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

var ErrEmptyReply = errors.New("gemini reply contained no text")

type GeminiClient struct {
	log        logger.Log
	httpClient *http.Client
	baseURL    string
	apiKey     string
	model      string
	maxRetries int
	sleep      func(ctx context.Context, d time.Duration) error
}

func NewGeminiClient(l logger.Log, cfg config.Gemini) *GeminiClient {
	return &GeminiClient{
		log:        l.With("component", "gemini"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		maxRetries: cfg.MaxRetries,
		sleep:      sleepCtx,
	}
}

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generationConfig struct {
	ResponseMimeType string `json:"responseMimeType,omitempty"`
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, url.PathEscape(c.model))
}

// Generate sends prompt to generateContent, retrying transport errors, 429 and 5xx.
func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents:         []content{{Parts: []part{{Text: prompt}}}},
		GenerationConfig: generationConfig{ResponseMimeType: "application/json"},
	})
	if err != nil {
		return "", err
	}

	backoff := initialBackoff
	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			return extractText(raw)
		}
		if !isRetryable(ctx, err) || attempt >= c.maxRetries {
			return "", err
		}

		wait := retryAfter(resp, backoff)
		c.log.Warn("gemini request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", wait.String(),
			"error", err.Error(),
		)
		if err := c.sleep(ctx, wait); err != nil {
			return "", err
		}
		backoff = min(backoff*2, maxBackoff)
	}
}

func (c *GeminiClient) doOnce(ctx context.Context, body []byte) (*http.Response, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &APIError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

func isRetryable(ctx context.Context, err error) bool {
	if ctx.Err() != nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	return true
}

// retryAfter prefers the server's Retry-After seconds over the local backoff.
func retryAfter(resp *http.Response, backoff time.Duration) time.Duration {
	wait := backoff
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				wait = time.Duration(secs) * time.Second
			}
		}
	}
	return min(wait, maxBackoff)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

type replyParser func(raw []byte) (string, bool)

// replyParsers are tried in order; the first one to find text wins.
var replyParsers = []replyParser{candidateText, topLevelText}

func extractText(raw []byte) (string, error) {
	for _, parse := range replyParsers {
		if text, ok := parse(raw); ok {
			return text, nil
		}
	}
	return "", ErrEmptyReply
}

type candidatesReply struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func candidateText(raw []byte) (string, bool) {
	var reply candidatesReply
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", false
	}
	for _, cand := range reply.Candidates {
		var sb strings.Builder
		for _, p := range cand.Content.Parts {
			sb.WriteString(p.Text)
		}
		if text := sb.String(); strings.TrimSpace(text) != "" {
			return text, true
		}
	}
	return "", false
}

func topLevelText(raw []byte) (string, bool) {
	var reply struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &reply); err != nil {
		return "", false
	}
	return reply.Text, strings.TrimSpace(reply.Text) != ""
}
