package extraction

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/J0na555/ExitPrep/internal/config"
	"github.com/J0na555/ExitPrep/pkg/logger"
)

const okReply = `{"candidates":[{"content":{"parts":[{"text":"[{\"question\":\"2+2?\","},{"text":"\"choices\":[\"3\",\"4\"],\"answer\":\"B\"}]"}]}}]}`

func newTestClient(t *testing.T, handler http.HandlerFunc) (*GeminiClient, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGeminiClient(logger.NewNop(), config.Gemini{
		APIKey:     "test-key",
		Model:      "gemini-test",
		BaseURL:    srv.URL,
		MaxRetries: 3,
		Timeout:    5 * time.Second,
	})
	var waits []time.Duration
	c.sleep = func(_ context.Context, d time.Duration) error {
		waits = append(waits, d)
		return nil
	}
	return c, &waits
}

func TestGenerateRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	c, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1beta/models/gemini-test:generateContent" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("x-goog-api-key") != "test-key" {
			t.Errorf("api key header missing")
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), "exam text") {
			t.Errorf("prompt not sent: %s", body)
		}
		switch calls.Add(1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			_, _ = io.WriteString(w, okReply)
		}
	})

	text, err := c.Generate(context.Background(), "exam text")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(text, `[{"question":"2+2?",`) || !strings.HasSuffix(text, `"answer":"B"}]`) {
		t.Fatalf("parts not joined: %q", text)
	}
	if calls.Load() != 3 {
		t.Fatalf("calls = %d, want 3", calls.Load())
	}
	want := []time.Duration{time.Second, 7 * time.Second}
	if len(*waits) != len(want) || (*waits)[0] != want[0] || (*waits)[1] != want[1] {
		t.Fatalf("waits = %v, want %v", *waits, want)
	}
}

func TestGenerateDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	c, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":{"message":"bad request"}}`)
	})

	_, err := c.Generate(context.Background(), "exam text")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("err = %v, want APIError 400", err)
	}
	if calls.Load() != 1 || len(*waits) != 0 {
		t.Fatalf("calls = %d waits = %v, want a single attempt", calls.Load(), *waits)
	}
}

func TestGenerateGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	c, waits := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.Generate(context.Background(), "exam text"); err == nil {
		t.Fatal("expected error")
	}
	if calls.Load() != 4 {
		t.Fatalf("calls = %d, want 4", calls.Load())
	}
	want := []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}
	for i, d := range want {
		if (*waits)[i] != d {
			t.Fatalf("waits = %v, want %v", *waits, want)
		}
	}
}

func TestGenerateStopsWhenContextCancelled(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})
	ctx, cancel := context.WithCancel(context.Background())
	c.sleep = func(ctx context.Context, _ time.Duration) error {
		cancel()
		return ctx.Err()
	}

	if _, err := c.Generate(ctx, "exam text"); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr error
	}{
		{"candidates", `{"candidates":[{"content":{"parts":[{"text":"[]"}]}}]}`, "[]", nil},
		{"skips empty candidate", `{"candidates":[{"content":{"parts":[]}},{"content":{"parts":[{"text":"x"}]}}]}`, "x", nil},
		{"top-level text", `{"text":"[1]"}`, "[1]", nil},
		{"nothing", `{"candidates":[]}`, "", ErrEmptyReply},
		{"not json", `oops`, "", ErrEmptyReply},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText([]byte(tt.raw))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("text = %q, want %q", got, tt.want)
			}
		})
	}
}
