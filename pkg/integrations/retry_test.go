package integrations

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should return nil")
	}
	err := Retryable(ErrNetwork)
	if !IsRetryable(err) {
		t.Error("IsRetryable should return true for wrapped error")
	}
	if !errors.Is(err, ErrNetwork) {
		t.Error("wrapped error should unwrap to ErrNetwork")
	}
	if IsRetryable(ErrNotFound) {
		t.Error("IsRetryable should return false for unwrapped error")
	}
}

func TestRetry(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		attempts  int
		failures  int
		err       error
		wantCalls int
		wantErr   error
	}{
		{"permanent error is not retried", 3, 5, ErrNotFound, 1, ErrNotFound},
		{"succeeds after retries", 3, 2, Retryable(ErrNetwork), 3, nil},
		{"gives up after attempts", 2, 5, Retryable(ErrNetwork), 2, ErrNetwork},
		{"zero attempts still runs once", 0, 5, Retryable(ErrNetwork), 1, ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := retry(ctx, tt.attempts, time.Millisecond, func() error {
				calls++
				if calls <= tt.failures {
					return tt.err
				}
				return nil
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil && err != nil {
				t.Errorf("retry() error = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("retry() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRetryContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retry(ctx, 3, time.Hour, func() error {
		return Retryable(ErrNetwork)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("retry() error = %v, want context.Canceled", err)
	}
}

func TestRetryAfterHeader(t *testing.T) {
	tests := []struct {
		value string
		want  time.Duration
	}{
		{"", 0},
		{"2", 2 * time.Second},
		{"-1", 0},
		{"Wed, 21 Oct 2015 07:28:00 GMT", 0},
	}
	for _, tt := range tests {
		h := http.Header{}
		if tt.value != "" {
			h.Set("Retry-After", tt.value)
		}
		if got := retryAfter(h); got != tt.want {
			t.Errorf("retryAfter(%q) = %v, want %v", tt.value, got, tt.want)
		}
	}
}

func TestClientRetriesRateLimit(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	client := NewClient(nil, "test", time.Hour, nil,
		WithHTTPClient(server.Client()), WithRetry(2, time.Millisecond))

	var resp map[string]bool
	err := client.Cached(context.Background(), "k", false, &resp, func() error {
		return client.Get(context.Background(), server.URL, &resp)
	})
	if err != nil {
		t.Fatalf("Cached() error = %v", err)
	}
	if !resp["ok"] || calls.Load() != 2 {
		t.Errorf("resp = %v after %d calls, want ok after 2", resp, calls.Load())
	}
}
