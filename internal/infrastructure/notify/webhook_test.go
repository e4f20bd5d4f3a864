package notify

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

func completedMatch() match.Match {
	return match.Match{
		ID:           "match-1",
		TournamentID: "t-1",
		Status:       match.StatusCompleted,
		Team1Score:   match.Scoreboard{TeamID: "a", Score: 150, Wickets: 7, Overs: 20},
		Team2Score:   match.Scoreboard{TeamID: "b", Score: 120, Wickets: 10, Overs: 18.2},
		WinnerID:     "a",
		MarginRuns:   30,
		Result:       "Alpha won by 30 runs",
	}
}

func newTestWebhook(url string, retries int) *ResultWebhook {
	return NewResultWebhook(ResultWebhookConfig{
		URL:          url,
		Token:        "secret",
		Timeout:      2 * time.Second,
		Retries:      retries,
		RetryBackoff: time.Millisecond,
		CircuitBreaker: resilience.CircuitBreakerConfig{
			Enabled:          true,
			FailureThreshold: 10,
			OpenTimeout:      time.Second,
			HalfOpenMaxReq:   1,
		},
	}, logging.NewNop())
}

func TestResultWebhook_DeliverPostsPayload(t *testing.T) {
	t.Parallel()

	var (
		mu      sync.Mutex
		headers http.Header
		body    []byte
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		mu.Lock()
		headers = r.Header.Clone()
		body = raw
		mu.Unlock()
		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	hook := newTestWebhook(server.URL, 0)
	if err := hook.Deliver(context.Background(), completedMatch()); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if got := headers.Get("Authorization"); got != "Bearer secret" {
		t.Fatalf("unexpected authorization header %q", got)
	}
	if got := headers.Get("Idempotency-Key"); got != "match-1" {
		t.Fatalf("unexpected idempotency key %q", got)
	}

	var payload resultPayload
	if err := sonic.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if payload.MatchID != "match-1" || payload.WinnerID != "a" || payload.MarginRuns != 30 {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if len(payload.Innings) != 2 || payload.Innings[1].Score != 120 {
		t.Fatalf("unexpected innings %+v", payload.Innings)
	}
}

func TestResultWebhook_RetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := newTestWebhook(server.URL, 2)
	if err := hook.Deliver(context.Background(), completedMatch()); err != nil {
		t.Fatalf("Deliver error: %v", err)
	}
	if got := calls.Load(); got != 3 {
		t.Fatalf("expected 3 attempts, got %d", got)
	}
}

func TestResultWebhook_DoesNotRetryRejection(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusUnprocessableEntity)
	}))
	defer server.Close()

	hook := newTestWebhook(server.URL, 3)
	err := hook.Deliver(context.Background(), completedMatch())
	if err == nil || !strings.Contains(err.Error(), "status=422") {
		t.Fatalf("expected rejection error, got %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("expected a single attempt, got %d", got)
	}
}

func TestResultWebhook_RunDeliversCompletedEventsOnly(t *testing.T) {
	t.Parallel()

	received := make(chan string, 4)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Header.Get("Idempotency-Key")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	hook := newTestWebhook(server.URL, 0)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hook.Run(ctx)

	hook.HandleMatchEvent(usecase.MatchEvent{Type: usecase.MatchEventBall, Match: match.Match{ID: "ignored"}})
	hook.HandleMatchEvent(usecase.MatchEvent{Type: usecase.MatchEventCompleted, Match: completedMatch()})

	select {
	case id := <-received:
		if id != "match-1" {
			t.Fatalf("expected match-1 delivered first, got %q", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for delivery")
	}
}

func TestResultWebhook_HandleMatchEventNeverBlocks(t *testing.T) {
	t.Parallel()

	hook := NewResultWebhook(ResultWebhookConfig{URL: "http://127.0.0.1:1", QueueSize: 1}, logging.NewNop())
	done := make(chan struct{})
	go func() {
		for i := 0; i < 5; i++ {
			hook.HandleMatchEvent(usecase.MatchEvent{Type: usecase.MatchEventCompleted, Match: completedMatch()})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("HandleMatchEvent blocked on a full queue")
	}
}

func TestCurlPreviewMasksToken(t *testing.T) {
	t.Parallel()

	preview := curlPreview("https://hooks.example.com/results", "match-1", []byte(`{"matchId":"match-1"}`))
	if strings.Contains(preview, "secret") || !strings.Contains(preview, "Bearer ***") {
		t.Fatalf("expected masked token, got %s", preview)
	}
	if !strings.Contains(preview, "Idempotency-Key: match-1") {
		t.Fatalf("expected idempotency header, got %s", preview)
	}
}
