package notify

import (
	"context"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"github.com/valyala/fasthttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/resilience"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
)

var (
	errWebhookTransient = crerr.New("result webhook transient failure")
	webhookTracer       = otel.Tracer("fantasy-cricket/internal/infrastructure/notify")
)

type ResultWebhookConfig struct {
	URL            string
	Token          string
	Timeout        time.Duration
	Retries        int
	QueueSize      int
	RetryBackoff   time.Duration
	CircuitBreaker resilience.CircuitBreakerConfig
}

type inningsTotal struct {
	TeamID  string  `json:"teamId"`
	Score   int     `json:"score"`
	Wickets int     `json:"wickets"`
	Overs   float64 `json:"overs"`
}

// resultPayload is the body posted for each completed match.
type resultPayload struct {
	MatchID       string         `json:"matchId"`
	TournamentID  string         `json:"tournamentId"`
	WinnerID      string         `json:"winnerId,omitempty"`
	IsTied        bool           `json:"isTied"`
	MarginRuns    int            `json:"marginRuns,omitempty"`
	MarginWickets int            `json:"marginWickets,omitempty"`
	Result        string         `json:"result"`
	Innings       []inningsTotal `json:"innings"`
	CompletedAt   time.Time      `json:"completedAt"`
}

// ResultWebhook posts completed matches to an external receiver. Delivery
// runs on its own goroutine so the match flow never waits on the network.
type ResultWebhook struct {
	client  *fasthttp.Client
	url     string
	token   string
	timeout time.Duration
	retries int
	backoff time.Duration
	breaker *resilience.CircuitBreaker
	queue   chan match.Match
	logger  *logging.Logger
}

func NewResultWebhook(cfg ResultWebhookConfig, logger *logging.Logger) *ResultWebhook {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 250 * time.Millisecond
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}

	return &ResultWebhook{
		client: &fasthttp.Client{
			Name:         "fantasy-cricket-webhook",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		url:     strings.TrimSpace(cfg.URL),
		token:   strings.TrimSpace(cfg.Token),
		timeout: cfg.Timeout,
		retries: cfg.Retries,
		backoff: cfg.RetryBackoff,
		breaker: resilience.NewCircuitBreaker(cfg.CircuitBreaker),
		queue:   make(chan match.Match, cfg.QueueSize),
		logger:  logger,
	}
}

// HandleMatchEvent queues completed matches; subscribe it to MatchService.
func (w *ResultWebhook) HandleMatchEvent(evt usecase.MatchEvent) {
	if evt.Type != usecase.MatchEventCompleted {
		return
	}
	select {
	case w.queue <- evt.Match:
	default:
		w.logger.Warn("result webhook queue full, dropping result", "match_id", evt.Match.ID)
	}
}

// Run delivers queued results until ctx is done.
func (w *ResultWebhook) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-w.queue:
			if err := w.Deliver(ctx, m); err != nil {
				w.logger.ErrorContext(ctx, "result webhook delivery failed", "match_id", m.ID, "error", err)
			}
		}
	}
}

// Deliver posts one result, retrying transient failures with backoff.
func (w *ResultWebhook) Deliver(ctx context.Context, m match.Match) error {
	ctx, span := webhookTracer.Start(ctx, "notify.ResultWebhook.Deliver")
	defer span.End()
	span.SetAttributes(attribute.String("match.id", m.ID), attribute.String("webhook.url", w.url))

	body, err := sonic.Marshal(newResultPayload(m))
	if err != nil {
		return crerr.Wrap(err, "marshal result payload")
	}
	w.logger.DebugContext(ctx, "result webhook request", "match_id", m.ID, "curl_preview", curlPreview(w.url, m.ID, body))

	var lastErr error
	for attempt := 0; attempt <= w.retries; attempt++ {
		if attempt > 0 {
			delay := w.backoff * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		lastErr = w.breaker.Execute(func() error {
			return w.post(m.ID, body)
		}, isTransient)
		if lastErr == nil {
			w.logger.InfoContext(ctx, "result webhook delivered", "match_id", m.ID, "attempts", attempt+1)
			return nil
		}
		if !isTransient(lastErr) {
			break
		}
	}

	span.RecordError(lastErr)
	span.SetStatus(codes.Error, lastErr.Error())
	return lastErr
}

func (w *ResultWebhook) post(matchID string, body []byte) error {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Idempotency-Key", matchID)
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}
	req.SetBody(body)

	if err := w.client.DoTimeout(req, resp, w.timeout); err != nil {
		return crerr.Mark(crerr.Wrapf(err, "post result match=%s", matchID), errWebhookTransient)
	}

	status := resp.StatusCode()
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == fasthttp.StatusTooManyRequests || status >= 500:
		return crerr.Mark(crerr.Newf("result webhook status=%d body=%s", status, truncate(resp.Body(), 512)), errWebhookTransient)
	default:
		return crerr.Newf("result webhook rejected status=%d body=%s", status, truncate(resp.Body(), 512))
	}
}

func isTransient(err error) bool {
	return crerr.Is(err, errWebhookTransient) || crerr.Is(err, resilience.ErrCircuitOpen)
}

func newResultPayload(m match.Match) resultPayload {
	payload := resultPayload{
		MatchID:       m.ID,
		TournamentID:  m.TournamentID,
		WinnerID:      m.WinnerID,
		IsTied:        m.IsTied,
		MarginRuns:    m.MarginRuns,
		MarginWickets: m.MarginWickets,
		Result:        m.Result,
		CompletedAt:   m.LastUpdated,
	}
	for _, board := range []match.Scoreboard{m.Team1Score, m.Team2Score} {
		payload.Innings = append(payload.Innings, inningsTotal{
			TeamID:  board.TeamID,
			Score:   board.Score,
			Wickets: board.Wickets,
			Overs:   board.Overs,
		})
	}
	return payload
}

func curlPreview(url, matchID string, body []byte) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	_, _ = buf.WriteString("curl -X POST ")
	_, _ = buf.WriteString(shellQuote(url))
	_, _ = buf.WriteString(" -H 'Content-Type: application/json' -H 'Authorization: Bearer ***' -H ")
	_, _ = buf.WriteString(shellQuote("Idempotency-Key: " + matchID))
	_, _ = buf.WriteString(" -d ")
	_, _ = buf.WriteString(shellQuote(string(truncate(body, 2048))))
	return buf.String()
}

func shellQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", `'"'"'`) + "'"
}

func truncate(raw []byte, max int) []byte {
	if len(raw) <= max {
		return raw
	}
	return append(append([]byte(nil), raw[:max]...), "..."...)
}
