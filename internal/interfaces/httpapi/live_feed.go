package httpapi

import (
	"context"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
	"github.com/riskibarqy/fantasy-cricket/internal/domain/match"
	"github.com/riskibarqy/fantasy-cricket/internal/platform/logging"
	"github.com/riskibarqy/fantasy-cricket/internal/usecase"
	"github.com/valyala/bytebufferpool"
)

const (
	feedWriteWait      = 10 * time.Second
	feedPongWait       = 60 * time.Second
	feedPingPeriod     = (feedPongWait * 9) / 10
	feedMaxMessageSize = 512
	feedClientBuffer   = 64
	feedBroadcastQueue = 256
)

// liveFrame is one websocket message. Ball frames carry the match without its
// commentary history plus the newest entry only.
type liveFrame struct {
	Type      usecase.MatchEventType `json:"type"`
	MatchID   string                 `json:"matchId"`
	Match     match.Match            `json:"match"`
	LastEntry *match.CommentaryEntry `json:"lastEntry,omitempty"`
	SentAt    time.Time              `json:"sentAt"`
}

type feedClient struct {
	hub  *LiveFeedHub
	conn *websocket.Conn
	send chan []byte
}

// LiveFeedHub fans match events out to websocket subscribers. Slow clients
// are dropped instead of stalling the simulation.
type LiveFeedHub struct {
	logger   *logging.Logger
	upgrader websocket.Upgrader

	clients    map[*feedClient]struct{}
	register   chan *feedClient
	unregister chan *feedClient
	broadcast  chan []byte
	done       chan struct{}
	count      atomic.Int64
}

func NewLiveFeedHub(allowedOrigins []string, logger *logging.Logger) *LiveFeedHub {
	if logger == nil {
		logger = logging.Default()
	}

	h := &LiveFeedHub{
		logger:     logger,
		clients:    make(map[*feedClient]struct{}),
		register:   make(chan *feedClient),
		unregister: make(chan *feedClient),
		broadcast:  make(chan []byte, feedBroadcastQueue),
		done:       make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

// Run owns the client set until ctx is done.
func (h *LiveFeedHub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for client := range h.clients {
				h.drop(client)
			}
			return
		case client := <-h.register:
			h.clients[client] = struct{}{}
			h.count.Add(1)
			h.logger.Debug("live feed client registered", "clients", len(h.clients))
		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				h.drop(client)
			}
		case frame := <-h.broadcast:
			for client := range h.clients {
				select {
				case client.send <- frame:
				default:
					h.logger.Warn("live feed client too slow, dropping", "remote_addr", client.conn.RemoteAddr().String())
					h.drop(client)
				}
			}
		}
	}
}

func (h *LiveFeedHub) drop(client *feedClient) {
	delete(h.clients, client)
	close(client.send)
	h.count.Add(-1)
}

func (h *LiveFeedHub) ClientCount() int {
	return int(h.count.Load())
}

// Publish queues evt for every subscriber. It never blocks; subscribe it to
// MatchService.
func (h *LiveFeedHub) Publish(evt usecase.MatchEvent) {
	frame, err := encodeLiveFrame(evt, time.Now().UTC())
	if err != nil {
		h.logger.Error("encode live frame failed", "match_id", evt.Match.ID, "error", err)
		return
	}

	select {
	case h.broadcast <- frame:
	case <-h.done:
	default:
		h.logger.Warn("live feed queue full, frame dropped", "match_id", evt.Match.ID, "type", string(evt.Type))
	}
}

func (h *LiveFeedHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.LiveFeed")
	defer span.End()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		h.logger.WarnContext(ctx, "live feed upgrade failed", "error", err)
		return
	}

	client := &feedClient{hub: h, conn: conn, send: make(chan []byte, feedClientBuffer)}
	select {
	case h.register <- client:
	case <-h.done:
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}

// readPump only services control frames; client messages are ignored.
func (c *feedClient) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(feedMaxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(feedPongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warn("live feed read failed", "error", err)
			}
			return
		}
	}
}

func (c *feedClient) writePump() {
	ticker := time.NewTicker(feedPingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(feedWriteWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func encodeLiveFrame(evt usecase.MatchEvent, now time.Time) ([]byte, error) {
	frame := liveFrame{
		Type:    evt.Type,
		MatchID: evt.Match.ID,
		Match:   evt.Match,
		SentAt:  now,
	}
	if evt.Type == usecase.MatchEventBall {
		if n := len(evt.Match.Commentary); n > 0 {
			last := evt.Match.Commentary[n-1]
			frame.LastEntry = &last
		}
		frame.Match.Commentary = []match.CommentaryEntry{}
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(frame); err != nil {
		return nil, crerr.Wrapf(err, "encode %s frame", evt.Type)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.B)
	return out, nil
}

func originChecker(allowedOrigins []string) func(r *http.Request) bool {
	allowAll := false
	allowMap := make(map[string]struct{}, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		candidate := strings.TrimSpace(origin)
		switch candidate {
		case "":
		case "*":
			allowAll = true
		default:
			allowMap[candidate] = struct{}{}
		}
	}

	return func(r *http.Request) bool {
		origin := strings.TrimSpace(r.Header.Get("Origin"))
		if origin == "" || allowAll {
			return true
		}
		_, ok := allowMap[origin]
		return ok
	}
}
