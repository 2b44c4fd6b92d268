package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jarvis-assistant/jarvis/internal/bus"
	"github.com/jarvis-assistant/jarvis/internal/logging"
	"github.com/jarvis-assistant/jarvis/internal/session"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// Frame types sent to websocket clients.
const (
	frameSession = "session"
	frameEvent   = "event"
	frameResult  = "result"
	frameError   = "error"
)

type streamRequest struct {
	Message string `json:"message"`
}

type streamFrame struct {
	Type      string           `json:"type"`
	SessionID string           `json:"session_id,omitempty"`
	Event     *bus.Frame       `json:"event,omitempty"`
	Result    *messageResponse `json:"result,omitempty"`
	Response  string           `json:"response,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// wsConn serialises writes to one websocket.
type wsConn struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsConn) send(f streamFrame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteJSON(f)
}

func (c *wsConn) ping() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" || originAllowed(s.allowedOrigins, origin) {
				return true
			}
			u, err := url.Parse(origin)
			return err == nil && strings.EqualFold(u.Host, r.Host)
		},
	}
}

// handleStream upgrades to a websocket bound to one session. Every event of
// that session's turns is forwarded as it happens; messages sent by the
// client start turns whose aggregated result closes each exchange.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("session_id"))
	if id == "" {
		id = session.NewID()
	}
	ctx, cancel := context.WithCancel(logging.WithSessionID(r.Context(), id))
	defer cancel()
	log := logging.FromContext(ctx)

	frames, err := s.events.Subscribe(ctx, id)
	if err != nil {
		log.Error("stream subscribe failed", "err", err)
		http.Error(w, "event stream unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	c := &wsConn{conn: conn}

	if err := c.send(streamFrame{Type: frameSession, SessionID: id}); err != nil {
		return
	}

	go s.forward(ctx, c, frames)

	conn.SetReadLimit(maxBodyBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	var turns sync.WaitGroup
	defer turns.Wait()
	defer cancel()

	for {
		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Debug("websocket read ended", "err", err)
			}
			return
		}
		if strings.TrimSpace(req.Message) == "" {
			_ = c.send(errorFrame(id, ErrEmptyMessage))
			continue
		}

		turns.Add(1)
		go func(msg string) {
			defer turns.Done()
			res, err := s.Ask(ctx, id, msg)
			if err != nil {
				log.Error("turn failed", "err", err)
				_ = c.send(errorFrame(id, err))
				return
			}
			body := newMessageResponse(id, res)
			_ = c.send(streamFrame{Type: frameResult, SessionID: id, Result: &body})
		}(req.Message)
	}
}

// forward relays bus frames to the client and keeps the connection alive.
func (s *Server) forward(ctx context.Context, c *wsConn, frames <-chan bus.Frame) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-frames:
			if !ok {
				return
			}
			if err := c.send(streamFrame{Type: frameEvent, SessionID: f.SessionID, Event: &f}); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.ping(); err != nil {
				return
			}
		}
	}
}

func errorFrame(id string, err error) streamFrame {
	e := newErrorResponse(err)
	return streamFrame{Type: frameError, SessionID: id, Response: e.Response, Message: e.Message}
}
