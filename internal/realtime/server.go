package realtime

import (
	"context"
	"log/slog"
	"net/http"
	"sync"

	"github.com/coder/websocket"
	"github.com/google/uuid"

	"taskroom.app/server/common/id"
	"taskroom.app/server/common/logger"
	"taskroom.app/server/core/config"
	"taskroom.app/server/internal/broadcast"
	"taskroom.app/server/internal/room"
	"taskroom.app/server/internal/service"
)

const readLimit = 64 << 10

// client is one live WebSocket connection.
type client struct {
	conn    *websocket.Conn
	session *Session
	send    chan []byte
	done    chan struct{}
}

func (c *client) ID() string {
	return c.session.ID()
}

// Send queues a frame without blocking. Frames for a slow or closed
// connection are dropped.
func (c *client) Send(frame []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- frame:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// Server accepts WebSocket connections and runs the session protocol on them.
type Server struct {
	cfg     config.RealtimeConfig
	tracker *room.Tracker
	gateway *broadcast.Gateway
	handler *Handler

	mu      sync.RWMutex
	clients map[string]*client
}

func NewServer(cfg config.RealtimeConfig, workspaces service.WorkspaceService, tracker *room.Tracker, gateway *broadcast.Gateway) *Server {
	s := &Server{
		cfg:     cfg,
		tracker: tracker,
		gateway: gateway,
		clients: make(map[string]*client),
	}
	s.handler = NewHandler(workspaces, tracker, gateway, s)
	return s
}

// ServeWS handles a WebSocket upgrade and manages the client lifecycle.
func (s *Server) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns:     s.cfg.AllowedOrigins,
		InsecureSkipVerify: len(s.cfg.AllowedOrigins) == 0,
	})
	if err != nil {
		slog.ErrorContext(r.Context(), "ws accept", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)

	c := &client{
		conn:    conn,
		session: NewSession(uuid.NewString()),
		send:    make(chan []byte, s.cfg.SendBuffer),
		done:    make(chan struct{}),
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		ConnectionID: logger.Ptr(c.ID()),
		Component:    "taskroom.realtime",
	})

	s.register(c)
	defer s.unregister(ctx, c)

	go s.writePump(ctx, c)

	if raw := r.URL.Query().Get(s.cfg.WorkspaceQueryParam); raw != "" {
		s.autoJoin(ctx, c, raw)
	}

	s.readPump(ctx, c)
}

func (s *Server) autoJoin(ctx context.Context, c *client, raw string) {
	workspaceID, err := id.Parse(raw)
	if err != nil {
		s.gateway.Caller(c.ID()).Send(ctx, broadcast.Error("Invalid workspace id: "+raw))
		return
	}
	if _, err := s.handler.Connect(ctx, c.session, workspaceID); err != nil {
		s.gateway.Caller(c.ID()).Send(ctx, broadcast.Error(s.handler.clientMessage(ctx, err)))
	}
}

// readPump reads frames from the WS connection and handles them in order.
func (s *Server) readPump(ctx context.Context, c *client) {
	for {
		_, data, err := c.conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.DebugContext(ctx, "ws read closed", "status", websocket.CloseStatus(err))
			} else {
				slog.DebugContext(ctx, "ws read error", "error", err)
			}
			return
		}

		frame, err := UnmarshalFrame(data)
		if err != nil {
			s.gateway.Caller(c.ID()).Send(ctx, broadcast.Error("Malformed frame"))
			continue
		}

		resp := s.handler.Handle(ctx, c.session, frame)
		out, err := MarshalFrame(resp)
		if err != nil {
			slog.ErrorContext(ctx, "marshal response frame", "error", err)
			continue
		}
		if !c.Send(out) {
			slog.DebugContext(ctx, "dropped response for slow connection", "request_id", frame.ID)
		}
	}
}

// writePump writes queued frames to the WS connection.
func (s *Server) writePump(ctx context.Context, c *client) {
	for {
		select {
		case msg := <-c.send:
			if err := c.conn.Write(ctx, websocket.MessageText, msg); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) register(c *client) {
	s.mu.Lock()
	s.clients[c.ID()] = c
	total := len(s.clients)
	s.mu.Unlock()

	s.gateway.Register(c)
	slog.Info("ws client connected", "clients", total)
}

func (s *Server) unregister(ctx context.Context, c *client) {
	s.handler.Release(context.WithoutCancel(ctx), c.session)
	s.gateway.Unregister(c.ID())

	s.mu.Lock()
	delete(s.clients, c.ID())
	total := len(s.clients)
	s.mu.Unlock()

	close(c.done)
	c.conn.Close(websocket.StatusNormalClosure, "")
	slog.InfoContext(ctx, "ws client disconnected", "clients", total)
}

// CloseRoom evicts every connection in the workspace room. Evicted sessions
// become unjoined and are told with a Disconnected event. It returns the
// number of evicted connections on this instance.
func (s *Server) CloseRoom(ctx context.Context, workspaceID int64) int {
	evicted := s.tracker.CloseRoom(workspaceID)

	s.mu.RLock()
	sessions := make([]*Session, 0, len(evicted))
	for _, connID := range evicted {
		if c, ok := s.clients[connID]; ok {
			sessions = append(sessions, c.session)
		}
	}
	s.mu.RUnlock()

	for _, sess := range sessions {
		if sess.evict(workspaceID) {
			s.gateway.Caller(sess.ID()).Send(ctx, broadcast.Disconnected(workspaceID))
		}
	}

	if len(evicted) > 0 {
		slog.InfoContext(ctx, "workspace room closed", "workspace_id", workspaceID, "evicted", len(evicted))
	}
	return len(evicted)
}

// Close shuts down all client connections.
func (s *Server) Close() {
	s.mu.RLock()
	clients := make([]*client, 0, len(s.clients))
	for _, c := range s.clients {
		clients = append(clients, c)
	}
	s.mu.RUnlock()

	for _, c := range clients {
		c.conn.Close(websocket.StatusGoingAway, "server shutdown")
	}
}
