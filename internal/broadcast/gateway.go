// Package broadcast fans notifications out to live connections: every
// connection, the connections in one workspace room, or a single caller.
package broadcast

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"taskroom.app/server/common/logger"
)

// Conn is a live connection that can take encoded frames. Send must not
// block; it reports false when the frame was dropped.
type Conn interface {
	ID() string
	Send(frame []byte) bool
}

// Rooms resolves a workspace room to its member connection ids.
type Rooms interface {
	Members(workspaceID int64) []string
}

type Scope string

const (
	ScopeAll    Scope = "all"
	ScopeRoom   Scope = "room"
	ScopeCaller Scope = "caller"
)

// Envelope is an encoded frame together with its addressing, as it travels
// between server instances.
type Envelope struct {
	Origin      string          `json:"origin"`
	Scope       Scope           `json:"scope"`
	WorkspaceID int64           `json:"workspace_id,omitempty"`
	Frame       json.RawMessage `json:"frame"`
}

// Relay forwards room and all-connection frames to other server instances.
type Relay interface {
	Publish(ctx context.Context, env Envelope) error
}

type Option func(*Gateway)

func WithRelay(relay Relay) Option {
	return func(g *Gateway) {
		g.relay = relay
	}
}

type Gateway struct {
	mu    sync.RWMutex
	conns map[string]Conn
	rooms Rooms
	relay Relay
}

func NewGateway(rooms Rooms, opts ...Option) *Gateway {
	g := &Gateway{
		conns: make(map[string]Conn),
		rooms: rooms,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Gateway) Register(c Conn) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.conns[c.ID()] = c
}

func (g *Gateway) Unregister(connID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.conns, connID)
}

// Count returns the number of registered connections on this instance.
func (g *Gateway) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.conns)
}

// Target is an addressable group of connections.
type Target struct {
	gateway     *Gateway
	scope       Scope
	workspaceID int64
	connID      string
}

func (g *Gateway) All() Target {
	return Target{gateway: g, scope: ScopeAll}
}

func (g *Gateway) Room(workspaceID int64) Target {
	return Target{gateway: g, scope: ScopeRoom, workspaceID: workspaceID}
}

func (g *Gateway) Caller(connID string) Target {
	return Target{gateway: g, scope: ScopeCaller, connID: connID}
}

// Send delivers the event to every local recipient and, for room and
// all-connection targets, hands it to the relay. It returns the number of
// local connections that accepted the frame. Failures are logged, never
// returned.
func (t Target) Send(ctx context.Context, ev Event) int {
	frame, err := ev.Frame()
	if err != nil {
		slog.ErrorContext(ctx, "encoding event frame", "event", ev.Name, "error", err)
		return 0
	}

	delivered := t.gateway.deliver(ctx, t.scope, t.workspaceID, t.connID, frame)

	if t.scope != ScopeCaller && t.gateway.relay != nil {
		env := Envelope{Scope: t.scope, WorkspaceID: t.workspaceID, Frame: frame}
		if err := t.gateway.relay.Publish(ctx, env); err != nil {
			slog.WarnContext(ctx, "relaying event failed", "event", ev.Name, "error", err)
		}
	}
	return delivered
}

// DeliverRemote delivers a frame that another instance published.
func (g *Gateway) DeliverRemote(ctx context.Context, env Envelope) {
	if env.Scope == ScopeCaller {
		return
	}
	g.deliver(ctx, env.Scope, env.WorkspaceID, "", env.Frame)
}

func (g *Gateway) deliver(ctx context.Context, scope Scope, workspaceID int64, connID string, frame []byte) int {
	recipients := g.recipients(scope, workspaceID, connID)

	delivered := 0
	for _, c := range recipients {
		if c.Send(frame) {
			delivered++
			continue
		}
		slog.DebugContext(logger.WithLogFields(ctx, logger.LogFields{ConnectionID: logger.Ptr(c.ID())}),
			"dropped frame for slow connection")
	}
	return delivered
}

// recipients snapshots the target set. No lock is held once it returns.
func (g *Gateway) recipients(scope Scope, workspaceID int64, connID string) []Conn {
	var ids []string
	if scope == ScopeRoom {
		ids = g.rooms.Members(workspaceID)
	}

	g.mu.RLock()
	defer g.mu.RUnlock()

	switch scope {
	case ScopeAll:
		out := make([]Conn, 0, len(g.conns))
		for _, c := range g.conns {
			out = append(out, c)
		}
		return out
	case ScopeRoom:
		out := make([]Conn, 0, len(ids))
		for _, id := range ids {
			if c, ok := g.conns[id]; ok {
				out = append(out, c)
			}
		}
		return out
	case ScopeCaller:
		if c, ok := g.conns[connID]; ok {
			return []Conn{c}
		}
	}
	return nil
}
