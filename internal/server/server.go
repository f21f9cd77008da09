// Package server wires the coordinator, the persistence boundary, and
// the booking module behind one HTTP mux. Message mutations commit
// through the chat service, which invokes the coordinator's relay
// after each successful write; the coordinator itself exposes no HTTP
// mutation surface beyond the /ws upgrade.
package server

import (
	"net"
	"net/http"
	"time"

	"github.com/ethanmarsh/teamline/internal/booking"
	"github.com/ethanmarsh/teamline/internal/chat"
	"github.com/ethanmarsh/teamline/internal/config"
	"github.com/ethanmarsh/teamline/internal/hub"
	"github.com/ethanmarsh/teamline/internal/ratelimit"
	"github.com/ethanmarsh/teamline/internal/user"
	"github.com/ethanmarsh/teamline/internal/ws"
	"github.com/redis/go-redis/v9"
)

// Server is the main HTTP server for teamline.
type Server struct {
	addr   string
	mux    *http.ServeMux
	limits config.LimitsConfig
	rdb    redis.Cmdable

	hub        *hub.Hub
	manager    *ws.ConnManager
	wsHandler  *ws.Handler
	messages   *chat.Service
	bookings   *booking.Manager
	identities *user.Store
	limiter    *ratelimit.IPLimiter
}

// Option configures a Server.
type Option func(*Server)

// WithRedis backs message history with Redis instead of memory.
func WithRedis(rdb redis.Cmdable) Option {
	return func(s *Server) {
		s.rdb = rdb
	}
}

// WithLimits applies connection and retention limits.
func WithLimits(limits config.LimitsConfig) Option {
	return func(s *Server) {
		s.limits = limits
	}
}

// New creates a Server listening on addr.
func New(addr string, opts ...Option) *Server {
	s := &Server{addr: addr, mux: http.NewServeMux()}
	for _, opt := range opts {
		opt(s)
	}
	if s.limits.History <= 0 {
		s.limits.History = 500
	}
	if s.limits.UpgradesPerMinute <= 0 {
		s.limits.UpgradesPerMinute = 60
	}

	var store chat.MessageStore
	if s.rdb != nil {
		store = chat.NewRedisStore(s.rdb, s.limits.History)
	} else {
		store = chat.NewStore(s.limits.History)
	}

	var mgrOpts []ws.ConnManagerOption
	if s.limits.MaxConns > 0 {
		mgrOpts = append(mgrOpts, ws.WithMaxConns(s.limits.MaxConns))
	}
	if s.limits.IdleTimeout > 0 {
		mgrOpts = append(mgrOpts, ws.WithIdleTimeout(s.limits.IdleTimeout))
	}

	s.hub = hub.New()
	s.manager = ws.NewConnManager(mgrOpts...)
	s.messages = chat.NewService(store, s.hub.Relay)
	s.wsHandler = ws.NewHandler(s.hub, s.manager, s.messages)
	s.bookings = booking.NewManager()
	s.identities = user.NewStore()
	s.limiter = ratelimit.NewIPLimiter(s.limits.UpgradesPerMinute, time.Minute)

	s.routes()
	return s
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	return http.ListenAndServe(s.addr, s.mux)
}

// Shutdown closes every live WebSocket connection.
func (s *Server) Shutdown() {
	s.manager.Shutdown()
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	s.mux.HandleFunc("GET /api/stats", s.handleStats)
	s.mux.HandleFunc("POST /api/session", s.handleCreateSession)

	s.mux.HandleFunc("GET /api/channels/{channel}/messages", s.handleListMessages)
	s.mux.HandleFunc("POST /api/channels/{channel}/messages", s.handleCreateMessage)
	s.mux.HandleFunc("POST /api/channels/{channel}/read", s.handleMarkRead)
	s.mux.HandleFunc("PATCH /api/messages/{id}", s.handleEditMessage)
	s.mux.HandleFunc("DELETE /api/messages/{id}", s.handleDeleteMessage)
	s.mux.HandleFunc("POST /api/messages/{id}/reactions", s.handleToggleReaction)

	s.mux.HandleFunc("GET /api/rooms", s.handleListRooms)
	s.mux.HandleFunc("POST /api/rooms", s.handleCreateRoom)
	s.mux.HandleFunc("GET /api/bookings", s.handleListBookings)
	s.mux.HandleFunc("POST /api/bookings", s.handleCreateBooking)
	s.mux.HandleFunc("DELETE /api/bookings/{id}", s.handleCancelBooking)
}

// handleWS gates the upgrade behind the per-IP limiter and hands the
// request to the WebSocket handler.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	if !s.limiter.Allow(ip) {
		http.Error(w, "too many connection attempts", http.StatusTooManyRequests)
		return
	}
	s.wsHandler.ServeHTTP(w, r)
}
