// Package http exposes the staff dashboard as a JSON API.
package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"makeros/internal/core"
	"makeros/internal/gateway"
	applog "makeros/internal/log"
	"makeros/internal/services"
	"makeros/internal/spark"
	"makeros/internal/store"
)

// SyncReporter surfaces the state of the async save pipeline.
type SyncReporter interface {
	Status() gateway.SyncStatus
}

type Server struct {
	http.Server

	store    *store.Store
	svc      *services.Set
	spark    *spark.Service
	reporter SyncReporter
	budget   core.Money

	rateLimiter  *rateLimiter
	shutdownOnce sync.Once
}

// Simple in-memory rate limiter, applied to mutating requests.
type rateLimiter struct {
	mu           sync.Mutex
	clients      map[string]*clientInfo
	stopCleanup  chan struct{}
	shutdownOnce sync.Once
}

type clientInfo struct {
	lastRequest time.Time
	requests    int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		clients:     make(map[string]*clientInfo),
		stopCleanup: make(chan struct{}),
	}
	go rl.startCleanup()
	return rl
}

func (rl *rateLimiter) startCleanup() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.cleanupStaleEntries()
		case <-rl.stopCleanup:
			return
		}
	}
}

func (rl *rateLimiter) cleanupStaleEntries() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, client := range rl.clients {
		if client.lastRequest.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopCleanup)
	})
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	client, exists := rl.clients[clientIP]

	if !exists {
		rl.clients[clientIP] = &clientInfo{lastRequest: now, requests: 1}
		return true
	}

	if now.Sub(client.lastRequest) > time.Minute {
		client.requests = 1
		client.lastRequest = now
		return true
	}

	// Up to 120 mutating requests per minute per client.
	client.requests++
	client.lastRequest = now
	return client.requests <= 120
}

// NewServer configures routes and returns a ready-to-run server. The spark
// service may be nil when no provider is configured; its endpoints then report
// the feature unavailable. Every request runs under a logger stamped with a
// fresh request id.
func NewServer(addr string, st *store.Store, svc *services.Set, sp *spark.Service, reporter SyncReporter, budget core.Money, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	if logger == nil {
		logger = applog.Default(applog.ComponentHTTP)
	}
	handler := applog.Middleware(logger)(applog.RequestIDMiddleware(uuid.NewString)(mux))

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		store:       st,
		svc:         svc,
		spark:       sp,
		reporter:    reporter,
		budget:      budget,
		rateLimiter: newRateLimiter(),
	}

	mux.HandleFunc("GET /healthz", handleHealth)

	mux.HandleFunc("GET /api/snapshot", s.withAPI(s.handleSnapshot))
	mux.HandleFunc("GET /api/dashboard", s.withAPI(s.handleDashboard))
	mux.HandleFunc("GET /api/sync", s.withAPI(s.handleSyncStatus))

	mux.HandleFunc("GET /api/stats", s.withAPI(s.handleListStats))
	mux.HandleFunc("PUT /api/stats", s.withAPI(s.handleUpsertStat))

	mux.HandleFunc("GET /api/transactions", s.withAPI(s.handleListTransactions))
	mux.HandleFunc("POST /api/transactions", s.withAPI(s.handleCreateTransaction))
	mux.HandleFunc("PUT /api/transactions/{id}", s.withAPI(s.handleUpdateTransaction))
	mux.HandleFunc("DELETE /api/transactions/{id}", s.withAPI(s.handleDeleteTransaction))

	mux.HandleFunc("GET /api/classes", s.withAPI(s.handleListClasses))
	mux.HandleFunc("POST /api/classes", s.withAPI(s.handleCreateClass))
	mux.HandleFunc("PUT /api/classes/{id}", s.withAPI(s.handleUpdateClass))
	mux.HandleFunc("DELETE /api/classes/{id}", s.withAPI(s.handleDeleteClass))

	mux.HandleFunc("GET /api/events", s.withAPI(s.handleListEvents))
	mux.HandleFunc("POST /api/events", s.withAPI(s.handleCreateEvent))
	mux.HandleFunc("PUT /api/events/{id}", s.withAPI(s.handleUpdateEvent))
	mux.HandleFunc("DELETE /api/events/{id}", s.withAPI(s.handleDeleteEvent))

	mux.HandleFunc("GET /api/tasks", s.withAPI(s.handleListTasks))
	mux.HandleFunc("POST /api/tasks", s.withAPI(s.handleCreateTask))
	mux.HandleFunc("PUT /api/tasks/{id}", s.withAPI(s.handleUpdateTask))
	mux.HandleFunc("POST /api/tasks/{id}/toggle", s.withAPI(s.handleToggleTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", s.withAPI(s.handleDeleteTask))

	mux.HandleFunc("GET /api/shopping", s.withAPI(s.handleListShopping))
	mux.HandleFunc("POST /api/shopping", s.withAPI(s.handleCreateShoppingItem))
	mux.HandleFunc("PUT /api/shopping/{id}", s.withAPI(s.handleUpdateShoppingItem))
	mux.HandleFunc("DELETE /api/shopping/{id}", s.withAPI(s.handleDeleteShoppingItem))

	mux.HandleFunc("GET /api/activator", s.withAPI(s.handleGetActivator))
	mux.HandleFunc("PUT /api/activator", s.withAPI(s.handleReplaceActivator))

	mux.HandleFunc("GET /api/spark", s.withAPI(s.handleDailySpark))
	mux.HandleFunc("POST /api/spark/regenerate", s.withAPI(s.handleRegenerateSpark))
	mux.HandleFunc("POST /api/spark/promote", s.withAPI(s.handlePromoteSpark))

	return s
}

// Shutdown stops the server and its cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// withAPI adds rate limiting on mutating methods, security headers and access
// logging. Request ids and the request logger come from the outer middleware
// chain.
func (s *Server) withAPI(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ctx := r.Context()
		logger := applog.FromContext(ctx)

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			"request_id", applog.RequestIDFromContext(ctx),
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
