package http

import (
	"bufio"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"budgetly/internal/auth"
	"budgetly/internal/log"
	"budgetly/internal/services"
	"budgetly/internal/ws"

	"github.com/gorilla/websocket"
)

type ctxKey string

const (
	ctxKeyOwner     ctxKey = "owner"
	ctxKeyRequestID ctxKey = "request_id"
)

// ownerFromContext returns the authenticated owner set by withAuth.
func ownerFromContext(ctx context.Context) string {
	owner, _ := ctx.Value(ctxKeyOwner).(string)
	return owner
}

type Server struct {
	http.Server

	plans         *services.PlanService
	transactions  *services.TransactionService
	progress      *services.ProgressService
	authenticator auth.Authenticator
	hub           *ws.Hub
	logger        *log.Logger

	rateLimiter  *rateLimiter
	metrics      *securityMetrics
	upgrader     websocket.Upgrader
	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(addr string, plans *services.PlanService, transactions *services.TransactionService, progress *services.ProgressService, authenticator auth.Authenticator, hub *ws.Hub, logger *log.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
		plans:         plans,
		transactions:  transactions,
		progress:      progress,
		authenticator: authenticator,
		hub:           hub,
		logger:        logger.WithComponent(log.ComponentHTTP),
		rateLimiter:   newRateLimiter(),
		metrics:       &securityMetrics{},
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/planner", s.protected(s.handleUpsertPlanner))
	mux.HandleFunc("GET /api/planner", s.protected(s.handleGetPlanner))
	mux.HandleFunc("GET /api/planner/progress", s.protected(s.handleGetProgress))

	mux.HandleFunc("POST /api/expenses", s.protected(s.handleCreateExpense))
	mux.HandleFunc("GET /api/expenses", s.protected(s.handleListExpenses))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.protected(s.handleDeleteExpense))

	mux.HandleFunc("POST /api/incomes", s.protected(s.handleCreateIncome))
	mux.HandleFunc("GET /api/incomes", s.protected(s.handleListIncomes))
	mux.HandleFunc("DELETE /api/incomes/{id}", s.protected(s.handleDeleteIncome))

	mux.HandleFunc("GET /ws/progress", s.protected(s.handleProgressSocket))

	return s
}

// protected stacks the standard middleware in front of an authenticated handler.
func (s *Server) protected(next http.HandlerFunc) http.HandlerFunc {
	return s.withMiddleware(s.withAuth(next))
}

// withMiddleware adds security headers, rate limiting, request IDs and request
// logging.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		clientIP := extractClientIP(r)
		requestID := generateRequestID()

		ctx := context.WithValue(r.Context(), ctxKeyRequestID, requestID)
		r = r.WithContext(ctx)

		s.logger.InfoContext(ctx, "Request started",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldClientIP, clientIP)

		if r.Method != http.MethodGet && !s.rateLimiter.allow(clientIP, s.metrics) {
			s.logger.WarnContext(ctx, "Rate limit exceeded",
				log.FieldClientIP, clientIP,
				log.FieldMethod, r.Method,
				log.FieldPath, r.URL.Path)
			ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded").
				Header("Retry-After", "60").
				Write(w)
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		s.logger.InfoContext(ctx, "Request completed",
			log.FieldRequestID, requestID,
			log.FieldMethod, r.Method,
			log.FieldPath, r.URL.Path,
			log.FieldStatusCode, rw.statusCode,
			log.FieldDuration, time.Since(start).Milliseconds())
	}
}

// withAuth rejects the request before any storage access when the bearer
// token is missing or invalid.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := s.authenticator.Authenticate(r)
		if err != nil {
			s.metrics.recordAuthFailure()
			s.logger.WarnContext(r.Context(), "Authentication failed",
				log.FieldPath, r.URL.Path,
				log.FieldError, err)
			UnauthorizedError("authentication required").Write(w)
			return
		}

		ctx := context.WithValue(r.Context(), ctxKeyOwner, owner)
		next(w, r.WithContext(ctx))
	}
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack forwards to the underlying writer so websocket upgrades work
// through the middleware stack.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// Shutdown gracefully shuts down the server and cleanup routines.
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

// generateRequestID creates a unique request ID for tracing.
func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
