// Package http exposes the JSON API: expense CRUD behind bearer auth, user
// registration and login, and the embedded web frontend.
package http

import (
	"context"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"kharacha/internal/auth"
	"kharacha/internal/cache"
	"kharacha/internal/core"
	"kharacha/internal/middleware/ratelimit"
	"kharacha/internal/middleware/security"
	"kharacha/internal/middleware/trace"
	"kharacha/internal/services"
	"kharacha/internal/storage"
	appweb "kharacha/web"
)

type Server struct {
	http.Server

	expenses *services.ExpenseService
	users    storage.UserStore
	auth     *auth.Manager
	taxonomy *core.Taxonomy

	limiter *ratelimit.Limiter

	// listCache keeps per-owner expense lists hot; every mutation by an
	// owner invalidates their entry.
	listCache *cache.LRUCache[[]core.Expense]
	cacheMgr  *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, expenses *services.ExpenseService, users storage.UserStore, authMgr *auth.Manager, taxonomy *core.Taxonomy) *Server {
	mux := http.NewServeMux()

	s := &Server{
		expenses:  expenses,
		users:     users,
		auth:      authMgr,
		taxonomy:  taxonomy,
		limiter:   ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		listCache: cache.NewLRUCache[[]core.Expense](200, 5*time.Minute),
		cacheMgr:  cache.NewManager(),
	}
	s.cacheMgr.Register(s.listCache)
	s.cacheMgr.StartCleanup(10 * time.Minute)

	mux.HandleFunc("POST /api/user/register", s.handleRegister)
	mux.HandleFunc("POST /api/user/login", s.handleLogin)

	mux.HandleFunc("POST /api/expenses/add", s.requireAuth(s.handleAddExpense))
	mux.HandleFunc("POST /api/expenses/user", s.requireAuth(s.handleListExpenses))
	mux.HandleFunc("PUT /api/expenses/{id}", s.requireAuth(s.handleUpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.requireAuth(s.handleDeleteExpense))

	mux.HandleFunc("GET /api/taxonomy", s.handleTaxonomy)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	// Embedded frontend at the root.
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := security.StaticAssetMiddleware(3600)(http.FileServer(http.FS(sub)))
		mux.Handle("/", static)
	}

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	tracer := trace.NewMiddleware(security.ExtractClientIP)
	handler := tracer.Middleware(headers.Middleware(s.withRateLimit(mux)))

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	return s
}

// withRateLimit throttles mutating API calls per client IP.
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodDelete:
			if !s.limiter.Allow(security.ExtractClientIP(r)) {
				w.Header().Set("Retry-After", "60")
				writeError(r.Context(), w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Shutdown stops the background routines and drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		s.cacheMgr.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
