package httpapi

import (
	"net/http"

	"go.uber.org/zap"
)

// Router wraps the standard library ServeMux.
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) HandleHandler(pattern string, h http.Handler) {
	r.mux.Handle(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterDeptRoutes mounts /api/sys/dept/*.
func (r *Router) RegisterDeptRoutes(h *DeptHandler, mws ...Middleware) {
	r.HandleHandler(deptPrefix, Chain(h, mws...))
}

// RegisterDictRoutes mounts /api/sys/dict/* and /api/sys/dictItem/*.
func (r *Router) RegisterDictRoutes(h *DictHandler, mws ...Middleware) {
	r.HandleHandler(dictPrefix, Chain(h, mws...))
	r.HandleHandler(dictItemPrefix, Chain(h, mws...))
}

// RegisterAuthRoutes mounts /api/auth/*. Login and 2step-code are public.
func (r *Router) RegisterAuthRoutes(h *AuthHandler) {
	r.HandleHandler(authPrefix, h)
}

// RegisterUserRoutes mounts /api/user/*. The handler guards its own actions.
func (r *Router) RegisterUserRoutes(h *UserHandler) {
	r.HandleHandler(userPrefix, h)
}

// RegisterHealth mounts a liveness check answering {"status":"ok"}.
func (r *Router) RegisterHealth() {
	r.Handle("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
