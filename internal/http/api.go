package httpapi

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/service"
)

// Deps are the services behind the admin API.
type Deps struct {
	Depts service.DeptService
	Auth  service.AuthService
	Users service.UserService
	Dicts service.DictService
	// RequireAuth guards department, dictionary and user routes with a session token.
	RequireAuth    bool
	MaxConnections int
	Logger         *zap.Logger
}

// NewHandler assembles the admin API with its middleware stack.
func NewHandler(d Deps) http.Handler {
	logger := d.Logger
	r := NewRouter(logger)
	r.RegisterHealth()

	var guard []Middleware
	if d.RequireAuth {
		guard = append(guard, RequireToken(d.Auth, logger))
	}
	r.RegisterAuthRoutes(NewAuthHandler(d.Auth, logger))
	r.RegisterDeptRoutes(NewDeptHandler(d.Depts, logger), guard...)
	r.RegisterDictRoutes(NewDictHandler(d.Dicts, logger), guard...)
	r.RegisterUserRoutes(NewUserHandler(d.Users, logger, guard...))

	return Chain(r,
		Recover(logger),
		AccessLog(logger),
		LimitConcurrency(d.MaxConnections, logger),
	)
}
