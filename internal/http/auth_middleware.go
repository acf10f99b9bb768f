package httpapi

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/service"
)

type ctxKey int

const userCtxKey ctxKey = iota

// UserFromContext returns the user attached by RequireToken.
func UserFromContext(ctx context.Context) (*domain.SysUser, bool) {
	u, ok := ctx.Value(userCtxKey).(*domain.SysUser)
	return u, ok
}

// RequireToken rejects requests without a live session token.
func RequireToken(auth service.AuthService, logger *zap.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, err := auth.CurrentUser(r.Context(), tokenFromReq(r))
			if err != nil {
				if !errors.Is(err, service.ErrTokenInvalid) {
					logger.Error("Token lookup failed", zap.Error(err))
				}
				writeJSON(w, http.StatusUnauthorized, Response[any]{
					Success: false,
					Code:    CodeTokenInvalid,
					Message: "Token invalid, please login again",
				})
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userCtxKey, u)))
		})
	}
}

func operator(r *http.Request) string {
	if u, ok := UserFromContext(r.Context()); ok {
		return u.UserName
	}
	return ""
}
