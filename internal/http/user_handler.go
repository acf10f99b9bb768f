package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/service"
)

const userPrefix = "/api/user/"

type UserHandler struct {
	users  service.UserService
	logger *zap.Logger
	// guard wraps info and list; 2step-code stays public.
	guard []Middleware
}

func NewUserHandler(users service.UserService, logger *zap.Logger, guard ...Middleware) *UserHandler {
	return &UserHandler{users: users, logger: logger, guard: guard}
}

func (h *UserHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, userPrefix)
	switch {
	case action == "info" && r.Method == http.MethodGet:
		Chain(http.HandlerFunc(h.Info), h.guard...).ServeHTTP(w, r)
	case action == "2step-code" && r.Method == http.MethodPost:
		writeStepCode(w)
	case action == "list" && r.Method == http.MethodGet:
		Chain(http.HandlerFunc(h.List), h.guard...).ServeHTTP(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *UserHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.users.Info(r.Context(), tokenFromReq(r))
	if err != nil {
		if errors.Is(err, service.ErrTokenInvalid) {
			writeJSON(w, http.StatusUnauthorized, Response[any]{
				Success: false,
				Code:    CodeTokenInvalid,
				Message: "Token invalid, please login again",
			})
			return
		}
		h.logger.Error("Query user info failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Query user info failed!"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(info))
}

// List pages sys_user. column is the sort column, field the search text.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := service.ListUsersRequest{
		Column: q.Get("column"),
		Field:  q.Get("field"),
		Order:  q.Get("order"),
		Page: models.PageParams{
			PageNo:   parseInt(q.Get("pageNo"), 1),
			PageSize: parseInt(q.Get("pageSize"), models.DefaultPageSize),
		},
	}
	res, err := h.users.List(r.Context(), req)
	if err != nil {
		h.logger.Error("Query user list failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Query user list failed!"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(res))
}
