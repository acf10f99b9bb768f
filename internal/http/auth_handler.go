package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/service"
)

const authPrefix = "/api/auth/"

type AuthHandler struct {
	auth   service.AuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, authPrefix)
	switch {
	case action == "login" && r.Method == http.MethodPost:
		h.Login(w, r)
	case action == "logout" && r.Method == http.MethodPost:
		h.Logout(w, r)
	case action == "2step-code" && r.Method == http.MethodPost:
		writeStepCode(w)
	case action == "login-log" && r.Method == http.MethodGet:
		RequireToken(h.auth, h.logger)(http.HandlerFunc(h.LoginLog)).ServeHTTP(w, r)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := readBodyJSON(r, maxBodyBytes, &req); err != nil {
		writeJSON(w, http.StatusOK, Fail("invalid body"))
		return
	}
	req.IPAddress = clientIP(r)
	req.UserAgent = r.UserAgent()

	resp, err := h.auth.Login(r.Context(), req)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			writeJSON(w, http.StatusOK, Fail("Incorrect username or password"))
			return
		}
		h.logger.Error("Login failed", zap.String("user_name", req.Username), zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Login failed!"))
		return
	}
	writeJSON(w, http.StatusOK, Ok(resp))
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.auth.Logout(r.Context(), tokenFromReq(r)); err != nil {
		if !errors.Is(err, service.ErrTokenInvalid) {
			h.logger.Error("Logout failed", zap.Error(err))
		}
		writeJSON(w, http.StatusOK, Fail("Logout failed!"))
		return
	}
	writeJSON(w, http.StatusOK, OkMessage[any]("Logout successfully!", nil))
}

// LoginLog returns the newest login attempts; ?limit= defaults to 20.
func (h *AuthHandler) LoginLog(w http.ResponseWriter, r *http.Request) {
	limit := parseInt(r.URL.Query().Get("limit"), 20)
	attempts, err := h.auth.RecentLogins(r.Context(), int64(limit))
	if err != nil {
		h.logger.Error("Query login log failed", zap.Error(err))
		writeJSON(w, http.StatusOK, Fail("Query login log failed!"))
		return
	}
	resp := Ok(attempts)
	if n, err := h.auth.ActiveSessions(r.Context()); err == nil {
		resp = resp.WithAttribute("activeSessions", n)
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeStepCode(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, Ok(map[string]int{"stepCode": 1}))
}
