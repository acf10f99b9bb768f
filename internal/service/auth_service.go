package service

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/store"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrTokenInvalid       = errors.New("token invalid or expired")
)

// AdminRoleID is the role every console user is granted.
const AdminRoleID = "admin"

const tokenKeyPrefix = "submarine:token:"

// AuthService handles console logins and session tokens.
type AuthService interface {
	Login(ctx context.Context, req LoginRequest) (*LoginResponse, error)
	Logout(ctx context.Context, token string) error
	// CurrentUser resolves a session token to its user.
	CurrentUser(ctx context.Context, token string) (*domain.SysUser, error)
	RecentLogins(ctx context.Context, count int64) ([]store.LoginAttempt, error)
	ActiveSessions(ctx context.Context) (int, error)
}

type LoginRequest struct {
	Username  string `json:"username" validate:"required"`
	Password  string `json:"password" validate:"required"`
	IPAddress string `json:"-"`
	UserAgent string `json:"-"`
}

type LoginResponse struct {
	ID       string `json:"id"`
	UserName string `json:"userName"`
	RealName string `json:"realName"`
	Avatar   string `json:"avatar,omitempty"`
	DeptCode string `json:"deptCode,omitempty"`
	RoleID   string `json:"roleId"`
	Token    string `json:"token"`
}

type authService struct {
	users    repository.UsersRepository
	kv       store.KV
	loginLog store.LoginLog
	tokenTTL time.Duration
	logger   *zap.Logger
}

func NewAuthService(users repository.UsersRepository, kv store.KV, loginLog store.LoginLog, tokenTTL time.Duration, logger *zap.Logger) AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &authService{users: users, kv: kv, loginLog: loginLog, tokenTTL: tokenTTL, logger: logger}
}

// HashPassword returns the hex SHA256 stored in sys_user.password.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

func (s *authService) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	if err := validateStruct(req); err != nil {
		s.record(ctx, req, false, "missing_credentials")
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByName(ctx, req.Username)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("User login failed: user not found",
			zap.String("user_name", req.Username),
			zap.String("ip_address", req.IPAddress),
		)
		s.record(ctx, req, false, "user_not_found")
		return nil, ErrInvalidCredentials
	}

	if subtle.ConstantTimeCompare([]byte(user.PasswordHash), []byte(HashPassword(req.Password))) != 1 {
		s.logger.Warn("User login failed: wrong password",
			zap.String("user_name", req.Username),
			zap.String("ip_address", req.IPAddress),
		)
		s.record(ctx, req, false, "wrong_password")
		return nil, ErrInvalidCredentials
	}

	token := uuid.NewString()
	if err := s.kv.Set(ctx, tokenKeyPrefix+token, user.UserName, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("failed to store token: %w", err)
	}
	s.record(ctx, req, true, "")
	s.logger.Info("User logged in",
		zap.String("user_name", user.UserName),
		zap.String("ip_address", req.IPAddress),
	)

	return &LoginResponse{
		ID:       user.ID,
		UserName: user.UserName,
		RealName: user.RealName,
		Avatar:   user.Avatar,
		DeptCode: user.DeptCode,
		RoleID:   AdminRoleID,
		Token:    token,
	}, nil
}

func (s *authService) record(ctx context.Context, req LoginRequest, ok bool, reason string) {
	if s.loginLog == nil {
		return
	}
	err := s.loginLog.Record(ctx, store.LoginAttempt{
		UserName:  req.Username,
		IPAddress: req.IPAddress,
		UserAgent: req.UserAgent,
		Success:   ok,
		Reason:    reason,
		Time:      time.Now().UTC(),
	})
	if err != nil {
		s.logger.Warn("Failed to record login attempt", zap.Error(err))
	}
}

func (s *authService) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return ErrTokenInvalid
	}
	return s.kv.Delete(ctx, tokenKeyPrefix+token)
}

func (s *authService) CurrentUser(ctx context.Context, token string) (*domain.SysUser, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}
	name, err := s.kv.Get(ctx, tokenKeyPrefix+token)
	if err != nil {
		if errors.Is(err, store.ErrMiss) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	user, err := s.users.GetUserByName(ctx, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	return user, nil
}

func (s *authService) RecentLogins(ctx context.Context, count int64) ([]store.LoginAttempt, error) {
	if s.loginLog == nil {
		return []store.LoginAttempt{}, nil
	}
	if count <= 0 {
		count = 20
	}
	return s.loginLog.Recent(ctx, count)
}

func (s *authService) ActiveSessions(ctx context.Context) (int, error) {
	keys, err := s.kv.ScanKeys(ctx, tokenKeyPrefix+"*")
	if err != nil {
		return 0, fmt.Errorf("failed to scan sessions: %w", err)
	}
	return len(keys), nil
}

// EnsureAdmin creates the admin account when it does not exist yet.
func EnsureAdmin(ctx context.Context, users repository.UsersRepository, password string, logger *zap.Logger) error {
	_, err := users.GetUserByName(ctx, "admin")
	if err == nil {
		return nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return err
	}
	_, err = users.CreateUser(ctx, &domain.SysUser{
		UserName:     "admin",
		RealName:     "Administrator",
		PasswordHash: HashPassword(password),
		Sex:          "SYS_USER_SEX_MALE",
		Status:       "SYS_USER_STATUS_AVAILABLE",
		RoleCode:     AdminRoleID,
	})
	if err != nil {
		return fmt.Errorf("failed to create admin user: %w", err)
	}
	logger.Info("Created admin user")
	return nil
}
