package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/repository"
)

// UserService serves the console user pages.
type UserService interface {
	Info(ctx context.Context, token string) (*UserInfo, error)
	List(ctx context.Context, req ListUsersRequest) (models.QueryResult[map[string]any], error)
}

// ListUsersRequest: Column is the sort column, Field the search text.
type ListUsersRequest struct {
	Column string
	Field  string
	Order  string
	Page   models.PageParams
}

type UserInfo struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Username   string   `json:"username"`
	Avatar     string   `json:"avatar"`
	Status     int      `json:"status"`
	Telephone  string   `json:"telephone"`
	Email      string   `json:"email"`
	DeptCode   string   `json:"deptCode"`
	CreateTime int64    `json:"createTime"`
	Deleted    int      `json:"deleted"`
	RoleID     string   `json:"roleId"`
	Role       RoleInfo `json:"role"`
}

type RoleInfo struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Describe    string       `json:"describe"`
	Status      int          `json:"status"`
	CreatorID   string       `json:"creatorId"`
	Deleted     int          `json:"deleted"`
	Permissions []Permission `json:"permissions"`
}

type Permission struct {
	RoleID          string             `json:"roleId"`
	PermissionID    string             `json:"permissionId"`
	PermissionName  string             `json:"permissionName"`
	Actions         []PermissionAction `json:"actions"`
	ActionEntitySet []PermissionAction `json:"actionEntitySet"`
	ActionList      []string           `json:"actionList"`
}

type PermissionAction struct {
	Action       string `json:"action"`
	DefaultCheck bool   `json:"defaultCheck"`
	Describe     string `json:"describe"`
}

var adminActions = []PermissionAction{
	{Action: "add", Describe: "Add"},
	{Action: "query", Describe: "Query"},
	{Action: "get", Describe: "Detail"},
	{Action: "update", Describe: "Update"},
	{Action: "delete", Describe: "Delete"},
}

var adminPermissions = [][2]string{
	{"dashboard", "Dashboard"},
	{"exception", "Exception pages"},
	{"result", "Result pages"},
	{"profile", "Profile pages"},
	{"table", "Tables"},
	{"form", "Forms"},
	{"order", "Orders"},
	{"permission", "Permissions"},
	{"role", "Roles"},
	{"user", "Users"},
	{"support", "Super module"},
}

// AdminRole is the role granted to every console user.
func AdminRole() RoleInfo {
	perms := make([]Permission, 0, len(adminPermissions))
	list := make([]string, 0, len(adminActions))
	for _, a := range adminActions {
		list = append(list, a.Action)
	}
	for _, p := range adminPermissions {
		perms = append(perms, Permission{
			RoleID:          AdminRoleID,
			PermissionID:    p[0],
			PermissionName:  p[1],
			Actions:         adminActions,
			ActionEntitySet: adminActions,
			ActionList:      list,
		})
	}
	return RoleInfo{
		ID:          AdminRoleID,
		Name:        "Administrator",
		Describe:    "Has every permission",
		Status:      1,
		CreatorID:   "system",
		Permissions: perms,
	}
}

type userService struct {
	auth       AuthService
	users      repository.UsersRepository
	translator *DictTranslator
	logger     *zap.Logger
}

func NewUserService(auth AuthService, users repository.UsersRepository, translator *DictTranslator, logger *zap.Logger) UserService {
	return &userService{auth: auth, users: users, translator: translator, logger: logger}
}

func (s *userService) Info(ctx context.Context, token string) (*UserInfo, error) {
	u, err := s.auth.CurrentUser(ctx, token)
	if err != nil {
		return nil, err
	}
	info := &UserInfo{
		ID:        u.ID,
		Name:      u.RealName,
		Username:  u.UserName,
		Avatar:    u.Avatar,
		Status:    1,
		Telephone: u.Phone,
		Email:     u.Email,
		DeptCode:  u.DeptCode,
		Deleted:   u.Deleted,
		RoleID:    AdminRoleID,
		Role:      AdminRole(),
	}
	if u.CreateTime != nil {
		info.CreateTime = u.CreateTime.UnixMilli()
	}
	return info, nil
}

func (s *userService) List(ctx context.Context, req ListUsersRequest) (models.QueryResult[map[string]any], error) {
	page := req.Page.Normalize()
	s.logger.Debug("List users",
		zap.String("column", req.Column),
		zap.String("field", req.Field),
		zap.Int("page_no", page.PageNo),
		zap.Int("page_size", page.PageSize),
	)
	filter := repository.UserFilter{
		Search:     strings.TrimSpace(req.Field),
		SortColumn: req.Column,
		Desc:       strings.EqualFold(req.Order, "desc"),
	}
	rows, total, err := s.users.ListUsers(ctx, filter, page.PageNo, page.PageSize)
	if err != nil {
		return models.QueryResult[map[string]any]{}, err
	}
	records, err := TranslateSlice(ctx, s.translator, rows)
	if err != nil {
		return models.QueryResult[map[string]any]{}, err
	}
	return models.NewQueryResult(records, total), nil
}
