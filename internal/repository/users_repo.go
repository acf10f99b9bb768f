package repository

import (
	"context"

	"github.com/yuanzac/submarine/internal/domain"
)

// UsersRepository is the data access for sys_user.
type UsersRepository interface {
	GetUserByName(ctx context.Context, userName string) (*domain.SysUser, error)
	ListUsers(ctx context.Context, filter UserFilter, page, size int) ([]domain.SysUser, int, error)
	CreateUser(ctx context.Context, u *domain.SysUser) (string, error)
}

// UserFilter narrows and orders ListUsers.
// SortColumn accepts userName, realName or createTime; anything else sorts by user name.
type UserFilter struct {
	Search     string
	SortColumn string
	Desc       bool
}

var userSortColumns = map[string]string{
	"userName":   "user_name",
	"realName":   "real_name",
	"createTime": "create_time",
}
