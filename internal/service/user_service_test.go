package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/store"
)

func newUserServiceForTest(t *testing.T) (UserService, AuthService) {
	t.Helper()
	users := repository.NewMemoryUsersRepository()
	ctx := context.Background()
	for _, u := range []domain.SysUser{
		{UserName: "alice", RealName: "Alice", PasswordHash: HashPassword("pw"), Sex: "SYS_USER_SEX_FEMALE"},
		{UserName: "bob", RealName: "Bob", PasswordHash: HashPassword("pw"), Sex: "SYS_USER_SEX_MALE"},
		{UserName: "carol", RealName: "Carol", PasswordHash: HashPassword("pw")},
	} {
		u := u
		_, err := users.CreateUser(ctx, &u)
		require.NoError(t, err)
	}
	auth := NewAuthService(users, store.NewMemoryKV(), nil, time.Hour, zap.NewNop())
	tr := NewDictTranslator(NewDictService(seededDicts(), zap.NewNop()))
	return NewUserService(auth, users, tr, zap.NewNop()), auth
}

func TestUserService_Info(t *testing.T) {
	svc, auth := newUserServiceForTest(t)
	ctx := context.Background()
	login, err := auth.Login(ctx, LoginRequest{Username: "alice", Password: "pw"})
	require.NoError(t, err)

	info, err := svc.Info(ctx, login.Token)

	require.NoError(t, err)
	assert.Equal(t, "alice", info.Username)
	assert.Equal(t, "Alice", info.Name)
	assert.Equal(t, AdminRoleID, info.RoleID)
	require.Len(t, info.Role.Permissions, 11)
	assert.Equal(t, "dashboard", info.Role.Permissions[0].PermissionID)
	assert.Equal(t, []string{"add", "query", "get", "update", "delete"}, info.Role.Permissions[0].ActionList)
	assert.NotZero(t, info.CreateTime)
}

func TestUserService_Info_BadToken(t *testing.T) {
	svc, _ := newUserServiceForTest(t)

	_, err := svc.Info(context.Background(), "bogus")

	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestUserService_List(t *testing.T) {
	svc, _ := newUserServiceForTest(t)

	res, err := svc.List(context.Background(), ListUsersRequest{
		Column: "userName",
		Order:  "desc",
		Page:   models.PageParams{PageNo: 1, PageSize: 2},
	})

	require.NoError(t, err)
	assert.Equal(t, 3, res.Total)
	require.Len(t, res.Records, 2)
	assert.Equal(t, "carol", res.Records[0]["userName"])
	assert.Equal(t, "bob", res.Records[1]["userName"])
	assert.Equal(t, "Male", res.Records[1]["sex_dict_text"])
}

func TestUserService_List_Search(t *testing.T) {
	svc, _ := newUserServiceForTest(t)

	res, err := svc.List(context.Background(), ListUsersRequest{Field: "ALI"})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Equal(t, "Female", res.Records[0]["sex_dict_text"])
}
