package client

import (
	"bytes"
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	httpapi "github.com/yuanzac/submarine/internal/http"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/service"
	"github.com/yuanzac/submarine/internal/store"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zap.NewNop()
	ctx := context.Background()

	depts := repository.NewMemoryDepartmentsRepository(
		domain.Department{ID: "1", DeptCode: "A", DeptName: "Headquarters", SortOrder: 1},
		domain.Department{ID: "2", ParentID: "1", DeptCode: "B", DeptName: "Engineering", SortOrder: 2},
		domain.Department{ID: "3", ParentID: "2", DeptCode: "C", DeptName: "Platform", SortOrder: 3},
	)
	users := repository.NewMemoryUsersRepository()
	require.NoError(t, service.EnsureAdmin(ctx, users, "admin", logger))
	dicts := service.NewDictService(repository.NewMemoryDictsRepository(), logger)
	auth := service.NewAuthService(users, store.NewMemoryKV(), store.NewMemoryLoginLog(10), time.Hour, logger)

	srv := httptest.NewServer(httpapi.NewHandler(httpapi.Deps{
		Depts:       service.NewDeptService(depts, nil, logger),
		Auth:        auth,
		Users:       service.NewUserService(auth, users, service.NewDictTranslator(dicts), logger),
		Dicts:       dicts,
		RequireAuth: true,
		Logger:      logger,
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_EndToEnd(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, zap.NewNop())
	ctx := context.Background()

	_, err := c.DepartmentTree(ctx, "", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 401, apiErr.Status)

	login, err := c.Login(ctx, "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", login.RoleID)
	assert.Equal(t, login.Token, c.Token())

	page, err := c.DepartmentTree(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.False(t, page.ShowAlert)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "C", page.Records[0].Children[0].Children[0].DeptCode)

	saved, err := c.AddDepartment(ctx, domain.Department{ParentID: "1", DeptCode: "D", DeptName: "Sales"})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	list, err := c.DepartmentSelectList(ctx, "B")
	require.NoError(t, err)
	require.Len(t, list, 4)
	disabled := map[string]bool{}
	for _, e := range list {
		disabled[e.DeptCode] = e.Disabled
	}
	assert.Equal(t, map[string]bool{"A": false, "B": true, "C": true, "D": false}, disabled)

	data, err := c.ExportDepartments(ctx)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	rows, err := f.GetRows("Departments")
	require.NoError(t, err)
	assert.Len(t, rows, 5)
	require.NoError(t, f.Close())

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.Token())
}

func TestClient_LoginFailure(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, zap.NewNop())

	_, err := c.Login(context.Background(), "admin", "wrong")

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "Incorrect username or password", apiErr.Message)
	assert.Empty(t, c.Token())
}

func TestClient_AddDepartmentValidation(t *testing.T) {
	srv := newTestServer(t)
	c := New(srv.URL, zap.NewNop())
	_, err := c.Login(context.Background(), "admin", "admin")
	require.NoError(t, err)

	_, err = c.AddDepartment(context.Background(), domain.Department{DeptName: "no code"})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Contains(t, apiErr.Message, "deptCode is required")
}
