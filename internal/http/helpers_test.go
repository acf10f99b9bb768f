package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/service"
	"github.com/yuanzac/submarine/internal/store"
)

type testAPI struct {
	handler http.Handler
	depts   *repository.MemoryDepartmentsRepository
	auth    service.AuthService
}

func sampleDepts() []domain.Department {
	return []domain.Department{
		{ID: "1", DeptCode: "A", DeptName: "Headquarters", SortOrder: 1},
		{ID: "2", ParentID: "1", DeptCode: "B", DeptName: "Engineering", Level: 1, SortOrder: 2},
		{ID: "3", ParentID: "2", DeptCode: "C", DeptName: "Platform", Level: 2, SortOrder: 3},
		{ID: "4", ParentID: "1", DeptCode: "D", DeptName: "Sales", Level: 1, SortOrder: 4},
	}
}

func newTestAPI(t *testing.T, requireAuth bool, seed ...domain.Department) *testAPI {
	t.Helper()
	logger := zap.NewNop()

	depts := repository.NewMemoryDepartmentsRepository(seed...)
	users := repository.NewMemoryUsersRepository()
	require.NoError(t, service.EnsureAdmin(context.Background(), users, "admin", logger))

	dictsRepo := repository.NewMemoryDictsRepository()
	dictsRepo.Put(domain.Dict{ID: "d1", DictCode: "SYS_USER_SEX", DictName: "Sex"},
		domain.DictItem{ID: "i1", DictCode: "SYS_USER_SEX", ItemCode: "SYS_USER_SEX_MALE", ItemName: "Male"},
	)

	auth := service.NewAuthService(users, store.NewMemoryKV(), store.NewMemoryLoginLog(100), time.Hour, logger)
	dicts := service.NewDictService(dictsRepo, logger)
	h := NewHandler(Deps{
		Depts:          service.NewDeptService(depts, nil, logger),
		Auth:           auth,
		Users:          service.NewUserService(auth, users, service.NewDictTranslator(dicts), logger),
		Dicts:          dicts,
		RequireAuth:    requireAuth,
		MaxConnections: 8,
		Logger:         logger,
	})
	return &testAPI{handler: h, depts: depts, auth: auth}
}

func (a *testAPI) login(t *testing.T) string {
	t.Helper()
	resp, err := a.auth.Login(context.Background(), service.LoginRequest{Username: "admin", Password: "admin"})
	require.NoError(t, err)
	return resp.Token
}

type envelope struct {
	Success    bool            `json:"success"`
	Code       int             `json:"code"`
	Message    string          `json:"message"`
	Result     json.RawMessage `json:"result"`
	Attributes map[string]any  `json:"attributes"`
}

func (a *testAPI) do(t *testing.T, method, target, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var rdr io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		rdr = bytes.NewBufferString(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, target, rdr)
	if token != "" {
		req.Header.Set(TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}
