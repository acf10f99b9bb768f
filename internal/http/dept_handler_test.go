package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/depttree"
	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/repository"
	"github.com/yuanzac/submarine/internal/service"
)

type treePage struct {
	Records []*depttree.Node `json:"records"`
	Total   int              `json:"total"`
}

func TestDeptTree(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	rec, env := api.do(t, http.MethodGet, "/api/sys/dept/tree", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.Nil(t, env.Attributes)
	var page treePage
	require.NoError(t, json.Unmarshal(env.Result, &page))
	assert.Equal(t, 4, page.Total)
	require.Len(t, page.Records, 1)
	assert.Equal(t, "A", page.Records[0].DeptCode)
	require.Len(t, page.Records[0].Children, 2)
	assert.Equal(t, "C", page.Records[0].Children[0].Children[0].DeptCode)
}

func TestDeptTree_FilterMakesOrphansRoots(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodGet, "/api/sys/dept/tree?deptName=engin", "", nil)

	require.True(t, env.Success)
	var page treePage
	require.NoError(t, json.Unmarshal(env.Result, &page))
	require.Len(t, page.Records, 1)
	assert.Equal(t, "B", page.Records[0].DeptCode)
	assert.Empty(t, page.Records[0].Children)
}

type dupIDRepo struct {
	repository.DepartmentsRepository
	rows []domain.Department
}

func (r dupIDRepo) ListDepartments(context.Context, repository.DepartmentFilter) ([]domain.Department, error) {
	return r.rows, nil
}

func TestDeptTree_MismatchShowsAlert(t *testing.T) {
	// Rows sharing an id cannot all be placed in the tree.
	repo := dupIDRepo{rows: []domain.Department{
		{ID: "1", DeptCode: "A"},
		{ID: "1", DeptCode: "A2"},
	}}
	api := &testAPI{handler: NewDeptHandler(service.NewDeptService(repo, nil, zap.NewNop()), zap.NewNop())}

	_, env := api.do(t, http.MethodGet, "/api/sys/dept/tree", "", nil)

	require.True(t, env.Success)
	assert.Equal(t, true, env.Attributes[AttrShowAlert])
	var page struct {
		Records []domain.Department `json:"records"`
		Total   int                 `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Result, &page))
	assert.Len(t, page.Records, 2)
	assert.Equal(t, 2, page.Total)

	_, env = api.do(t, http.MethodGet, "/api/sys/dept/tree?deptCode=a", "", nil)
	assert.Nil(t, env.Attributes)
}

func TestDeptQueryIDTree(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodGet, "/api/sys/dept/queryIdTree?disableDeptCode=B", "", nil)

	require.True(t, env.Success)
	var list []depttree.SelectEntry
	require.NoError(t, json.Unmarshal(env.Result, &list))
	require.Len(t, list, 4)
	got := map[string]bool{}
	for _, e := range list {
		got[e.DeptCode] = e.Disabled
	}
	assert.Equal(t, map[string]bool{"A": false, "B": true, "C": true, "D": false}, got)
	assert.Equal(t, "2", list[1].Key)
	assert.Equal(t, "B", list[1].Value)
	assert.Equal(t, "Engineering", list[1].Title)
}

func TestDeptAdd(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodPost, "/api/sys/dept/add", "", map[string]any{
		"parentId": "4", "deptCode": "E", "deptName": "EMEA Sales",
	})

	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Save department successfully!", env.Message)
	var saved domain.Department
	require.NoError(t, json.Unmarshal(env.Result, &saved))
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, 2, saved.Level)
}

func TestDeptAdd_Failures(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodPost, "/api/sys/dept/add", "", map[string]any{"deptName": "x"})
	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Save department failed!")
	assert.Contains(t, env.Message, "deptCode is required")

	_, env = api.do(t, http.MethodPost, "/api/sys/dept/add", "", map[string]any{"deptCode": "A", "deptName": "dup"})
	assert.False(t, env.Success)
	assert.Equal(t, "Save department failed! Department code already exists", env.Message)

	rec, env := api.do(t, http.MethodPost, "/api/sys/dept/add", "", "{not json")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, env.Success)
}

func TestDeptEdit(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodPut, "/api/sys/dept/edit", "", map[string]any{"id": "3", "deptName": "Infra"})
	require.True(t, env.Success, env.Message)
	assert.Equal(t, "Update department successfully!", env.Message)

	d, err := api.depts.GetDepartment(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, "Infra", d.DeptName)
}

func TestDeptEdit_NotFound(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodPut, "/api/sys/dept/edit", "", map[string]any{"id": "99", "deptName": "x"})

	assert.False(t, env.Success)
	assert.Equal(t, "Can not found department:99", env.Message)
}

func TestDeptEdit_BlankCodeAndName(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)
	ctx := context.Background()
	before, err := api.depts.GetDepartment(ctx, "2")
	require.NoError(t, err)

	_, env := api.do(t, http.MethodPut, "/api/sys/dept/edit", "", map[string]any{"id": "2", "deptCode": "", "deptName": " "})

	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "deptCode must not be empty")
	after, err := api.depts.GetDepartment(ctx, "2")
	require.NoError(t, err)
	assert.Equal(t, before.DeptCode, after.DeptCode)
	assert.Equal(t, before.DeptName, after.DeptName)
}

func TestDeptEdit_ParentInSubtree(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodPut, "/api/sys/dept/edit", "", map[string]any{"id": "2", "parentId": "3"})

	assert.False(t, env.Success)
	assert.Contains(t, env.Message, "Update department failed!")
	assert.Contains(t, env.Message, "descendants")
}

func TestDeptDeleteRestore(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)
	ctx := context.Background()

	_, env := api.do(t, http.MethodDelete, "/api/sys/dept/delete?id=4&deleted=1", "", nil)
	require.True(t, env.Success)
	assert.Equal(t, "Delete department successfully!", env.Message)
	d, err := api.depts.GetDepartment(ctx, "4")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Deleted)

	_, env = api.do(t, http.MethodDelete, "/api/sys/dept/delete?id=4&deleted=0", "", nil)
	require.True(t, env.Success)
	assert.Equal(t, "Restore department successfully!", env.Message)

	_, env = api.do(t, http.MethodDelete, "/api/sys/dept/delete?id=99&deleted=1", "", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Delete department failed!", env.Message)
}

func TestDeptDelete_DefaultsToDelete(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodDelete, "/api/sys/dept/delete?id=4", "", nil)

	require.True(t, env.Success)
	assert.Equal(t, "Delete department successfully!", env.Message)
	d, err := api.depts.GetDepartment(context.Background(), "4")
	require.NoError(t, err)
	assert.Equal(t, 1, d.Deleted)
}

func TestDeptDeleteBatch(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	_, env := api.do(t, http.MethodDelete, "/api/sys/dept/deleteBatch?ids=3,4", "", nil)

	require.True(t, env.Success)
	assert.Equal(t, "Batch delete department successfully!", env.Message)
	rows, err := api.depts.ListDepartments(context.Background(), repository.DepartmentFilter{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	_, env = api.do(t, http.MethodDelete, "/api/sys/dept/deleteBatch?ids=", "", nil)
	assert.False(t, env.Success)
}

func TestDeptRemove(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)
	ctx := context.Background()

	_, env := api.do(t, http.MethodDelete, "/api/sys/dept/remove", "", "3")
	require.True(t, env.Success, env.Message)
	_, err := api.depts.GetDepartment(ctx, "3")
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, env = api.do(t, http.MethodDelete, "/api/sys/dept/remove", "", `"4"`)
	require.True(t, env.Success)

	_, env = api.do(t, http.MethodDelete, "/api/sys/dept/remove?id=4", "", nil)
	assert.False(t, env.Success)
	assert.Equal(t, "Delete department failed!", env.Message)
}

func TestDeptResetParentDept(t *testing.T) {
	seed := sampleDepts()
	seed[2].Level = 7
	api := newTestAPI(t, false, seed...)

	_, env := api.do(t, http.MethodPut, "/api/sys/dept/resetParentDept", "", nil)

	require.True(t, env.Success)
	d, err := api.depts.GetDepartment(context.Background(), "3")
	require.NoError(t, err)
	assert.Equal(t, 2, d.Level)
}

func TestDeptExport(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	rec, _ := api.do(t, http.MethodGet, "/api/sys/dept/export", "", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "attachment; filename=departments.xlsx", rec.Header().Get("Content-Disposition"))
	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(deptSheet)
	require.NoError(t, err)
	require.Len(t, rows, 5)
	assert.Equal(t, DeptExportHeader, rows[0])
	assert.Equal(t, "Headquarters", rows[1][0])
	assert.Equal(t, "        Platform", rows[3][0])
}

func TestDeptRoutes_UnknownAndWrongMethod(t *testing.T) {
	api := newTestAPI(t, false, sampleDepts()...)

	rec, _ := api.do(t, http.MethodGet, "/api/sys/dept/nope", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = api.do(t, http.MethodPost, "/api/sys/dept/tree", "", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeptRoutes_RequireToken(t *testing.T) {
	api := newTestAPI(t, true, sampleDepts()...)

	rec, env := api.do(t, http.MethodGet, "/api/sys/dept/tree", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeTokenInvalid, env.Code)

	token := api.login(t)
	_, env = api.do(t, http.MethodPost, "/api/sys/dept/add", token, map[string]any{"deptCode": "Z", "deptName": "Zed"})
	require.True(t, env.Success)
	var saved domain.Department
	require.NoError(t, json.Unmarshal(env.Result, &saved))
	assert.Equal(t, "admin", saved.CreateBy)
}
