package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/repository"
)

func seededDicts() *repository.MemoryDictsRepository {
	r := repository.NewMemoryDictsRepository()
	r.Put(domain.Dict{ID: "d1", DictCode: "SYS_USER_SEX", DictName: "Sex"},
		domain.DictItem{ID: "i1", DictCode: "SYS_USER_SEX", ItemCode: "SYS_USER_SEX_MALE", ItemName: "Male", SortOrder: 1},
		domain.DictItem{ID: "i2", DictCode: "SYS_USER_SEX", ItemCode: "SYS_USER_SEX_FEMALE", ItemName: "Female", SortOrder: 2},
	)
	r.Put(domain.Dict{ID: "d2", DictCode: "SYS_USER_STATUS", DictName: "Status"},
		domain.DictItem{ID: "i3", DictCode: "SYS_USER_STATUS", ItemCode: "SYS_USER_STATUS_AVAILABLE", ItemName: "Available"},
	)
	return r
}

type failingDictsRepo struct{ repository.DictsRepository }

func (failingDictsRepo) ListDictItems(context.Context, string) ([]domain.DictItem, error) {
	return nil, errors.New("db down")
}

func TestDictService_ListDicts(t *testing.T) {
	svc := NewDictService(seededDicts(), zap.NewNop())

	res, err := svc.ListDicts(context.Background(), repository.DictFilter{DictCode: "sex"}, models.PageParams{})

	require.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "SYS_USER_SEX", res.Records[0].DictCode)
}

func TestDictService_QueryDictByCode(t *testing.T) {
	svc := NewDictService(seededDicts(), zap.NewNop())

	items := svc.QueryDictByCode(context.Background(), "SYS_USER_SEX")

	require.Len(t, items, 2)
	assert.Equal(t, "Male", items[0].ItemName)
	assert.Empty(t, svc.QueryDictByCode(context.Background(), "UNKNOWN"))
}

func TestDictService_QueryDictByCode_ErrorYieldsEmpty(t *testing.T) {
	svc := NewDictService(failingDictsRepo{}, zap.NewNop())

	items := svc.QueryDictByCode(context.Background(), "SYS_USER_SEX")

	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestDictTranslator_Translate(t *testing.T) {
	tr := NewDictTranslator(NewDictService(seededDicts(), zap.NewNop()))

	out, err := tr.Translate(context.Background(), domain.SysUser{
		UserName:     "alice",
		PasswordHash: "secret",
		Sex:          "SYS_USER_SEX_FEMALE",
		Status:       "SYS_USER_STATUS_LOCKED",
	})

	require.NoError(t, err)
	assert.Equal(t, "alice", out["userName"])
	assert.Equal(t, "Female", out["sex_dict_text"])
	assert.Equal(t, "", out["status_dict_text"])
	assert.NotContains(t, out, "password")
	assert.NotContains(t, out, "PasswordHash")
}

func TestTranslateSlice(t *testing.T) {
	tr := NewDictTranslator(NewDictService(seededDicts(), zap.NewNop()))

	out, err := TranslateSlice(context.Background(), tr, []domain.SysUser{
		{UserName: "a", Sex: "SYS_USER_SEX_MALE"},
		{UserName: "b", Sex: "SYS_USER_SEX_FEMALE"},
	})

	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "Male", out[0]["sex_dict_text"])
	assert.Equal(t, "Female", out[1]["sex_dict_text"])
}
