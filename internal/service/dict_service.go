package service

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"go.uber.org/zap"

	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/models"
	"github.com/yuanzac/submarine/internal/repository"
)

// DictService reads system dictionaries.
type DictService interface {
	ListDicts(ctx context.Context, filter repository.DictFilter, page models.PageParams) (models.QueryResult[domain.Dict], error)
	// QueryDictByCode returns the items of a dictionary. Lookup failures are
	// logged and yield an empty list.
	QueryDictByCode(ctx context.Context, dictCode string) []domain.DictItem
}

type dictService struct {
	repo   repository.DictsRepository
	logger *zap.Logger
}

func NewDictService(repo repository.DictsRepository, logger *zap.Logger) DictService {
	return &dictService{repo: repo, logger: logger}
}

func (s *dictService) ListDicts(ctx context.Context, filter repository.DictFilter, page models.PageParams) (models.QueryResult[domain.Dict], error) {
	page = page.Normalize()
	rows, total, err := s.repo.ListDicts(ctx, filter, page.PageNo, page.PageSize)
	if err != nil {
		return models.QueryResult[domain.Dict]{}, err
	}
	return models.NewQueryResult(rows, total), nil
}

func (s *dictService) QueryDictByCode(ctx context.Context, dictCode string) []domain.DictItem {
	items, err := s.repo.ListDictItems(ctx, strings.TrimSpace(dictCode))
	if err != nil {
		s.logger.Error("Failed to query dict items", zap.String("dict_code", dictCode), zap.Error(err))
		return []domain.DictItem{}
	}
	return items
}

// DictTextSuffix is appended to a field's json name to hold its dictionary text.
const DictTextSuffix = "_dict_text"

// DictTranslator renders structs as JSON objects and adds a "<field>_dict_text"
// entry for every string field tagged `dict:"<DICT_CODE>"`.
type DictTranslator struct {
	dicts DictService
}

func NewDictTranslator(dicts DictService) *DictTranslator {
	return &DictTranslator{dicts: dicts}
}

// TranslateSlice translates items sharing one dictionary lookup cache.
func TranslateSlice[T any](ctx context.Context, t *DictTranslator, items []T) ([]map[string]any, error) {
	cache := map[string]map[string]string{}
	out := make([]map[string]any, 0, len(items))
	for i := range items {
		m, err := t.translate(ctx, items[i], cache)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (t *DictTranslator) Translate(ctx context.Context, v any) (map[string]any, error) {
	return t.translate(ctx, v, map[string]map[string]string{})
}

func (t *DictTranslator) translate(ctx context.Context, v any, cache map[string]map[string]string) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("dict translate: %w", err)
	}
	out := map[string]any{}
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("dict translate: %w", err)
	}

	rv := reflect.Indirect(reflect.ValueOf(v))
	if rv.Kind() != reflect.Struct {
		return out, nil
	}
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		code := f.Tag.Get("dict")
		if code == "" || f.Type.Kind() != reflect.String {
			continue
		}
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			continue
		}
		if name == "" {
			name = f.Name
		}

		texts, ok := cache[code]
		if !ok {
			texts = map[string]string{}
			for _, it := range t.dicts.QueryDictByCode(ctx, code) {
				texts[it.ItemCode] = it.ItemName
			}
			cache[code] = texts
		}
		out[name+DictTextSuffix] = texts[rv.Field(i).String()]
	}
	return out, nil
}
