package repository

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/yuanzac/submarine/internal/domain"
)

// MemoryDictsRepository is the in-memory DictsRepository used without a database.
type MemoryDictsRepository struct {
	mu    sync.RWMutex
	dicts []domain.Dict
	items map[string][]domain.DictItem
}

func NewMemoryDictsRepository() *MemoryDictsRepository {
	return &MemoryDictsRepository{items: map[string][]domain.DictItem{}}
}

var _ DictsRepository = (*MemoryDictsRepository)(nil)

// Put adds a dictionary with its items, replacing any earlier items for the code.
func (r *MemoryDictsRepository) Put(d domain.Dict, items ...domain.DictItem) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == "" {
		d.ID = newID()
	}
	r.dicts = append(r.dicts, d)
	for i := range items {
		if items[i].ID == "" {
			items[i].ID = newID()
		}
		items[i].DictCode = d.DictCode
	}
	r.items[d.DictCode] = items
}

func (r *MemoryDictsRepository) ListDicts(_ context.Context, filter DictFilter, page, size int) ([]domain.Dict, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code := strings.ToLower(filter.DictCode)
	name := strings.ToLower(filter.DictName)
	matched := []domain.Dict{}
	for _, d := range r.dicts {
		if d.Deleted != 0 {
			continue
		}
		if code != "" && !strings.Contains(strings.ToLower(d.DictCode), code) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(d.DictName), name) {
			continue
		}
		matched = append(matched, d)
	}
	sort.SliceStable(matched, func(i, j int) bool { return matched[i].DictCode < matched[j].DictCode })
	return paginate(matched, page, size), len(matched), nil
}

func (r *MemoryDictsRepository) ListDictItems(_ context.Context, dictCode string) ([]domain.DictItem, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.DictItem{}
	for _, it := range r.items[dictCode] {
		if it.Deleted == 0 {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func paginate[T any](items []T, page, size int) []T {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		return items
	}
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
