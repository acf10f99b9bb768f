package repository

import (
	"context"

	"github.com/yuanzac/submarine/internal/domain"
)

// DictsRepository is the data access for sys_dict and sys_dict_item.
type DictsRepository interface {
	ListDicts(ctx context.Context, filter DictFilter, page, size int) ([]domain.Dict, int, error)
	// ListDictItems returns the active items of dictCode ordered by sort_order.
	ListDictItems(ctx context.Context, dictCode string) ([]domain.DictItem, error)
}

// DictFilter narrows ListDicts with case-insensitive substring matches.
type DictFilter struct {
	DictCode string
	DictName string
}
