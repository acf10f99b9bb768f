package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yuanzac/submarine/internal/domain"
)

// PostgresDictsRepository implements DictsRepository.
type PostgresDictsRepository struct {
	db *sql.DB
}

func NewPostgresDictsRepository(db *sql.DB) *PostgresDictsRepository {
	return &PostgresDictsRepository{db: db}
}

var _ DictsRepository = (*PostgresDictsRepository)(nil)

func (r *PostgresDictsRepository) ListDicts(ctx context.Context, filter DictFilter, page, size int) ([]domain.Dict, int, error) {
	where := []string{"deleted = 0"}
	args := []any{}
	argIdx := 1

	if filter.DictCode != "" {
		where = append(where, fmt.Sprintf("dict_code ILIKE $%d"+likeEscape, argIdx))
		args = append(args, likePattern(filter.DictCode))
		argIdx++
	}
	if filter.DictName != "" {
		where = append(where, fmt.Sprintf("dict_name ILIKE $%d"+likeEscape, argIdx))
		args = append(args, likePattern(filter.DictName))
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sys_dict WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count dicts: %w", err)
	}

	query := fmt.Sprintf(`
		SELECT id, dict_code, dict_name, COALESCE(description, ''), deleted, COALESCE(type, 0)
		FROM sys_dict
		WHERE %s
		ORDER BY dict_code
		LIMIT $%d OFFSET $%d`, whereClause, argIdx, argIdx+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list dicts: %w", err)
	}
	defer rows.Close()

	out := []domain.Dict{}
	for rows.Next() {
		var d domain.Dict
		if err := rows.Scan(&d.ID, &d.DictCode, &d.DictName, &d.Description, &d.Deleted, &d.Type); err != nil {
			return nil, 0, fmt.Errorf("failed to scan dict: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate dicts: %w", err)
	}
	return out, total, nil
}

func (r *PostgresDictsRepository) ListDictItems(ctx context.Context, dictCode string) ([]domain.DictItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, item_code, item_name, dict_code, COALESCE(description, ''), COALESCE(sort_order, 0), deleted
		FROM sys_dict_item
		WHERE dict_code = $1 AND deleted = 0
		ORDER BY sort_order, item_code`, dictCode)
	if err != nil {
		return nil, fmt.Errorf("failed to list dict items: %w", err)
	}
	defer rows.Close()

	out := []domain.DictItem{}
	for rows.Next() {
		var it domain.DictItem
		if err := rows.Scan(&it.ID, &it.ItemCode, &it.ItemName, &it.DictCode, &it.Description, &it.SortOrder, &it.Deleted); err != nil {
			return nil, fmt.Errorf("failed to scan dict item: %w", err)
		}
		out = append(out, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate dict items: %w", err)
	}
	return out, nil
}
