package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yuanzac/submarine/internal/domain"
)

// PostgresDepartmentsRepository implements DepartmentsRepository on sys_department.
type PostgresDepartmentsRepository struct {
	db *sql.DB
}

// NewPostgresDepartmentsRepository creates the repository.
func NewPostgresDepartmentsRepository(db *sql.DB) *PostgresDepartmentsRepository {
	return &PostgresDepartmentsRepository{db: db}
}

var _ DepartmentsRepository = (*PostgresDepartmentsRepository)(nil)

const departmentColumns = `
	id,
	COALESCE(parent_id, ''),
	dept_code,
	dept_name,
	COALESCE(level, 0),
	COALESCE(sort_order, 0),
	COALESCE(description, ''),
	deleted,
	COALESCE(create_by, ''),
	create_time,
	COALESCE(update_by, ''),
	update_time`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDepartment(row rowScanner) (domain.Department, error) {
	var d domain.Department
	var createTime, updateTime sql.NullTime
	err := row.Scan(
		&d.ID,
		&d.ParentID,
		&d.DeptCode,
		&d.DeptName,
		&d.Level,
		&d.SortOrder,
		&d.Description,
		&d.Deleted,
		&d.CreateBy,
		&createTime,
		&d.UpdateBy,
		&updateTime,
	)
	if err != nil {
		return d, err
	}
	if createTime.Valid {
		t := createTime.Time
		d.CreateTime = &t
	}
	if updateTime.Valid {
		t := updateTime.Time
		d.UpdateTime = &t
	}
	return d, nil
}

// ListDepartments queries sys_department with optional ILIKE filters.
func (r *PostgresDepartmentsRepository) ListDepartments(ctx context.Context, filter DepartmentFilter) ([]domain.Department, error) {
	where := []string{}
	args := []any{}
	argIdx := 1

	if !filter.IncludeDeleted {
		where = append(where, "deleted = 0")
	}
	if filter.DeptCode != "" {
		where = append(where, fmt.Sprintf("dept_code ILIKE $%d"+likeEscape, argIdx))
		args = append(args, likePattern(filter.DeptCode))
		argIdx++
	}
	if filter.DeptName != "" {
		where = append(where, fmt.Sprintf("dept_name ILIKE $%d"+likeEscape, argIdx))
		args = append(args, likePattern(filter.DeptName))
		argIdx++
	}

	query := `SELECT ` + departmentColumns + ` FROM sys_department`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY sort_order, dept_code`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	out := []domain.Department{}
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate departments: %w", err)
	}
	return out, nil
}

// GetDepartment loads one department regardless of its deleted flag.
func (r *PostgresDepartmentsRepository) GetDepartment(ctx context.Context, id string) (*domain.Department, error) {
	if id == "" {
		return nil, fmt.Errorf("get department: %w", ErrNotFound)
	}
	row := r.db.QueryRowContext(ctx, `SELECT `+departmentColumns+` FROM sys_department WHERE id = $1`, id)
	d, err := scanDepartment(row)
	if err != nil {
		return nil, mapError("get department", err)
	}
	return &d, nil
}

// CreateDepartment inserts a new department.
func (r *PostgresDepartmentsRepository) CreateDepartment(ctx context.Context, d *domain.Department) (string, error) {
	if d == nil {
		return "", fmt.Errorf("department is required")
	}
	if d.ID == "" {
		d.ID = newID()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sys_department (
			id, parent_id, dept_code, dept_name, level, sort_order,
			description, deleted, create_by, create_time
		) VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, NULLIF($7, ''), $8, NULLIF($9, ''), NOW())`,
		d.ID, d.ParentID, d.DeptCode, d.DeptName, d.Level, d.SortOrder,
		d.Description, d.Deleted, d.CreateBy,
	)
	if err != nil {
		return "", mapError("create department", err)
	}
	return d.ID, nil
}

// UpdateDepartment applies the non-nil fields of patch.
func (r *PostgresDepartmentsRepository) UpdateDepartment(ctx context.Context, patch *domain.DepartmentPatch) error {
	if patch == nil || patch.ID == "" {
		return fmt.Errorf("department id is required")
	}

	set := []string{}
	args := []any{}
	argIdx := 1
	add := func(column string, value any) {
		set = append(set, fmt.Sprintf("%s = $%d", column, argIdx))
		args = append(args, value)
		argIdx++
	}

	if patch.ParentID != nil {
		set = append(set, fmt.Sprintf("parent_id = NULLIF($%d, '')", argIdx))
		args = append(args, *patch.ParentID)
		argIdx++
	}
	if patch.DeptCode != nil {
		add("dept_code", *patch.DeptCode)
	}
	if patch.DeptName != nil {
		add("dept_name", *patch.DeptName)
	}
	if patch.SortOrder != nil {
		add("sort_order", *patch.SortOrder)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Deleted != nil {
		add("deleted", *patch.Deleted)
	}
	if patch.UpdateBy != "" {
		add("update_by", patch.UpdateBy)
	}
	set = append(set, "update_time = NOW()")

	query := fmt.Sprintf(`UPDATE sys_department SET %s WHERE id = $%d`, strings.Join(set, ", "), argIdx)
	args = append(args, patch.ID)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return mapError("update department", err)
	}
	return expectAffected(res, "update department")
}

// SetDeleted flips the soft-delete flag of one department.
func (r *PostgresDepartmentsRepository) SetDeleted(ctx context.Context, id string, deleted int) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sys_department SET deleted = $1, update_time = NOW() WHERE id = $2`,
		deleted, id,
	)
	if err != nil {
		return mapError("set department deleted", err)
	}
	return expectAffected(res, "set department deleted")
}

// DeleteBatch soft-deletes every listed department.
func (r *PostgresDepartmentsRepository) DeleteBatch(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE sys_department SET deleted = 1, update_time = NOW() WHERE id = ANY($1)`,
		pq.Array(ids),
	)
	if err != nil {
		return mapError("delete departments", err)
	}
	return nil
}

// RemoveDepartment physically deletes one department.
func (r *PostgresDepartmentsRepository) RemoveDepartment(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sys_department WHERE id = $1`, id)
	if err != nil {
		return mapError("remove department", err)
	}
	return expectAffected(res, "remove department")
}

// ResetDepartmentLevels walks the parent chain in SQL and stores each row's
// depth in level (0 for top-level rows). Rows on a parent cycle keep their level.
func (r *PostgresDepartmentsRepository) ResetDepartmentLevels(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `
		WITH RECURSIVE chain AS (
			SELECT id, 0 AS lvl, ARRAY[id]::varchar[] AS path
			FROM sys_department
			WHERE deleted = 0
			  AND (parent_id IS NULL OR parent_id IN ('', '0')
			       OR parent_id NOT IN (SELECT id FROM sys_department WHERE deleted = 0))
			UNION ALL
			SELECT d.id, c.lvl + 1, c.path || d.id
			FROM sys_department d
			JOIN chain c ON d.parent_id = c.id
			WHERE d.deleted = 0 AND NOT d.id = ANY(c.path)
		)
		UPDATE sys_department s
		SET level = m.lvl, update_time = NOW()
		FROM (SELECT id, MIN(lvl) AS lvl FROM chain GROUP BY id) m
		WHERE s.id = m.id`)
	if err != nil {
		return mapError("reset department levels", err)
	}
	return nil
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}

// newID returns a 32 character id, the width of the varchar(32) key columns.
func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// now is replaced in tests.
var now = time.Now
