package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/yuanzac/submarine/internal/domain"
)

// PostgresUsersRepository implements UsersRepository.
type PostgresUsersRepository struct {
	db *sql.DB
}

func NewPostgresUsersRepository(db *sql.DB) *PostgresUsersRepository {
	return &PostgresUsersRepository{db: db}
}

var _ UsersRepository = (*PostgresUsersRepository)(nil)

const userColumns = `
	id,
	user_name,
	COALESCE(real_name, ''),
	COALESCE(password, ''),
	COALESCE(avatar, ''),
	COALESCE(sex, ''),
	COALESCE(status, ''),
	COALESCE(email, ''),
	COALESCE(phone, ''),
	COALESCE(dept_code, ''),
	COALESCE(role_code, ''),
	deleted,
	create_time`

func scanUser(row rowScanner) (domain.SysUser, error) {
	var u domain.SysUser
	var createTime sql.NullTime
	err := row.Scan(
		&u.ID,
		&u.UserName,
		&u.RealName,
		&u.PasswordHash,
		&u.Avatar,
		&u.Sex,
		&u.Status,
		&u.Email,
		&u.Phone,
		&u.DeptCode,
		&u.RoleCode,
		&u.Deleted,
		&createTime,
	)
	if createTime.Valid {
		t := createTime.Time
		u.CreateTime = &t
	}
	return u, err
}

func (r *PostgresUsersRepository) GetUserByName(ctx context.Context, userName string) (*domain.SysUser, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM sys_user WHERE user_name = $1 AND deleted = 0`, userName)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError("get user", err)
	}
	return &u, nil
}

func (r *PostgresUsersRepository) ListUsers(ctx context.Context, filter UserFilter, page, size int) ([]domain.SysUser, int, error) {
	where := []string{"deleted = 0"}
	args := []any{}
	argIdx := 1
	if filter.Search != "" {
		where = append(where, fmt.Sprintf("(user_name ILIKE $%d"+likeEscape+" OR real_name ILIKE $%d"+likeEscape+")", argIdx, argIdx))
		args = append(args, likePattern(filter.Search))
		argIdx++
	}
	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sys_user WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	orderBy, ok := userSortColumns[filter.SortColumn]
	if !ok {
		orderBy = "user_name"
	}
	if filter.Desc {
		orderBy += " DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM sys_user WHERE %s ORDER BY %s LIMIT $%d OFFSET $%d`,
		userColumns, whereClause, orderBy, argIdx, argIdx+1)
	args = append(args, size, (page-1)*size)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	out := []domain.SysUser{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate users: %w", err)
	}
	return out, total, nil
}

func (r *PostgresUsersRepository) CreateUser(ctx context.Context, u *domain.SysUser) (string, error) {
	if u.ID == "" {
		u.ID = newID()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sys_user (
			id, user_name, real_name, password, avatar, sex, status,
			email, phone, dept_code, role_code, deleted, create_time
		) VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), NULLIF($7, ''),
			NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), NULLIF($11, ''), 0, NOW())
		ON CONFLICT (user_name) DO UPDATE SET
			password = EXCLUDED.password,
			real_name = EXCLUDED.real_name,
			role_code = EXCLUDED.role_code,
			deleted = 0`,
		u.ID, u.UserName, u.RealName, u.PasswordHash, u.Avatar, u.Sex, u.Status,
		u.Email, u.Phone, u.DeptCode, u.RoleCode,
	)
	if err != nil {
		return "", mapError("create user", err)
	}
	return u.ID, nil
}
