package repository

import (
	"context"

	"github.com/yuanzac/submarine/internal/domain"
)

// DepartmentsRepository is the data access for sys_department.
type DepartmentsRepository interface {
	// ListDepartments returns matching rows ordered by sort_order, dept_code.
	// It returns an empty slice, not an error, when nothing matches.
	ListDepartments(ctx context.Context, filter DepartmentFilter) ([]domain.Department, error)
	GetDepartment(ctx context.Context, id string) (*domain.Department, error)
	// CreateDepartment inserts d and returns its id, generating one when d.ID is empty.
	CreateDepartment(ctx context.Context, d *domain.Department) (string, error)
	UpdateDepartment(ctx context.Context, patch *domain.DepartmentPatch) error
	// SetDeleted sets the soft-delete flag: 1 deletes, 0 restores.
	SetDeleted(ctx context.Context, id string, deleted int) error
	DeleteBatch(ctx context.Context, ids []string) error
	// RemoveDepartment deletes the row physically.
	RemoveDepartment(ctx context.Context, id string) error
	// ResetDepartmentLevels recomputes level from the parent chain.
	ResetDepartmentLevels(ctx context.Context) error
}

// DepartmentFilter narrows ListDepartments. DeptCode and DeptName are
// case-insensitive substring matches.
type DepartmentFilter struct {
	DeptCode       string
	DeptName       string
	IncludeDeleted bool
}

// Active reports whether any search criterion is set.
func (f DepartmentFilter) Active() bool {
	return f.DeptCode != "" || f.DeptName != ""
}
