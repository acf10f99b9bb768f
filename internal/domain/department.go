package domain

import "time"

// Department is one row of sys_department.
// ParentID uses "" (or "0") for top-level departments.
type Department struct {
	ID          string     `db:"id" json:"id"`
	ParentID    string     `db:"parent_id" json:"parentId"`
	DeptCode    string     `db:"dept_code" json:"deptCode" validate:"required,max=32"`
	DeptName    string     `db:"dept_name" json:"deptName" validate:"required,max=64"`
	Level       int        `db:"level" json:"level"`
	SortOrder   int        `db:"sort_order" json:"sortOrder"`
	Description string     `db:"description" json:"description,omitempty" validate:"max=255"`
	Deleted     int        `db:"deleted" json:"deleted"`
	CreateBy    string     `db:"create_by" json:"createBy,omitempty"`
	CreateTime  *time.Time `db:"create_time" json:"createTime,omitempty"`
	UpdateBy    string     `db:"update_by" json:"updateBy,omitempty"`
	UpdateTime  *time.Time `db:"update_time" json:"updateTime,omitempty"`
}

// IsRootParent reports whether parentID is the top-level sentinel.
func IsRootParent(parentID string) bool {
	return parentID == "" || parentID == "0"
}

// DepartmentPatch carries a partial update. Nil fields are left unchanged;
// a present code or name must not be blank.
type DepartmentPatch struct {
	ID          string  `json:"id" validate:"required"`
	ParentID    *string `json:"parentId"`
	DeptCode    *string `json:"deptCode" validate:"omitempty,min=1,max=32"`
	DeptName    *string `json:"deptName" validate:"omitempty,min=1,max=64"`
	SortOrder   *int    `json:"sortOrder"`
	Description *string `json:"description" validate:"omitempty,max=255"`
	Deleted     *int    `json:"deleted" validate:"omitempty,oneof=0 1"`
	UpdateBy    string  `json:"-"`
}
