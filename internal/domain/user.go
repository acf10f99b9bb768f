package domain

import "time"

// SysUser is one row of sys_user.
// Sex and Status hold dictionary item codes (SYS_USER_SEX, SYS_USER_STATUS).
type SysUser struct {
	ID           string     `db:"id" json:"id"`
	UserName     string     `db:"user_name" json:"userName"`
	RealName     string     `db:"real_name" json:"realName"`
	PasswordHash string     `db:"password" json:"-"`
	Avatar       string     `db:"avatar" json:"avatar,omitempty"`
	Sex          string     `db:"sex" json:"sex,omitempty" dict:"SYS_USER_SEX"`
	Status       string     `db:"status" json:"status,omitempty" dict:"SYS_USER_STATUS"`
	Email        string     `db:"email" json:"email,omitempty"`
	Phone        string     `db:"phone" json:"phone,omitempty"`
	DeptCode     string     `db:"dept_code" json:"deptCode,omitempty"`
	RoleCode     string     `db:"role_code" json:"roleCode,omitempty"`
	Deleted      int        `db:"deleted" json:"deleted"`
	CreateTime   *time.Time `db:"create_time" json:"createTime,omitempty"`
}
