package repository

import "github.com/yuanzac/submarine/internal/domain"

// SampleDepartments is the department tree the in-memory fallback starts with.
func SampleDepartments() []domain.Department {
	return []domain.Department{
		{ID: "1", DeptCode: "ORG", DeptName: "Submarine", SortOrder: 0, Description: "Root organization"},
		{ID: "2", ParentID: "1", DeptCode: "ENG", DeptName: "Engineering", Level: 1, SortOrder: 1},
		{ID: "3", ParentID: "2", DeptCode: "ENG-PLATFORM", DeptName: "Platform", Level: 2, SortOrder: 2},
		{ID: "4", ParentID: "2", DeptCode: "ENG-ML", DeptName: "Machine Learning", Level: 2, SortOrder: 3},
		{ID: "5", ParentID: "1", DeptCode: "OPS", DeptName: "Operations", Level: 1, SortOrder: 4},
	}
}

// NewMemoryDictsRepositoryWithDefaults returns a dictionary store holding the
// dictionaries referenced by sys_user.
func NewMemoryDictsRepositoryWithDefaults() *MemoryDictsRepository {
	r := NewMemoryDictsRepository()
	r.Put(domain.Dict{ID: "dict-sex", DictCode: "SYS_USER_SEX", DictName: "User sex", Type: 0},
		domain.DictItem{ID: "sex-male", DictCode: "SYS_USER_SEX", ItemCode: "SYS_USER_SEX_MALE", ItemName: "Male", SortOrder: 1},
		domain.DictItem{ID: "sex-female", DictCode: "SYS_USER_SEX", ItemCode: "SYS_USER_SEX_FEMALE", ItemName: "Female", SortOrder: 2},
	)
	r.Put(domain.Dict{ID: "dict-status", DictCode: "SYS_USER_STATUS", DictName: "User status", Type: 0},
		domain.DictItem{ID: "status-available", DictCode: "SYS_USER_STATUS", ItemCode: "SYS_USER_STATUS_AVAILABLE", ItemName: "Available", SortOrder: 1},
		domain.DictItem{ID: "status-locked", DictCode: "SYS_USER_STATUS", ItemCode: "SYS_USER_STATUS_LOCKED", ItemName: "Locked", SortOrder: 2},
		domain.DictItem{ID: "status-registered", DictCode: "SYS_USER_STATUS", ItemCode: "SYS_USER_STATUS_REGISTERED", ItemName: "New Registered", SortOrder: 3},
	)
	return r
}
