package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuanzac/submarine/internal/domain"
)

// MemoryDepartmentsRepository keeps departments in process memory. It backs the
// console when the database is disabled or unreachable and is used by tests.
type MemoryDepartmentsRepository struct {
	mu    sync.RWMutex
	rows  map[string]domain.Department
	order []string // insertion order, used as the final tie-break when listing
}

// NewMemoryDepartmentsRepository creates the repository seeded with rows.
func NewMemoryDepartmentsRepository(seed ...domain.Department) *MemoryDepartmentsRepository {
	r := &MemoryDepartmentsRepository{rows: map[string]domain.Department{}}
	for _, d := range seed {
		d := d
		_, _ = r.CreateDepartment(context.Background(), &d)
	}
	return r
}

var _ DepartmentsRepository = (*MemoryDepartmentsRepository)(nil)

func (r *MemoryDepartmentsRepository) ListDepartments(_ context.Context, filter DepartmentFilter) ([]domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	code := strings.ToLower(filter.DeptCode)
	name := strings.ToLower(filter.DeptName)
	out := []domain.Department{}
	for _, id := range r.order {
		d := r.rows[id]
		if !filter.IncludeDeleted && d.Deleted != 0 {
			continue
		}
		if code != "" && !strings.Contains(strings.ToLower(d.DeptCode), code) {
			continue
		}
		if name != "" && !strings.Contains(strings.ToLower(d.DeptName), name) {
			continue
		}
		out = append(out, d)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].SortOrder != out[j].SortOrder {
			return out[i].SortOrder < out[j].SortOrder
		}
		return out[i].DeptCode < out[j].DeptCode
	})
	return out, nil
}

func (r *MemoryDepartmentsRepository) GetDepartment(_ context.Context, id string) (*domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.rows[id]
	if !ok {
		return nil, fmt.Errorf("get department: %w", ErrNotFound)
	}
	return &d, nil
}

func (r *MemoryDepartmentsRepository) CreateDepartment(_ context.Context, d *domain.Department) (string, error) {
	if d == nil {
		return "", fmt.Errorf("department is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if d.ID == "" {
		d.ID = newID()
	}
	if _, ok := r.rows[d.ID]; ok {
		return "", fmt.Errorf("create department: %w", ErrConflict)
	}
	for _, existing := range r.rows {
		if existing.DeptCode == d.DeptCode {
			return "", fmt.Errorf("create department: %w", ErrConflict)
		}
	}
	t := now()
	d.CreateTime = &t
	r.rows[d.ID] = *d
	r.order = append(r.order, d.ID)
	return d.ID, nil
}

func (r *MemoryDepartmentsRepository) UpdateDepartment(_ context.Context, patch *domain.DepartmentPatch) error {
	if patch == nil || patch.ID == "" {
		return fmt.Errorf("department id is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	d, ok := r.rows[patch.ID]
	if !ok {
		return fmt.Errorf("update department: %w", ErrNotFound)
	}
	if patch.DeptCode != nil && *patch.DeptCode != d.DeptCode {
		for id, existing := range r.rows {
			if id != d.ID && existing.DeptCode == *patch.DeptCode {
				return fmt.Errorf("update department: %w", ErrConflict)
			}
		}
		d.DeptCode = *patch.DeptCode
	}
	if patch.ParentID != nil {
		d.ParentID = *patch.ParentID
	}
	if patch.DeptName != nil {
		d.DeptName = *patch.DeptName
	}
	if patch.SortOrder != nil {
		d.SortOrder = *patch.SortOrder
	}
	if patch.Description != nil {
		d.Description = *patch.Description
	}
	if patch.Deleted != nil {
		d.Deleted = *patch.Deleted
	}
	if patch.UpdateBy != "" {
		d.UpdateBy = patch.UpdateBy
	}
	t := now()
	d.UpdateTime = &t
	r.rows[d.ID] = d
	return nil
}

func (r *MemoryDepartmentsRepository) SetDeleted(ctx context.Context, id string, deleted int) error {
	return r.UpdateDepartment(ctx, &domain.DepartmentPatch{ID: id, Deleted: &deleted})
}

func (r *MemoryDepartmentsRepository) DeleteBatch(_ context.Context, ids []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := now()
	for _, id := range ids {
		if d, ok := r.rows[id]; ok {
			d.Deleted = 1
			d.UpdateTime = &t
			r.rows[id] = d
		}
	}
	return nil
}

func (r *MemoryDepartmentsRepository) RemoveDepartment(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rows[id]; !ok {
		return fmt.Errorf("remove department: %w", ErrNotFound)
	}
	delete(r.rows, id)
	for i, v := range r.order {
		if v == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ResetDepartmentLevels mirrors the SQL version: levels are recomputed for
// rows reachable from a top-level or orphaned row.
func (r *MemoryDepartmentsRepository) ResetDepartmentLevels(_ context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	children := map[string][]string{}
	var roots []string
	for _, id := range r.order {
		d := r.rows[id]
		if d.Deleted != 0 {
			continue
		}
		parent, ok := r.rows[d.ParentID]
		if domain.IsRootParent(d.ParentID) || !ok || parent.Deleted != 0 {
			roots = append(roots, id)
			continue
		}
		children[d.ParentID] = append(children[d.ParentID], id)
	}

	levels := map[string]int{}
	queue := roots
	for _, id := range roots {
		levels[id] = 0
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, c := range children[id] {
			if _, done := levels[c]; done {
				continue
			}
			levels[c] = levels[id] + 1
			queue = append(queue, c)
		}
	}
	for id, lvl := range levels {
		d := r.rows[id]
		d.Level = lvl
		r.rows[id] = d
	}
	return nil
}
