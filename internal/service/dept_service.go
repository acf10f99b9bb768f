package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/yuanzac/submarine/internal/depttree"
	"github.com/yuanzac/submarine/internal/domain"
	"github.com/yuanzac/submarine/internal/repository"

	"go.uber.org/zap"
)

// ErrInvalidParent rejects an edit that would move a department under itself.
var ErrInvalidParent = errors.New("parent department can not be the department itself or one of its descendants")

// DeptService manages the department hierarchy.
type DeptService interface {
	Tree(ctx context.Context, filter repository.DepartmentFilter) (*TreeResult, error)
	// QueryIDTree returns the flattened tree for selection widgets with the
	// subtree rooted at disableDeptCode marked disabled.
	QueryIDTree(ctx context.Context, disableDeptCode string) ([]depttree.SelectEntry, error)
	Add(ctx context.Context, d *domain.Department) (*domain.Department, error)
	Edit(ctx context.Context, patch *domain.DepartmentPatch) (*domain.Department, error)
	ResetParentDept(ctx context.Context) error
	// SetDeleted soft-deletes (1) or restores (0) one department.
	SetDeleted(ctx context.Context, id string, deleted int) error
	DeleteBatch(ctx context.Context, ids []string) error
	Remove(ctx context.Context, id string) error
	// ExportRows returns every active department in tree order.
	ExportRows(ctx context.Context) ([]ExportRow, error)
}

// TreeResult is the outcome of a tree query. When the built tree does not
// account for every row (Mismatch) callers show Flat instead of Forest.
type TreeResult struct {
	Forest    []*depttree.Node
	Flat      []domain.Department
	Total     int
	Mismatch  bool
	ShowAlert bool
}

// ExportRow is one department with its depth in the tree.
type ExportRow struct {
	domain.Department
	Depth int
}

type deptService struct {
	repo     repository.DepartmentsRepository
	notifier Notifier
	logger   *zap.Logger
}

func NewDeptService(repo repository.DepartmentsRepository, notifier Notifier, logger *zap.Logger) DeptService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &deptService{repo: repo, notifier: notifier, logger: logger}
}

func (s *deptService) Tree(ctx context.Context, filter repository.DepartmentFilter) (*TreeResult, error) {
	rows, err := s.repo.ListDepartments(ctx, filter)
	if err != nil {
		return nil, err
	}

	forest, _ := depttree.BuildTree(rows)
	res := &TreeResult{Forest: forest, Total: len(rows)}
	if size := depttree.TreeSize(forest); size != len(rows) {
		res.Flat = rows
		res.Mismatch = true
		// A filtered result is expected to break parent links.
		if !filter.Active() {
			res.ShowAlert = true
			s.logger.Warn("Department tree does not cover every row, check parent references",
				zap.Int("rows", len(rows)),
				zap.Int("tree_size", size),
			)
		}
	}
	return res, nil
}

func (s *deptService) QueryIDTree(ctx context.Context, disableDeptCode string) ([]depttree.SelectEntry, error) {
	rows, err := s.repo.ListDepartments(ctx, repository.DepartmentFilter{})
	if err != nil {
		return nil, err
	}
	_, list := depttree.BuildTree(rows)
	return depttree.MarkSubtreeDisabled(list, strings.TrimSpace(disableDeptCode)), nil
}

func (s *deptService) Add(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	if d == nil {
		return nil, &ValidationError{Fields: []string{"body is required"}}
	}
	d.DeptCode = strings.TrimSpace(d.DeptCode)
	d.DeptName = strings.TrimSpace(d.DeptName)
	if err := validateStruct(d); err != nil {
		return nil, err
	}

	if domain.IsRootParent(d.ParentID) {
		d.ParentID = ""
		d.Level = 0
	} else {
		parent, err := s.repo.GetDepartment(ctx, d.ParentID)
		switch {
		case err == nil:
			d.Level = parent.Level + 1
		case errors.Is(err, repository.ErrNotFound):
			// Kept as an orphan; the tree builder promotes it to a root.
			d.Level = 0
		default:
			return nil, err
		}
	}

	id, err := s.repo.CreateDepartment(ctx, d)
	if err != nil {
		return nil, err
	}
	saved, err := s.repo.GetDepartment(ctx, id)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, DeptActionAdd, id)
	return saved, nil
}

func (s *deptService) Edit(ctx context.Context, patch *domain.DepartmentPatch) (*domain.Department, error) {
	if patch == nil {
		return nil, &ValidationError{Fields: []string{"body is required"}}
	}
	patch.DeptCode = trimmed(patch.DeptCode)
	patch.DeptName = trimmed(patch.DeptName)
	if err := validateStruct(patch); err != nil {
		return nil, err
	}
	if _, err := s.repo.GetDepartment(ctx, patch.ID); err != nil {
		return nil, err
	}

	if patch.ParentID != nil && !domain.IsRootParent(*patch.ParentID) {
		if err := s.checkParent(ctx, patch.ID, *patch.ParentID); err != nil {
			return nil, err
		}
	}

	if err := s.repo.UpdateDepartment(ctx, patch); err != nil {
		return nil, err
	}
	saved, err := s.repo.GetDepartment(ctx, patch.ID)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, DeptActionEdit, patch.ID)
	return saved, nil
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}

// checkParent rejects parentID when it lies in the subtree of id.
func (s *deptService) checkParent(ctx context.Context, id, parentID string) error {
	if parentID == id {
		return ErrInvalidParent
	}
	rows, err := s.repo.ListDepartments(ctx, repository.DepartmentFilter{})
	if err != nil {
		return err
	}
	_, list := depttree.BuildTree(rows)
	if _, ok := depttree.SubtreeIDs(list, id)[parentID]; ok {
		return ErrInvalidParent
	}
	return nil
}

func (s *deptService) ResetParentDept(ctx context.Context) error {
	if err := s.repo.ResetDepartmentLevels(ctx); err != nil {
		return err
	}
	s.notify(ctx, DeptActionReset, "")
	return nil
}

func (s *deptService) SetDeleted(ctx context.Context, id string, deleted int) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Fields: []string{"id is required"}}
	}
	if deleted != 0 && deleted != 1 {
		return &ValidationError{Fields: []string{"deleted must be one of [0 1]"}}
	}
	if err := s.repo.SetDeleted(ctx, id, deleted); err != nil {
		return err
	}
	action := DeptActionDelete
	if deleted == 0 {
		action = DeptActionRestore
	}
	s.notify(ctx, action, id)
	return nil
}

func (s *deptService) DeleteBatch(ctx context.Context, ids []string) error {
	clean := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			clean = append(clean, id)
		}
	}
	if len(clean) == 0 {
		return &ValidationError{Fields: []string{"ids is required"}}
	}
	if err := s.repo.DeleteBatch(ctx, clean); err != nil {
		return err
	}
	for _, id := range clean {
		s.notify(ctx, DeptActionDelete, id)
	}
	return nil
}

func (s *deptService) Remove(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return &ValidationError{Fields: []string{"id is required"}}
	}
	if err := s.repo.RemoveDepartment(ctx, id); err != nil {
		return err
	}
	s.notify(ctx, DeptActionRemove, id)
	return nil
}

func (s *deptService) ExportRows(ctx context.Context) ([]ExportRow, error) {
	rows, err := s.repo.ListDepartments(ctx, repository.DepartmentFilter{})
	if err != nil {
		return nil, fmt.Errorf("export departments: %w", err)
	}
	forest, _ := depttree.BuildTree(rows)
	out := make([]ExportRow, 0, len(rows))
	depttree.Walk(forest, func(n *depttree.Node) {
		out = append(out, ExportRow{Department: n.Department, Depth: n.Depth})
	})
	return out, nil
}

func (s *deptService) notify(ctx context.Context, action, id string) {
	ev := DeptEvent{Action: action, ID: id, Time: time.Now().UTC()}
	if err := s.notifier.Notify(ctx, ev); err != nil {
		s.logger.Warn("Failed to publish dept event",
			zap.String("action", action),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}
