package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/yuanzac/submarine/internal/domain"
)

// MemoryUsersRepository is the in-memory UsersRepository used without a database.
type MemoryUsersRepository struct {
	mu     sync.RWMutex
	byName map[string]domain.SysUser
}

func NewMemoryUsersRepository() *MemoryUsersRepository {
	return &MemoryUsersRepository{byName: map[string]domain.SysUser{}}
}

var _ UsersRepository = (*MemoryUsersRepository)(nil)

func (r *MemoryUsersRepository) GetUserByName(_ context.Context, userName string) (*domain.SysUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byName[userName]
	if !ok || u.Deleted != 0 {
		return nil, fmt.Errorf("get user: %w", ErrNotFound)
	}
	return &u, nil
}

func (r *MemoryUsersRepository) ListUsers(_ context.Context, filter UserFilter, page, size int) ([]domain.SysUser, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	out := []domain.SysUser{}
	for _, u := range r.byName {
		if u.Deleted != 0 {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(u.UserName), search) &&
			!strings.Contains(strings.ToLower(u.RealName), search) {
			continue
		}
		out = append(out, u)
	}

	less := func(a, b domain.SysUser) bool { return a.UserName < b.UserName }
	switch filter.SortColumn {
	case "realName":
		less = func(a, b domain.SysUser) bool { return a.RealName < b.RealName }
	case "createTime":
		less = func(a, b domain.SysUser) bool {
			if a.CreateTime == nil || b.CreateTime == nil {
				return b.CreateTime != nil
			}
			return a.CreateTime.Before(*b.CreateTime)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if filter.Desc {
			return less(out[j], out[i])
		}
		return less(out[i], out[j])
	})

	return paginate(out, page, size), len(out), nil
}

func (r *MemoryUsersRepository) CreateUser(_ context.Context, u *domain.SysUser) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreateTime == nil {
		t := now()
		u.CreateTime = &t
	}
	r.byName[u.UserName] = *u
	return u.ID, nil
}
