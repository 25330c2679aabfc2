package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

var errStoreDown = errors.New("connection refused")

type fakeTaskRepo struct {
	mu        sync.Mutex
	tasks     map[string]domain.Task
	failIDs   map[string]error
	listErr   error
	updates   int
	beforeUpd func(id string)
}

func newFakeTaskRepo(tasks ...domain.Task) *fakeTaskRepo {
	r := &fakeTaskRepo{tasks: map[string]domain.Task{}, failIDs: map[string]error{}}
	for _, t := range tasks {
		if t.Version == 0 {
			t.Version = 1
		}
		r.tasks[t.ID] = t
	}
	return r
}

func (r *fakeTaskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tasks[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (r *fakeTaskRepo) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listErr != nil {
		return nil, r.listErr
	}
	ids := make([]string, 0, len(r.tasks))
	for id, t := range r.tasks {
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)
	if filter.Offset >= len(ids) {
		return nil, nil
	}
	ids = ids[filter.Offset:]
	if filter.Limit > 0 && len(ids) > filter.Limit {
		ids = ids[:filter.Limit]
	}
	out := make([]domain.Task, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.tasks[id].Clone())
	}
	return out, nil
}

func (r *fakeTaskRepo) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failIDs[task.ID]; err != nil {
		return nil, err
	}
	task.Version = 1
	r.tasks[task.ID] = task.Clone()
	return task, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	if r.beforeUpd != nil {
		r.beforeUpd(task.ID)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failIDs[task.ID]; err != nil {
		return err
	}
	stored, ok := r.tasks[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if stored.Version != task.Version {
		return domain.ErrVersionConflict
	}
	task.Version++
	r.tasks[task.ID] = task.Clone()
	r.updates++
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failIDs[id]; err != nil {
		return err
	}
	if _, ok := r.tasks[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

// bump simulates a concurrent user edit.
func (r *fakeTaskRepo) bump(id string, edit func(*domain.Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t := r.tasks[id]
	edit(&t)
	t.Version++
	r.tasks[id] = t
}

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]domain.ProjectMember
	err     error
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: map[string]domain.ProjectMember{}}
}

func (r *fakeMemberRepo) GetByID(ctx context.Context, id string) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.members[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (r *fakeMemberRepo) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.members {
		if m.ProjectID == projectID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r *fakeMemberRepo) List(ctx context.Context, filter repository.MemberFilter) ([]domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProjectMember
	for _, m := range r.members {
		if filter.ProjectID == "" || m.ProjectID == filter.ProjectID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) Create(ctx context.Context, member *domain.ProjectMember) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	member.Version = 1
	r.members[member.ID] = *member
	return member, nil
}

func (r *fakeMemberRepo) Update(ctx context.Context, member *domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.members[member.ID]; !ok {
		return domain.ErrMemberNotFound
	}
	member.Version++
	r.members[member.ID] = *member
	return nil
}

func (r *fakeMemberRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if _, ok := r.members[id]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(r.members, id)
	return nil
}

type fakeLocker struct {
	mu       sync.Mutex
	held     map[string]bool
	released int
}

func (l *fakeLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held == nil {
		l.held = map[string]bool{}
	}
	if l.held[key] {
		return nil, domain.ErrLockHeld
	}
	l.held[key] = true
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.held, key)
		l.released++
		return nil
	}, nil
}

type staticHealth bool

func (h staticHealth) IsOnline() bool { return bool(h) }

type toggleHealth struct{ online bool }

func (h *toggleHealth) IsOnline() bool { return h.online }

func hours(v float64) *float64 { return &v }
