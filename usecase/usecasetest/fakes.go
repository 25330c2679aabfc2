// Package usecasetest provides in-memory repositories for use case tests.
package usecasetest

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/fastygo/tasktrack/domain"
	"github.com/fastygo/tasktrack/repository"
)

// Tasks is an in-memory TaskRepository with version-checked updates.
type Tasks struct {
	mu    sync.Mutex
	rows  map[string]domain.Task
	order []string
	// Err, when set, is returned by every write.
	Err error
}

func NewTasks(tasks ...domain.Task) *Tasks {
	r := &Tasks{rows: map[string]domain.Task{}}
	for _, t := range tasks {
		if t.Version == 0 {
			t.Version = 1
		}
		r.rows[t.ID] = t
		r.order = append(r.order, t.ID)
	}
	return r
}

func (r *Tasks) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrTaskNotFound
	}
	c := t.Clone()
	return &c, nil
}

func (r *Tasks) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Task
	for _, id := range r.order {
		t, ok := r.rows[id]
		if !ok {
			continue
		}
		if filter.ProjectID != "" && t.ProjectID != filter.ProjectID {
			continue
		}
		if filter.AssigneeID != "" && t.AssigneeID != filter.AssigneeID {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		if filter.Name != "" && !strings.EqualFold(t.Name, strings.TrimSpace(filter.Name)) {
			continue
		}
		out = append(out, t.Clone())
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	out = out[filter.Offset:]
	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *Tasks) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}
	task.Version = 1
	r.rows[task.ID] = task.Clone()
	r.order = append(r.order, task.ID)
	return task, nil
}

func (r *Tasks) Update(ctx context.Context, task *domain.Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.rows[task.ID]
	if !ok {
		return domain.ErrTaskNotFound
	}
	if stored.Version != task.Version {
		return domain.ErrVersionConflict
	}
	task.Version++
	r.rows[task.ID] = task.Clone()
	return nil
}

func (r *Tasks) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return domain.ErrTaskNotFound
	}
	delete(r.rows, id)
	return nil
}

// Members is an in-memory MemberRepository with version-checked updates.
type Members struct {
	mu   sync.Mutex
	rows map[string]domain.ProjectMember
	Err  error
}

func NewMembers(members ...domain.ProjectMember) *Members {
	r := &Members{rows: map[string]domain.ProjectMember{}}
	for _, m := range members {
		if m.Version == 0 {
			m.Version = 1
		}
		r.rows[m.ID] = m
	}
	return r
}

func (r *Members) GetByID(ctx context.Context, id string) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrMemberNotFound
	}
	return &m, nil
}

func (r *Members) GetByProjectAndUser(ctx context.Context, projectID, userID string) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.rows {
		if m.ProjectID == projectID && m.UserID == userID {
			return &m, nil
		}
	}
	return nil, domain.ErrMemberNotFound
}

func (r *Members) List(ctx context.Context, filter repository.MemberFilter) ([]domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.ProjectMember
	for _, m := range r.rows {
		if filter.ProjectID != "" && m.ProjectID != filter.ProjectID {
			continue
		}
		if filter.UserID != "" && m.UserID != filter.UserID {
			continue
		}
		if filter.Role != "" && m.Role != filter.Role {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Members) Create(ctx context.Context, member *domain.ProjectMember) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if member.ID == "" {
		member.ID = uuid.NewString()
	}
	member.Version = 1
	r.rows[member.ID] = *member
	return member, nil
}

func (r *Members) Update(ctx context.Context, member *domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	stored, ok := r.rows[member.ID]
	if !ok {
		return domain.ErrMemberNotFound
	}
	if stored.Version != member.Version {
		return domain.ErrVersionConflict
	}
	member.Version++
	r.rows[member.ID] = *member
	return nil
}

func (r *Members) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if _, ok := r.rows[id]; !ok {
		return domain.ErrMemberNotFound
	}
	delete(r.rows, id)
	return nil
}

// Users is a read-only UserRepository.
type Users map[string]domain.User

func (u Users) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := u[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return &user, nil
}

func (u Users) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range u {
		if email != "" && strings.EqualFold(user.Email, strings.TrimSpace(email)) {
			return &user, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

// Projects stores projects and forwards their memberships to Members.
type Projects struct {
	mu      sync.Mutex
	rows    map[string]domain.Project
	members *Members
	Err     error
}

func NewProjects(members *Members) *Projects {
	return &Projects{rows: map[string]domain.Project{}, members: members}
}

func (r *Projects) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrProjectNotFound
	}
	return &p, nil
}

func (r *Projects) CreateWithMembers(ctx context.Context, project *domain.Project, members []domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	r.rows[project.ID] = *project
	for i := range members {
		members[i].ProjectID = project.ID
		if _, err := r.members.Create(ctx, &members[i]); err != nil {
			return err
		}
	}
	return nil
}

// Activities records appended entries.
type Activities struct {
	mu      sync.Mutex
	Entries []domain.Activity
}

func (a *Activities) Append(ctx context.Context, activity domain.Activity) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.Entries = append(a.Entries, activity)
	return nil
}

func (a *Activities) List(ctx context.Context, filter repository.ActivityFilter) ([]domain.Activity, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	var out []domain.Activity
	for _, e := range a.Entries {
		if filter.ProjectID != "" && e.ProjectID != filter.ProjectID {
			continue
		}
		if filter.EntityID != "" && e.EntityID != filter.EntityID {
			continue
		}
		out = append(out, e)
	}
	return out, nil
}

// Actions returns the recorded action names in order.
func (a *Activities) Actions() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]string, 0, len(a.Entries))
	for _, e := range a.Entries {
		out = append(out, e.Action)
	}
	return out
}

// Buffer captures deferred writes and the activities riding along with them.
type Buffer struct {
	mu         sync.Mutex
	Tasks      []domain.Task
	Members    []domain.ProjectMember
	Ops        []string
	Activities []domain.Activity
}

func (b *Buffer) BufferTask(ctx context.Context, operation string, task *domain.Task, activity domain.Activity) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Tasks = append(b.Tasks, task.Clone())
	b.Ops = append(b.Ops, operation)
	b.Activities = append(b.Activities, activity)
	return nil
}

func (b *Buffer) BufferMember(ctx context.Context, operation string, member *domain.ProjectMember, activity domain.Activity) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Members = append(b.Members, *member)
	b.Ops = append(b.Ops, operation)
	b.Activities = append(b.Activities, activity)
	return nil
}

// Recorder counts outcomes per operation.
type Recorder struct {
	mu      sync.Mutex
	Accepts map[string]int
	Rejects map[string]int
	Buffers map[string]int
}

func NewRecorder() *Recorder {
	return &Recorder{Accepts: map[string]int{}, Rejects: map[string]int{}, Buffers: map[string]int{}}
}

func (r *Recorder) Buffered(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Buffers[operation]++
}

func (r *Recorder) Accepted(operation string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Accepts[operation]++
}

func (r *Recorder) Rejected(operation, code string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Rejects[operation+"/"+code]++
}

// Invitations is an in-memory InvitationRepository. Accept writes the new
// member into Members.
type Invitations struct {
	mu      sync.Mutex
	rows    map[string]domain.Invitation
	members *Members
	Err     error
}

func NewInvitations(members *Members, invitations ...domain.Invitation) *Invitations {
	r := &Invitations{rows: map[string]domain.Invitation{}, members: members}
	for _, inv := range invitations {
		r.rows[inv.ID] = inv
	}
	return r
}

func (r *Invitations) GetByID(ctx context.Context, id string) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.rows[id]
	if !ok {
		return nil, domain.ErrInvitationNotFound
	}
	return &inv, nil
}

func (r *Invitations) List(ctx context.Context, filter repository.InvitationFilter) ([]domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Invitation
	for _, inv := range r.rows {
		if filter.ProjectID != "" && inv.ProjectID != filter.ProjectID {
			continue
		}
		if filter.InviteeID != "" && inv.InviteeID != filter.InviteeID {
			continue
		}
		if filter.Status != "" && inv.Status != filter.Status {
			continue
		}
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *Invitations) Create(ctx context.Context, invitation *domain.Invitation) (*domain.Invitation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}
	if invitation.ID == "" {
		invitation.ID = uuid.NewString()
	}
	invitation.Status = domain.InvitationPending
	r.rows[invitation.ID] = *invitation
	return invitation, nil
}

func (r *Invitations) Accept(ctx context.Context, invitation *domain.Invitation, member *domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := r.close(invitation); err != nil {
		return err
	}
	if _, err := r.members.Create(ctx, member); err != nil {
		return err
	}
	r.rows[invitation.ID] = *invitation
	return nil
}

func (r *Invitations) Reject(ctx context.Context, invitation *domain.Invitation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}
	if err := r.close(invitation); err != nil {
		return err
	}
	r.rows[invitation.ID] = *invitation
	return nil
}

func (r *Invitations) close(invitation *domain.Invitation) error {
	stored, ok := r.rows[invitation.ID]
	if !ok || !stored.Pending() {
		return domain.ErrInvitationAnswered
	}
	return nil
}
