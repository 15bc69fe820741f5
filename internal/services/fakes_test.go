package services

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/admin-portal/backend/internal/events"
	"github.com/admin-portal/backend/internal/models"
	"go.uber.org/zap"
)

// In-memory stores backing the service tests. They mirror the pgx
// repositories' error contract (ErrEntityNotFound, ErrRequestNotFound,
// ErrReferencedEntityNotFound, the pending-only MarkResolved guard) and the
// transactional contract: fakeTx snapshots the whole state before fn and
// restores it when fn errors, so a failed resolution observably leaves
// everything untouched.

type memState struct {
	users    map[int]models.User
	roles    map[int]models.Role
	perms    map[int]models.Permission
	requests map[int]models.ChangeRequest

	nextUserID    int
	nextRoleID    int
	nextRequestID int
}

func newMemState() *memState {
	return &memState{
		users:         map[int]models.User{},
		roles:         map[int]models.Role{},
		perms:         map[int]models.Permission{},
		requests:      map[int]models.ChangeRequest{},
		nextUserID:    1,
		nextRoleID:    1,
		nextRequestID: 1,
	}
}

func (st *memState) clone() *memState {
	c := &memState{
		users:         make(map[int]models.User, len(st.users)),
		roles:         make(map[int]models.Role, len(st.roles)),
		perms:         make(map[int]models.Permission, len(st.perms)),
		requests:      make(map[int]models.ChangeRequest, len(st.requests)),
		nextUserID:    st.nextUserID,
		nextRoleID:    st.nextRoleID,
		nextRequestID: st.nextRequestID,
	}
	for k, v := range st.users {
		c.users[k] = v
	}
	for k, v := range st.roles {
		c.roles[k] = v
	}
	for k, v := range st.perms {
		c.perms[k] = v
	}
	for k, v := range st.requests {
		c.requests[k] = v
	}
	return c
}

type fakeTx struct {
	st *memState
}

func (f *fakeTx) InTx(ctx context.Context, fn func(ctx context.Context) error) error {
	snapshot := f.st.clone()
	if err := fn(ctx); err != nil {
		*f.st = *snapshot
		return err
	}
	return nil
}

type fakeUserStore struct {
	st *memState
}

func (f *fakeUserStore) GetByID(_ context.Context, id int) (*models.User, error) {
	u, ok := f.st.users[id]
	if !ok {
		return nil, models.ErrEntityNotFound
	}
	return &u, nil
}

func (f *fakeUserStore) GetForUpdate(ctx context.Context, id int) (*models.User, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeUserStore) Create(_ context.Context, u *models.User) error {
	u.ID = f.st.nextUserID
	f.st.nextUserID++
	u.CreatedAt = time.Now()
	f.st.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) Update(_ context.Context, u *models.User) error {
	if _, ok := f.st.users[u.ID]; !ok {
		return models.ErrEntityNotFound
	}
	f.st.users[u.ID] = *u
	return nil
}

func (f *fakeUserStore) Delete(_ context.Context, id int) error {
	if _, ok := f.st.users[id]; !ok {
		return models.ErrEntityNotFound
	}
	delete(f.st.users, id)
	return nil
}

func (f *fakeUserStore) SetLocked(_ context.Context, id int, locked bool) error {
	u, ok := f.st.users[id]
	if !ok {
		return models.ErrEntityNotFound
	}
	u.Locked = locked
	f.st.users[id] = u
	return nil
}

func (f *fakeUserStore) SetActiveStatus(_ context.Context, id int, status string) error {
	u, ok := f.st.users[id]
	if !ok {
		return models.ErrEntityNotFound
	}
	u.ActiveStatus = status
	f.st.users[id] = u
	return nil
}

func (f *fakeUserStore) Search(_ context.Context, term string, limit, offset int) ([]models.UserWithRole, error) {
	var out []models.UserWithRole
	for _, u := range f.st.users {
		role := f.st.roles[u.RoleID]
		if term != "" &&
			!strings.Contains(strings.ToLower(u.Username), strings.ToLower(term)) &&
			!strings.Contains(strings.ToLower(role.Name), strings.ToLower(term)) {
			continue
		}
		out = append(out, models.UserWithRole{User: u, RoleName: role.Name})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeRoleStore struct {
	st *memState
}

func (f *fakeRoleStore) GetByID(_ context.Context, id int) (*models.Role, error) {
	r, ok := f.st.roles[id]
	if !ok {
		return nil, models.ErrEntityNotFound
	}
	return &r, nil
}

func (f *fakeRoleStore) GetForUpdate(ctx context.Context, id int) (*models.Role, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRoleStore) Create(_ context.Context, r *models.Role) error {
	r.ID = f.st.nextRoleID
	f.st.nextRoleID++
	r.CreatedAt = time.Now()
	f.st.roles[r.ID] = *r
	return nil
}

func (f *fakeRoleStore) Update(_ context.Context, r *models.Role) error {
	if _, ok := f.st.roles[r.ID]; !ok {
		return models.ErrEntityNotFound
	}
	f.st.roles[r.ID] = *r
	return nil
}

func (f *fakeRoleStore) Delete(_ context.Context, id int) error {
	if _, ok := f.st.roles[id]; !ok {
		return models.ErrEntityNotFound
	}
	delete(f.st.roles, id)
	return nil
}

func (f *fakeRoleStore) SetLocked(_ context.Context, id int, locked bool) error {
	r, ok := f.st.roles[id]
	if !ok {
		return models.ErrEntityNotFound
	}
	r.Locked = locked
	f.st.roles[id] = r
	return nil
}

func (f *fakeRoleStore) SetActiveStatus(_ context.Context, id int, status string) error {
	r, ok := f.st.roles[id]
	if !ok {
		return models.ErrEntityNotFound
	}
	r.ActiveStatus = status
	f.st.roles[id] = r
	return nil
}

func (f *fakeRoleStore) List(_ context.Context, limit, offset int) ([]models.Role, error) {
	var out []models.Role
	for _, r := range f.st.roles {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakePermStore struct {
	st *memState
}

func (f *fakePermStore) List(_ context.Context) ([]models.Permission, error) {
	var out []models.Permission
	for _, p := range f.st.perms {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakePermStore) GetByIDs(_ context.Context, ids []int) ([]models.Permission, error) {
	out := make([]models.Permission, 0, len(ids))
	for _, id := range ids {
		p, ok := f.st.perms[id]
		if !ok {
			return nil, models.ErrReferencedEntityNotFound
		}
		out = append(out, p)
	}
	return out, nil
}

type fakeRequestStore struct {
	st *memState
}

func (f *fakeRequestStore) Create(_ context.Context, cr *models.ChangeRequest) error {
	cr.ID = f.st.nextRequestID
	f.st.nextRequestID++
	cr.CreatedAt = time.Now()
	f.st.requests[cr.ID] = *cr
	return nil
}

func (f *fakeRequestStore) GetByID(_ context.Context, id int) (*models.ChangeRequest, error) {
	cr, ok := f.st.requests[id]
	if !ok {
		return nil, models.ErrRequestNotFound
	}
	return &cr, nil
}

func (f *fakeRequestStore) GetForUpdate(ctx context.Context, id int) (*models.ChangeRequest, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeRequestStore) MarkResolved(_ context.Context, id int, status string, reviewedBy int, reviewedAt time.Time) error {
	cr, ok := f.st.requests[id]
	if !ok || cr.Status != models.StatusPending {
		return models.ErrNotPending
	}
	cr.Status = status
	cr.ReviewedBy = &reviewedBy
	cr.ReviewedAt = &reviewedAt
	f.st.requests[id] = cr
	return nil
}

func (f *fakeRequestStore) ListByStatus(_ context.Context, status string, limit, offset int) ([]models.ChangeRequest, error) {
	var out []models.ChangeRequest
	for _, cr := range f.st.requests {
		if status != "" && cr.Status != status {
			continue
		}
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

type fakeAuditStore struct {
	entries []models.AuditLog
}

func (f *fakeAuditStore) Log(_ context.Context, entry models.AuditLog) error {
	f.entries = append(f.entries, entry)
	return nil
}

type fakePublisher struct {
	published []events.Event
}

func (f *fakePublisher) Publish(_ context.Context, _ string, event events.Event) error {
	f.published = append(f.published, event)
	return nil
}

// env wires the three services over one shared in-memory state.
type env struct {
	st       *memState
	users    *fakeUserStore
	roles    *fakeRoleStore
	perms    *fakePermStore
	requests *fakeRequestStore
	audit    *fakeAuditStore
	pub      *fakePublisher

	userSvc     *UserService
	roleSvc     *RoleService
	approvalSvc *ApprovalService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := newMemState()
	e := &env{
		st:       st,
		users:    &fakeUserStore{st: st},
		roles:    &fakeRoleStore{st: st},
		perms:    &fakePermStore{st: st},
		requests: &fakeRequestStore{st: st},
		audit:    &fakeAuditStore{},
		pub:      &fakePublisher{},
	}
	tx := &fakeTx{st: st}
	log := zap.NewNop()
	e.userSvc = NewUserService(e.users, e.roles, e.requests, e.audit, tx, e.pub, log)
	e.roleSvc = NewRoleService(e.roles, e.users, e.requests, e.audit, tx, e.pub, log)
	e.approvalSvc = NewApprovalService(e.users, e.roles, e.perms, e.requests, e.audit, tx, e.pub, log)
	return e
}

func (e *env) seedPermission(name string) models.Permission {
	p := models.Permission{ID: len(e.st.perms) + 1, Name: name}
	e.st.perms[p.ID] = p
	return p
}

func (e *env) seedRole(name string) models.Role {
	r := models.Role{ID: e.st.nextRoleID, Name: name}
	e.st.nextRoleID++
	e.st.roles[r.ID] = r
	return r
}

func (e *env) seedUser(username string, roleID int) models.User {
	u := models.User{ID: e.st.nextUserID, Username: username, RoleID: roleID, PasswordHash: "x"}
	e.st.nextUserID++
	e.st.users[u.ID] = u
	return u
}
