package services

import (
	"context"
	"testing"

	"github.com/admin-portal/backend/internal/auth"
	"github.com/admin-portal/backend/internal/models"
	"github.com/stretchr/testify/require"
)

func TestApproveUserCreate(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")

	cr, err := e.userSvc.RequestCreate(context.Background(), 1, models.UserPayload{
		Username: "ada",
		Password: "secret",
		RoleID:   role.ID,
	})
	require.NoError(t, err)

	resolved, err := e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, resolved.Status)
	require.NotNil(t, resolved.ReviewedBy)
	require.Equal(t, 2, *resolved.ReviewedBy)
	require.NotNil(t, resolved.ReviewedAt)

	require.Len(t, e.st.users, 1)
	var created models.User
	for _, u := range e.st.users {
		created = u
	}
	require.Equal(t, "ada", created.Username)
	require.Equal(t, role.ID, created.RoleID)
	// The plaintext never reaches the entity store.
	require.NotEqual(t, "secret", created.PasswordHash)
	require.True(t, auth.VerifyPassword(created.PasswordHash, "secret"))
}

func TestApproveUserCreateDanglingRole(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")

	cr, err := e.userSvc.RequestCreate(context.Background(), 1, models.UserPayload{
		Username: "ada",
		Password: "secret",
		RoleID:   role.ID,
	})
	require.NoError(t, err)

	// The role disappears between submission and review.
	delete(e.st.roles, role.ID)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.ErrorIs(t, err, models.ErrReferencedEntityNotFound)

	// The whole resolution rolled back: request still pending, no user.
	require.Equal(t, models.StatusPending, e.st.requests[cr.ID].Status)
	require.Empty(t, e.st.users)
}

func TestApproveUserUpdate(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)
	oldHash := e.st.users[user.ID].PasswordHash

	cr, err := e.userSvc.RequestUpdate(context.Background(), 1, user.ID, models.UserPayload{
		Username: "ada2",
		RoleID:   role.ID,
		// Empty password keeps the stored hash.
	})
	require.NoError(t, err)
	require.True(t, e.st.users[user.ID].Locked)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.NoError(t, err)

	got := e.st.users[user.ID]
	require.Equal(t, "ada2", got.Username)
	require.Equal(t, oldHash, got.PasswordHash)
	require.False(t, got.Locked)
}

func TestRejectUserUpdateUnlocks(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	cr, err := e.userSvc.RequestUpdate(context.Background(), 1, user.ID, models.UserPayload{
		Username: "ada2",
		RoleID:   role.ID,
	})
	require.NoError(t, err)

	resolved, err := e.approvalSvc.Reject(context.Background(), 2, cr.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, resolved.Status)

	got := e.st.users[user.ID]
	require.Equal(t, "ada", got.Username)
	require.False(t, got.Locked)
}

func TestApproveUserDelete(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	cr, err := e.userSvc.RequestDelete(context.Background(), 1, user.ID)
	require.NoError(t, err)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.NoError(t, err)
	require.Empty(t, e.st.users)
}

func TestApproveUserActivate(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	cr, err := e.userSvc.RequestActivate(context.Background(), 1, user.ID)
	require.NoError(t, err)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.NoError(t, err)

	got := e.st.users[user.ID]
	require.Equal(t, models.ActiveStatusActive, got.ActiveStatus)
	require.False(t, got.Locked)
}

func TestResolveTerminalRequest(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	cr, err := e.userSvc.RequestDeactivate(context.Background(), 1, user.ID)
	require.NoError(t, err)

	_, err = e.approvalSvc.Reject(context.Background(), 2, cr.ID)
	require.NoError(t, err)

	// A second resolution of either kind is refused and changes nothing.
	_, err = e.approvalSvc.Approve(context.Background(), 3, cr.ID)
	require.ErrorIs(t, err, models.ErrNotPending)
	_, err = e.approvalSvc.Reject(context.Background(), 3, cr.ID)
	require.ErrorIs(t, err, models.ErrNotPending)

	stored := e.st.requests[cr.ID]
	require.Equal(t, models.StatusRejected, stored.Status)
	require.Equal(t, 2, *stored.ReviewedBy)
	require.Equal(t, "", e.st.users[user.ID].ActiveStatus)
}

func TestRejectUserCreate(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")

	cr, err := e.userSvc.RequestCreate(context.Background(), 1, models.UserPayload{
		Username: "ada",
		Password: "secret",
		RoleID:   role.ID,
	})
	require.NoError(t, err)

	// No target exists, so reject resolves without touching any entity.
	resolved, err := e.approvalSvc.Reject(context.Background(), 2, cr.ID)
	require.NoError(t, err)
	require.Equal(t, models.StatusRejected, resolved.Status)
	require.Empty(t, e.st.users)
}

func TestResolveRequiresActor(t *testing.T) {
	e := newEnv(t)

	_, err := e.approvalSvc.Approve(context.Background(), 0, 1)
	require.ErrorIs(t, err, models.ErrActorRequired)
}

func TestResolveMissingRequest(t *testing.T) {
	e := newEnv(t)

	_, err := e.approvalSvc.Approve(context.Background(), 1, 99)
	require.ErrorIs(t, err, models.ErrRequestNotFound)
}

func TestApproveRoleCreate(t *testing.T) {
	e := newEnv(t)
	p1 := e.seedPermission("manage_users")
	p2 := e.seedPermission("review_requests")

	cr, err := e.roleSvc.RequestCreate(context.Background(), 1, models.RolePayload{
		Name:          "supervisor",
		PermissionIDs: []int{p1.ID, p2.ID},
	})
	require.NoError(t, err)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.NoError(t, err)

	require.Len(t, e.st.roles, 1)
	var created models.Role
	for _, r := range e.st.roles {
		created = r
	}
	require.Equal(t, "supervisor", created.Name)
	require.Equal(t, []int{p1.ID, p2.ID}, created.PermissionIDs())
}

func TestApproveRoleCreateDanglingPermission(t *testing.T) {
	e := newEnv(t)
	p1 := e.seedPermission("manage_users")

	cr, err := e.roleSvc.RequestCreate(context.Background(), 1, models.RolePayload{
		Name:          "supervisor",
		PermissionIDs: []int{p1.ID, 99},
	})
	require.NoError(t, err)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.ErrorIs(t, err, models.ErrReferencedEntityNotFound)

	require.Equal(t, models.StatusPending, e.st.requests[cr.ID].Status)
	require.Empty(t, e.st.roles)
}

func TestApproveRoleUpdate(t *testing.T) {
	e := newEnv(t)
	p1 := e.seedPermission("manage_users")
	role := e.seedRole("operator")

	cr, err := e.roleSvc.RequestUpdate(context.Background(), 1, role.ID, models.RolePayload{
		Name:          "ops",
		PermissionIDs: []int{p1.ID},
	})
	require.NoError(t, err)

	_, err = e.approvalSvc.Approve(context.Background(), 2, cr.ID)
	require.NoError(t, err)

	got := e.st.roles[role.ID]
	require.Equal(t, "ops", got.Name)
	require.Equal(t, []int{p1.ID}, got.PermissionIDs())
	require.False(t, got.Locked)
}

func TestRejectRoleDeleteUnlocks(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")

	cr, err := e.roleSvc.RequestDelete(context.Background(), 1, role.ID)
	require.NoError(t, err)
	require.True(t, e.st.roles[role.ID].Locked)

	_, err = e.approvalSvc.Reject(context.Background(), 2, cr.ID)
	require.NoError(t, err)
	require.False(t, e.st.roles[role.ID].Locked)
	require.Len(t, e.st.roles, 1)
}

func TestListRequestsByStatus(t *testing.T) {
	e := newEnv(t)
	role := e.seedRole("operator")
	user := e.seedUser("ada", role.ID)

	cr1, err := e.userSvc.RequestDeactivate(context.Background(), 1, user.ID)
	require.NoError(t, err)
	_, err = e.roleSvc.RequestCreate(context.Background(), 1, models.RolePayload{Name: "x"})
	require.NoError(t, err)

	_, err = e.approvalSvc.Reject(context.Background(), 2, cr1.ID)
	require.NoError(t, err)

	pending, err := e.approvalSvc.List(context.Background(), models.StatusPending, 20, 0)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	all, err := e.approvalSvc.List(context.Background(), "", 20, 0)
	require.NoError(t, err)
	require.Len(t, all, 2)

	_, err = e.approvalSvc.List(context.Background(), "bogus", 20, 0)
	require.Error(t, err)
}
