package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/medvault/medvault/internal/database/testutil"
	"github.com/medvault/medvault/internal/models"
)

type adminFixture struct {
	super   models.Admin
	svc     *AdminVerificationService
	db      *gorm.DB
	baseNow time.Time
}

func newAdminFixture(t *testing.T) *adminFixture {
	t.Helper()
	db := testutil.MustOpenTestDB(t)
	svc, err := NewAdminVerificationService(db, NopNotifier{})
	require.NoError(t, err)

	f := &adminFixture{svc: svc, db: db, baseNow: time.Now().Add(-24 * time.Hour)}
	f.super = f.createAdmin(t, "Super Admin", "super@medvault.test", models.StatusActive, true, f.baseNow)
	return f
}

func (f *adminFixture) createAdmin(t *testing.T, name, email string, status models.VerificationStatus, super bool, approvedAt time.Time) models.Admin {
	t.Helper()

	userStatus := models.StatusPending
	if status == models.StatusActive {
		userStatus = models.StatusActive
	}
	user := models.User{Name: name, Email: email, Role: models.RoleAdmin, Status: userStatus}
	require.NoError(t, f.db.Create(&user).Error)

	admin := models.Admin{
		ID:                 user.ID,
		IsSuperAdmin:       super,
		VerificationStatus: status,
	}
	if status == models.StatusActive {
		admin.ApprovedAt = &approvedAt
	}
	require.NoError(t, f.db.Create(&admin).Error)
	return admin
}

func (f *adminFixture) reload(t *testing.T, id string) (models.Admin, models.User) {
	t.Helper()
	var admin models.Admin
	require.NoError(t, f.db.First(&admin, "id = ?", id).Error)
	var user models.User
	require.NoError(t, f.db.First(&user, "id = ?", id).Error)
	return admin, user
}

func TestApproveAdminActivatesProfileAndUserTogether(t *testing.T) {
	f := newAdminFixture(t)
	target := f.createAdmin(t, "Pending Admin", "pending@medvault.test", models.StatusPending, false, time.Time{})

	require.NoError(t, f.svc.ApproveAdmin(context.Background(), target.ID, f.super.ID))

	admin, user := f.reload(t, target.ID)
	assert.Equal(t, models.StatusActive, admin.VerificationStatus)
	assert.Equal(t, models.StatusActive, user.Status)
	require.NotNil(t, admin.ApprovedAt)
	require.NotNil(t, admin.ApprovedByAdminID)
	assert.Equal(t, f.super.ID, *admin.ApprovedByAdminID)
}

func TestApproveAdminRequiresPendingTarget(t *testing.T) {
	f := newAdminFixture(t)
	target := f.createAdmin(t, "Active Admin", "active@medvault.test", models.StatusActive, false, f.baseNow.Add(time.Hour))

	err := f.svc.ApproveAdmin(context.Background(), target.ID, f.super.ID)
	assert.ErrorIs(t, err, ErrAdminNotPending)
}

func TestApproveAdminUnknownTarget(t *testing.T) {
	f := newAdminFixture(t)

	err := f.svc.ApproveAdmin(context.Background(), "missing-id", f.super.ID)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestApproveAdminUnknownActor(t *testing.T) {
	f := newAdminFixture(t)
	target := f.createAdmin(t, "Pending Admin", "pending@medvault.test", models.StatusPending, false, time.Time{})

	err := f.svc.ApproveAdmin(context.Background(), target.ID, "missing-id")
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestApproveAdminRejectsPendingActor(t *testing.T) {
	f := newAdminFixture(t)
	actor := f.createAdmin(t, "Pending Actor", "actor@medvault.test", models.StatusPending, false, time.Time{})
	target := f.createAdmin(t, "Pending Target", "target@medvault.test", models.StatusPending, false, time.Time{})

	err := f.svc.ApproveAdmin(context.Background(), target.ID, actor.ID)
	assert.ErrorIs(t, err, ErrAdminNotActive)
}

func TestSuccessionOnlyLatestActiveAdminMayAct(t *testing.T) {
	f := newAdminFixture(t)
	older := f.createAdmin(t, "Older Admin", "older@medvault.test", models.StatusActive, false, f.baseNow.Add(time.Hour))
	newer := f.createAdmin(t, "Newer Admin", "newer@medvault.test", models.StatusActive, false, f.baseNow.Add(2*time.Hour))
	target := f.createAdmin(t, "Pending Target", "target@medvault.test", models.StatusPending, false, time.Time{})

	// The superseded admin can neither approve nor deny.
	err := f.svc.ApproveAdmin(context.Background(), target.ID, older.ID)
	assert.ErrorIs(t, err, ErrNotLatestAdmin)
	err = f.svc.DenyAdmin(context.Background(), target.ID, older.ID)
	assert.ErrorIs(t, err, ErrNotLatestAdmin)

	// The latest-approved admin can.
	require.NoError(t, f.svc.ApproveAdmin(context.Background(), target.ID, newer.ID))
}

func TestSuccessionLatestExcludesDeletedAdmins(t *testing.T) {
	f := newAdminFixture(t)
	older := f.createAdmin(t, "Older Admin", "older@medvault.test", models.StatusActive, false, f.baseNow.Add(time.Hour))
	newest := f.createAdmin(t, "Newest Admin", "newest@medvault.test", models.StatusActive, false, f.baseNow.Add(2*time.Hour))
	require.NoError(t, f.db.Model(&models.Admin{}).Where("id = ?", newest.ID).Update("deleted", true).Error)

	target := f.createAdmin(t, "Pending Target", "target@medvault.test", models.StatusPending, false, time.Time{})

	// With the newest admin soft-deleted, the older one is latest again.
	require.NoError(t, f.svc.ApproveAdmin(context.Background(), target.ID, older.ID))
}

func TestSuperAdminBypassesSuccession(t *testing.T) {
	f := newAdminFixture(t)
	f.createAdmin(t, "Newer Admin", "newer@medvault.test", models.StatusActive, false, f.baseNow.Add(2*time.Hour))
	target := f.createAdmin(t, "Pending Target", "target@medvault.test", models.StatusPending, false, time.Time{})

	// A more recently approved admin exists, yet the super admin still acts.
	require.NoError(t, f.svc.ApproveAdmin(context.Background(), target.ID, f.super.ID))
}

func TestDenyAdminSoftDeletes(t *testing.T) {
	f := newAdminFixture(t)
	target := f.createAdmin(t, "Pending Target", "target@medvault.test", models.StatusPending, false, time.Time{})

	require.NoError(t, f.svc.DenyAdmin(context.Background(), target.ID, f.super.ID))

	admin, user := f.reload(t, target.ID)
	assert.True(t, admin.Deleted)
	assert.Equal(t, models.StatusPending, admin.VerificationStatus)
	assert.Equal(t, models.StatusPending, user.Status)
}

func TestDenyAdminAlreadyDeleted(t *testing.T) {
	f := newAdminFixture(t)
	target := f.createAdmin(t, "Pending Target", "target@medvault.test", models.StatusPending, false, time.Time{})
	require.NoError(t, f.db.Model(&models.Admin{}).Where("id = ?", target.ID).Update("deleted", true).Error)

	err := f.svc.DenyAdmin(context.Background(), target.ID, f.super.ID)
	assert.ErrorIs(t, err, ErrAdminNotFound)
}

func TestPendingAdminsListing(t *testing.T) {
	f := newAdminFixture(t)
	f.createAdmin(t, "Ravi Kumar", "ravi@medvault.test", models.StatusPending, false, time.Time{})
	f.createAdmin(t, "Meera Nair", "meera@medvault.test", models.StatusPending, false, time.Time{})
	deleted := f.createAdmin(t, "Gone Admin", "gone@medvault.test", models.StatusPending, false, time.Time{})
	require.NoError(t, f.db.Model(&models.Admin{}).Where("id = ?", deleted.ID).Update("deleted", true).Error)

	all, total, err := f.svc.PendingAdmins(context.Background(), "", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, all, 2)

	filtered, total, err := f.svc.PendingAdmins(context.Background(), "meera", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	assert.Equal(t, "Meera Nair", filtered[0].Name)
	assert.Equal(t, "meera@medvault.test", filtered[0].Email)

	page2, total, err := f.svc.PendingAdmins(context.Background(), "", 2, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, page2, 1)
}
