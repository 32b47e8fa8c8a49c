package services

import (
	"context"
	"testing"

	"skillgrid/internal/apperr"
	"skillgrid/internal/models"
	"skillgrid/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserProfileIsIdempotent(t *testing.T) {
	gdb := testutil.OpenDB(t)
	svc := NewProfileService(gdb, nil)
	ctx := context.Background()

	first, created, err := svc.CreateUserProfile(ctx, &models.User{ID: "u1", Name: "Asha", Email: "asha@campus.test"})
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, models.RoleStudent, first.Role)
	assert.NotEmpty(t, first.Avatar)

	// 修改后再次创建，不应覆盖
	require.NoError(t, gdb.Model(&models.User{}).Where("id = ?", "u1").Update("total_credits", 40).Error)

	second, created, err := svc.CreateUserProfile(ctx, &models.User{ID: "u1", Name: "Someone Else", Email: "other@campus.test"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "Asha", second.Name)
	assert.Equal(t, 40, second.TotalCredits)

	var count int64
	gdb.Model(&models.User{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestGetProfileNotFound(t *testing.T) {
	svc := NewProfileService(testutil.OpenDB(t), nil)
	_, err := svc.Get(context.Background(), "missing")
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestUpdateProfilePublishes(t *testing.T) {
	gdb := testutil.OpenDB(t)
	hub := NewProfileHub()
	svc := NewProfileService(gdb, hub)
	testutil.CreateUser(t, gdb, "u1", "Asha", models.RoleStudent, 0)

	updates, cancel := hub.Subscribe("u1")
	defer cancel()

	name := "  Asha K  "
	usr, err := svc.UpdateProfile(context.Background(), "u1", ProfileUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Asha K", usr.Name)

	got := <-updates
	assert.Equal(t, "Asha K", got.Name)

	blank := " "
	_, err = svc.UpdateProfile(context.Background(), "u1", ProfileUpdate{Name: &blank})
	assert.True(t, apperr.Is(err, apperr.Validation))

	_, err = svc.UpdateProfile(context.Background(), "nobody", ProfileUpdate{Name: &name})
	assert.True(t, apperr.Is(err, apperr.NotFound))
}

func TestListStudentsExcludesFaculty(t *testing.T) {
	gdb := testutil.OpenDB(t)
	testutil.CreateUser(t, gdb, "s2", "Zara", models.RoleStudent, 0)
	testutil.CreateUser(t, gdb, "s1", "Arun", models.RoleStudent, 0)
	testutil.CreateUser(t, gdb, "f1", "Dr. Faculty", models.RoleFaculty, 0)

	users, err := NewProfileService(gdb, nil).ListStudents(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Arun", users[0].Name)
	assert.Equal(t, "Zara", users[1].Name)
}

func TestNotificationsMarkRead(t *testing.T) {
	gdb := testutil.OpenDB(t)
	svc := NewProfileService(gdb, nil)
	ctx := context.Background()
	testutil.CreateUser(t, gdb, "u1", "Asha", models.RoleStudent, 0)

	n := models.Notification{UserID: "u1", Type: models.NotificationTypeSystem}
	require.NoError(t, gdb.Create(&n).Error)

	count, err := svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	require.NoError(t, svc.MarkNotificationRead(ctx, "u1", n.ID))
	count, err = svc.UnreadCount(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 0, count)

	err = svc.MarkNotificationRead(ctx, "someone-else", n.ID)
	assert.True(t, apperr.Is(err, apperr.NotFound))

	list, err := svc.Notifications(ctx, "u1", 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)
}
