package models_test

import (
	"testing"
	"time"

	"campus-complaints/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    models.Role
		wantErr bool
	}{
		{in: "student", want: models.RoleStudent},
		{in: "admin", want: models.RoleAdmin},
		{in: "", want: models.RoleStudent},
		{in: "Admin", wantErr: true},
		{in: "superuser", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := models.ParseRole(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRoleCanAdminister(t *testing.T) {
	assert.True(t, models.RoleAdmin.CanAdminister())
	assert.False(t, models.RoleStudent.CanAdminister())
	assert.False(t, models.Role("root").CanAdminister())
}

func TestUserBeforeSave(t *testing.T) {
	u := &models.User{Username: "alice"}
	assert.NoError(t, u.BeforeSave(nil))
	assert.Equal(t, models.RoleStudent, u.Role, "empty role defaults to student")

	bad := &models.User{Username: "mallory", Role: "root"}
	assert.Error(t, bad.BeforeSave(nil))
}

func TestUserIsAdmin(t *testing.T) {
	var nilUser *models.User
	assert.False(t, nilUser.IsAdmin())
	assert.True(t, (&models.User{Role: models.RoleAdmin}).IsAdmin())
}

func TestParseStatus(t *testing.T) {
	for _, st := range models.Statuses {
		got, err := models.ParseStatus(string(st))
		assert.NoError(t, err)
		assert.Equal(t, st, got)
	}
	_, err := models.ParseStatus("Closed")
	assert.Error(t, err)
	_, err = models.ParseStatus("open")
	assert.Error(t, err, "status match is exact")
}

func TestComplaintBeforeSave(t *testing.T) {
	c := &models.Complaint{}
	assert.NoError(t, c.BeforeSave(nil))
	assert.Equal(t, models.StatusOpen, c.Status)

	c.Status = "Escalated"
	assert.Error(t, c.BeforeSave(nil))
}

func TestComplaintOwnership(t *testing.T) {
	c := &models.Complaint{UserID: 7, Submitter: models.AnonymousSubmitter}
	assert.True(t, c.OwnedBy(7))
	assert.False(t, c.OwnedBy(8))
	assert.True(t, c.IsAnonymous())
}

func TestSessionActive(t *testing.T) {
	now := time.Now()
	assert.True(t, (&models.Session{ExpiresAt: now.Add(time.Hour)}).Active(now))
	assert.False(t, (&models.Session{ExpiresAt: now.Add(-time.Second)}).Active(now))
	assert.False(t, (&models.Session{ExpiresAt: now.Add(time.Hour), Revoked: true}).Active(now))

	var nilSession *models.Session
	assert.False(t, nilSession.Active(now))
}
