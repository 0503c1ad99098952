package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@x.com", NormalizeEmail("  A@X.Com "))
	assert.Equal(t, "", NormalizeEmail("   "))
}

func TestVerificationToken_Expired(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	v := &VerificationToken{ExpiresAt: now.Add(time.Minute)}

	assert.False(t, v.Expired(now))
	assert.True(t, v.Expired(now.Add(time.Minute)))
	assert.True(t, v.Expired(now.Add(time.Hour)))
}

func TestWorkspace_RoleOf(t *testing.T) {
	w := &Workspace{Members: []WorkspaceMembership{
		{UserID: "u1", Role: WorkspaceOwner},
		{UserID: "u2", Role: WorkspaceViewer},
	}}

	role, ok := w.RoleOf("u1")
	assert.True(t, ok)
	assert.True(t, role.CanManage())
	assert.True(t, role.CanWrite())

	role, ok = w.RoleOf("u2")
	assert.True(t, ok)
	assert.False(t, role.CanManage())
	assert.False(t, role.CanWrite())

	_, ok = w.RoleOf("u3")
	assert.False(t, ok)
}

func TestWorkspaceRole_Invitable(t *testing.T) {
	assert.False(t, WorkspaceOwner.Invitable())
	assert.True(t, WorkspaceAdmin.Invitable())
	assert.True(t, WorkspaceMember.Invitable())
	assert.True(t, WorkspaceViewer.Invitable())
	assert.False(t, WorkspaceRole("superuser").Invitable())
}

func TestProjectEnums(t *testing.T) {
	assert.True(t, ProjectInProgress.Valid())
	assert.False(t, ProjectStatus("in progress").Valid())
	assert.True(t, ProjectContributor.Valid())
	assert.False(t, ProjectRole("owner").Valid())
}
