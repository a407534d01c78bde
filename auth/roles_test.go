package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/guilteater/backend/auth"
)

func TestRoleIsValid(t *testing.T) {
	assert.True(t, auth.RoleIndividual.IsValid())
	assert.True(t, auth.RoleParent.IsValid())
	assert.True(t, auth.RoleChild.IsValid())

	assert.False(t, auth.Role("admin").IsValid())
	assert.False(t, auth.Role("").IsValid())
	assert.False(t, auth.Role("Parent").IsValid())
}

func TestRoleLinkingPermissions(t *testing.T) {
	assert.True(t, auth.RoleParent.CanGenerateLinkingCodes())
	assert.False(t, auth.RoleIndividual.CanGenerateLinkingCodes())
	assert.False(t, auth.RoleChild.CanGenerateLinkingCodes())

	assert.True(t, auth.RoleIndividual.CanRedeemLinkingCodes())
	assert.True(t, auth.RoleChild.CanRedeemLinkingCodes())
	assert.False(t, auth.RoleParent.CanRedeemLinkingCodes())
}

func TestParseRole(t *testing.T) {
	role, ok := auth.ParseRole("parent")
	assert.True(t, ok)
	assert.Equal(t, auth.RoleParent, role)

	_, ok = auth.ParseRole("superuser")
	assert.False(t, ok)

	_, ok = auth.ParseRole("")
	assert.False(t, ok)
}
