package auth_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/guilteater/backend/auth"
)

func TestAccountMatchesMarker(t *testing.T) {
	parent := &auth.Account{Role: auth.RoleParent, SessionMarker: "current"}

	assert.True(t, parent.MatchesMarker("current"))
	assert.False(t, parent.MatchesMarker("stale"))
	assert.False(t, parent.MatchesMarker(""))

	// a parent with no marker stored accepts nothing
	fresh := &auth.Account{Role: auth.RoleParent}
	assert.False(t, fresh.MatchesMarker(""))
	assert.False(t, fresh.MatchesMarker("anything"))

	// non-parents never carry markers, any value passes
	kid := &auth.Account{Role: auth.RoleChild}
	assert.True(t, kid.MatchesMarker(""))
	assert.True(t, kid.MatchesMarker("whatever"))
}

func TestAccountIsLinked(t *testing.T) {
	assert.False(t, (&auth.Account{}).IsLinked())

	nilID := uuid.Nil
	assert.False(t, (&auth.Account{ParentID: &nilID}).IsLinked())

	id := uuid.New()
	assert.True(t, (&auth.Account{ParentID: &id}).IsLinked())
}

func TestNewAccountIDIsDeterministic(t *testing.T) {
	a := auth.NewAccountID("same@example.com")
	b := auth.NewAccountID("same@example.com")
	c := auth.NewAccountID("other@example.com")

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}
