package linking_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	"github.com/guilteater/backend/auth"
	"github.com/guilteater/backend/dbtest"
	"github.com/guilteater/backend/linking"
)

type fixture struct {
	db       *bun.DB
	repo     auth.RepositoryManager
	registry *linking.Registry
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db := dbtest.New(t)
	repo := auth.NewRepositoryManager(db)

	f := &fixture{
		db:   db,
		repo: repo,
		now:  time.Now(),
	}
	f.registry = linking.NewRegistry(
		linking.NewCodesRepository(db),
		repo.Accounts(),
		repo,
		linking.WithClock(func() time.Time { return f.now }),
	)
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.now = f.now.Add(d)
}

func (f *fixture) account(t *testing.T, email string, role auth.Role) *auth.Account {
	t.Helper()
	account, err := f.repo.Accounts().Register(context.Background(), &auth.Account{
		Email: email,
		Name:  email,
		Role:  role,
	})
	require.NoError(t, err)
	return account
}

func TestGenerate_ParentGetsSixDigitCode(t *testing.T) {
	f := newFixture(t)
	parent := f.account(t, "parent@example.com", auth.RoleParent)

	result, err := f.registry.Generate(context.Background(), parent)
	require.NoError(t, err)

	assert.Len(t, result.Code, linking.CodeLength)
	for _, r := range result.Code {
		assert.GreaterOrEqual(t, r, '0')
		assert.LessOrEqual(t, r, '9')
	}
	assert.Equal(t, parent.ID, result.ParentID)
	assert.Equal(t, parent.Name, result.ParentName)
	assert.Equal(t, fmt.Sprintf("%s:%s", parent.ID, result.Code), result.QRData)
	assert.WithinDuration(t, f.now.Add(linking.ExpiryWindow), result.ExpiresAt, time.Second)
}

func TestGenerate_NonParentsAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	individual := f.account(t, "solo@example.com", auth.RoleIndividual)
	_, err := f.registry.Generate(ctx, individual)
	assert.ErrorIs(t, err, linking.ErrOnlyParentsGenerate)

	child := f.account(t, "kid@example.com", auth.RoleChild)
	_, err = f.registry.Generate(ctx, child)
	assert.ErrorIs(t, err, linking.ErrOnlyParentsGenerate)
}

func TestGenerate_ReturnsActiveCodeUnchanged(t *testing.T) {
	f := newFixture(t)
	parent := f.account(t, "parent@example.com", auth.RoleParent)
	ctx := context.Background()

	first, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	f.advance(time.Hour)

	second, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	assert.Equal(t, first.Code, second.Code)
	assert.Equal(t, first.ExpiresAt.Unix(), second.ExpiresAt.Unix())
}

func TestGenerate_MintsFreshCodeAfterExpiry(t *testing.T) {
	f := newFixture(t)
	parent := f.account(t, "parent@example.com", auth.RoleParent)
	ctx := context.Background()

	first, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	f.advance(linking.ExpiryWindow + time.Minute)

	second, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	assert.True(t, second.ExpiresAt.After(first.ExpiresAt))
}

func TestRedeem_LinksChildToParent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.account(t, "parent@example.com", auth.RoleParent)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	generated, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	result, err := f.registry.Redeem(ctx, kid, linking.RedeemInput{Code: generated.Code})
	require.NoError(t, err)

	assert.Equal(t, parent.Name, result.ParentName)
	assert.Equal(t, parent.Email, result.ParentEmail)
	assert.Equal(t, kid.Name, result.ChildName)
	assert.Equal(t, kid.Email, result.ChildEmail)

	// in-memory account reflects the link
	assert.Equal(t, auth.RoleChild, kid.Role)
	require.NotNil(t, kid.ParentID)
	assert.Equal(t, parent.ID, *kid.ParentID)

	// stored account reflects the link
	stored, err := f.repo.Accounts().FetchByID(ctx, kid.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleChild, stored.Role)
	require.NotNil(t, stored.ParentID)
	assert.Equal(t, parent.ID, *stored.ParentID)
}

func TestRedeem_ViaQRPayload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.account(t, "parent@example.com", auth.RoleParent)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	generated, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, kid, linking.RedeemInput{QRData: generated.QRData})
	require.NoError(t, err)
	assert.Equal(t, auth.RoleChild, kid.Role)
}

func TestRedeem_CodeIsSingleUse(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.account(t, "parent@example.com", auth.RoleParent)
	first := f.account(t, "first@example.com", auth.RoleIndividual)
	second := f.account(t, "second@example.com", auth.RoleIndividual)

	generated, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, first, linking.RedeemInput{Code: generated.Code})
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, second, linking.RedeemInput{Code: generated.Code})
	assert.ErrorIs(t, err, linking.ErrInvalidOrExpiredCode)

	// the loser is untouched
	stored, err := f.repo.Accounts().FetchByID(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, auth.RoleIndividual, stored.Role)
	assert.Nil(t, stored.ParentID)
}

func TestRedeem_ExpiredCodeFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.account(t, "parent@example.com", auth.RoleParent)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	generated, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	f.advance(linking.ExpiryWindow + time.Minute)

	_, err = f.registry.Redeem(ctx, kid, linking.RedeemInput{Code: generated.Code})
	assert.ErrorIs(t, err, linking.ErrInvalidOrExpiredCode)
}

func TestRedeem_UnknownCodeFails(t *testing.T) {
	f := newFixture(t)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	_, err := f.registry.Redeem(context.Background(), kid, linking.RedeemInput{Code: "999999"})
	assert.ErrorIs(t, err, linking.ErrInvalidOrExpiredCode)
}

func TestRedeem_ParentsAreRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.account(t, "parent@example.com", auth.RoleParent)
	other := f.account(t, "other@example.com", auth.RoleParent)

	generated, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, other, linking.RedeemInput{Code: generated.Code})
	assert.ErrorIs(t, err, linking.ErrParentsCannotRedeem)
}

func TestRedeem_AlreadyLinkedIsRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent := f.account(t, "parent@example.com", auth.RoleParent)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	generated, err := f.registry.Generate(ctx, parent)
	require.NoError(t, err)
	_, err = f.registry.Redeem(ctx, kid, linking.RedeemInput{Code: generated.Code})
	require.NoError(t, err)

	other := f.account(t, "second-parent@example.com", auth.RoleParent)
	generated2, err := f.registry.Generate(ctx, other)
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, kid, linking.RedeemInput{Code: generated2.Code})
	assert.ErrorIs(t, err, linking.ErrAlreadyLinked)
}

func TestRedeem_StaleSnapshotCannotOverwriteLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	parent1 := f.account(t, "parent1@example.com", auth.RoleParent)
	parent2 := f.account(t, "parent2@example.com", auth.RoleParent)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	// a concurrent request holds its own pre-link copy of the account
	snapshot, err := f.repo.Accounts().FetchByID(ctx, kid.ID)
	require.NoError(t, err)

	code1, err := f.registry.Generate(ctx, parent1)
	require.NoError(t, err)
	code2, err := f.registry.Generate(ctx, parent2)
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, kid, linking.RedeemInput{Code: code1.Code})
	require.NoError(t, err)

	_, err = f.registry.Redeem(ctx, snapshot, linking.RedeemInput{Code: code2.Code})
	assert.ErrorIs(t, err, linking.ErrAlreadyLinked)

	// the first link survives
	stored, err := f.repo.Accounts().FetchByID(ctx, kid.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.ParentID)
	assert.Equal(t, parent1.ID, *stored.ParentID)
	assert.Equal(t, auth.RoleChild, stored.Role)

	// the refused redemption rolled back, so parent2's code is still active
	again, err := f.registry.Generate(ctx, parent2)
	require.NoError(t, err)
	assert.Equal(t, code2.Code, again.Code)
}

func TestRedeem_RequiresCodeOrQRData(t *testing.T) {
	f := newFixture(t)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	_, err := f.registry.Redeem(context.Background(), kid, linking.RedeemInput{})
	assert.ErrorIs(t, err, linking.ErrMissingCode)
}

func TestRedeem_MalformedQRDataFails(t *testing.T) {
	f := newFixture(t)
	kid := f.account(t, "kid@example.com", auth.RoleIndividual)

	_, err := f.registry.Redeem(context.Background(), kid, linking.RedeemInput{QRData: "a:b:c"})
	assert.ErrorIs(t, err, linking.ErrMalformedQRPayload)

	_, err = f.registry.Redeem(context.Background(), kid, linking.RedeemInput{QRData: "nodelimiter"})
	assert.ErrorIs(t, err, linking.ErrMalformedQRPayload)
}
