package auth

import (
	"context"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Accounts is the account repository
type Accounts interface {
	repository.Repository[*Account]

	Register(ctx context.Context, record *Account) (*Account, error)
	RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error)

	GetByEmail(ctx context.Context, email string) (*Account, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error)
	FetchByID(ctx context.Context, id uuid.UUID) (*Account, error)
	FetchByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error)

	RotateSessionMarker(ctx context.Context, id uuid.UUID, marker string) error
	RotateSessionMarkerTx(ctx context.Context, tx bun.IDB, id uuid.UUID, marker string) error

	LinkToParent(ctx context.Context, childID, parentID uuid.UUID) error
	LinkToParentTx(ctx context.Context, tx bun.IDB, childID, parentID uuid.UUID) error

	ChildrenOf(ctx context.Context, parentID uuid.UUID) ([]*Account, error)
}

type accounts struct {
	repository.Repository[*Account]
	db *bun.DB
}

var (
	_ Accounts                        = (*accounts)(nil)
	_ repository.Repository[*Account] = (*accounts)(nil)
)

func NewAccountsRepository(db *bun.DB) Accounts {
	repo := repository.NewRepository[*Account](db, repository.ModelHandlers[*Account]{
		NewRecord: func() *Account { return &Account{} },
		GetID: func(a *Account) uuid.UUID {
			if a == nil {
				return uuid.Nil
			}
			return a.ID
		},
		SetID: func(a *Account, id uuid.UUID) {
			if a != nil {
				a.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &accounts{
		Repository: repo,
		db:         db,
	}
}

func (a *accounts) Register(ctx context.Context, record *Account) (*Account, error) {
	return a.RegisterTx(ctx, a.db, record)
}

func (a *accounts) RegisterTx(ctx context.Context, tx bun.IDB, record *Account) (*Account, error) {
	prepareAccountDefaults(record)
	record.Email = normalizeEmail(record.Email)
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *accounts) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *accounts) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.email = ?", normalizeEmail(email)).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"email": email})
		}
		return nil, err
	}
	return record, nil
}

// FetchByID resolves an account by its UUID primary key. The embedded
// repository keeps its string-id GetByID; this is the typed accessor.
func (a *accounts) FetchByID(ctx context.Context, id uuid.UUID) (*Account, error) {
	return a.FetchByIDTx(ctx, a.db, id)
}

func (a *accounts) FetchByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) (*Account, error) {
	record := &Account{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}
	return record, nil
}

func (a *accounts) RotateSessionMarker(ctx context.Context, id uuid.UUID, marker string) error {
	return a.RotateSessionMarkerTx(ctx, a.db, id, marker)
}

// RotateSessionMarkerTx replaces the stored session marker, invalidating every
// token issued under the previous one.
func (a *accounts) RotateSessionMarkerTx(ctx context.Context, tx bun.IDB, id uuid.UUID, marker string) error {
	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("session_marker = ?", marker).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to rotate session marker")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *accounts) LinkToParent(ctx context.Context, childID, parentID uuid.UUID) error {
	return a.LinkToParentTx(ctx, a.db, childID, parentID)
}

// LinkToParentTx records the parent reference and forces the child role in
// the same update. The parent_id predicate makes the first link win: a row
// that already carries a parent reference is never overwritten, no matter
// how stale the caller's snapshot of the account is.
func (a *accounts) LinkToParentTx(ctx context.Context, tx bun.IDB, childID, parentID uuid.UUID) error {
	res, err := tx.NewUpdate().
		Model((*Account)(nil)).
		Set("parent_id = ?", parentID).
		Set("role = ?", RoleChild).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", childID).
		Where("parent_id IS NULL").
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to link account to parent")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		if _, err := a.FetchByIDTx(ctx, tx, childID); err != nil {
			return err
		}
		return ErrAccountLinked
	}

	return nil
}

func (a *accounts) ChildrenOf(ctx context.Context, parentID uuid.UUID) ([]*Account, error) {
	var records []*Account
	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.parent_id = ?", parentID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list children")
	}
	return records, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
