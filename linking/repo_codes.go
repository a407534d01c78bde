package linking

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Codes is the linking code repository
type Codes interface {
	repository.Repository[*LinkingCode]

	Mint(ctx context.Context, record *LinkingCode) (*LinkingCode, error)
	MintTx(ctx context.Context, tx bun.IDB, record *LinkingCode) (*LinkingCode, error)

	// ActiveForParent returns the parent's unconsumed, unexpired code if one exists
	ActiveForParent(ctx context.Context, parentID uuid.UUID, now time.Time) (*LinkingCode, error)
	ActiveForParentTx(ctx context.Context, tx bun.IDB, parentID uuid.UUID, now time.Time) (*LinkingCode, error)

	// ValueInUse reports whether any currently non-expired code, consumed or
	// not, carries this value. Consumed codes free their value only once
	// expired.
	ValueInUse(ctx context.Context, code string, now time.Time) (bool, error)

	// PurgeExpired deletes the parent's expired unconsumed codes. They can
	// never be redeemed and would otherwise hold the one-live-code-per-parent
	// slot forever.
	PurgeExpired(ctx context.Context, parentID uuid.UUID, now time.Time) error

	// ConsumeTx atomically marks an active code consumed and returns it. The
	// conditional update is the race arbiter: of any number of concurrent
	// redemption attempts exactly one flips the consumed flag, every other
	// caller gets ErrInvalidOrExpiredCode.
	ConsumeTx(ctx context.Context, tx bun.IDB, code string, by uuid.UUID, now time.Time) (*LinkingCode, error)
}

type codes struct {
	repository.Repository[*LinkingCode]
	db *bun.DB
}

var (
	_ Codes                               = (*codes)(nil)
	_ repository.Repository[*LinkingCode] = (*codes)(nil)
)

func NewCodesRepository(db *bun.DB) Codes {
	repo := repository.NewRepository[*LinkingCode](db, repository.ModelHandlers[*LinkingCode]{
		NewRecord: func() *LinkingCode { return &LinkingCode{} },
		GetID: func(c *LinkingCode) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *LinkingCode, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
		GetIdentifier: func() string {
			return "code"
		},
	})

	return &codes{
		Repository: repo,
		db:         db,
	}
}

func (c *codes) Mint(ctx context.Context, record *LinkingCode) (*LinkingCode, error) {
	return c.MintTx(ctx, c.db, record)
}

func (c *codes) MintTx(ctx context.Context, tx bun.IDB, record *LinkingCode) (*LinkingCode, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
	return c.Repository.CreateTx(ctx, tx, record)
}

func (c *codes) ActiveForParent(ctx context.Context, parentID uuid.UUID, now time.Time) (*LinkingCode, error) {
	return c.ActiveForParentTx(ctx, c.db, parentID, now)
}

func (c *codes) ActiveForParentTx(ctx context.Context, tx bun.IDB, parentID uuid.UUID, now time.Time) (*LinkingCode, error) {
	record := &LinkingCode{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.parent_id = ?", parentID).
		Where("?TableAlias.is_consumed = ?", false).
		Where("?TableAlias.expires_at > ?", now).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"parent_id": parentID.String()})
		}
		return nil, err
	}
	return record, nil
}

func (c *codes) ValueInUse(ctx context.Context, code string, now time.Time) (bool, error) {
	count, err := c.db.NewSelect().
		Model((*LinkingCode)(nil)).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.expires_at > ?", now).
		Count(ctx)
	if err != nil {
		return false, errors.Wrap(err, errors.CategoryInternal, "failed to check code value")
	}
	return count > 0, nil
}

func (c *codes) PurgeExpired(ctx context.Context, parentID uuid.UUID, now time.Time) error {
	_, err := c.db.NewDelete().
		Model((*LinkingCode)(nil)).
		Where("parent_id = ?", parentID).
		Where("is_consumed = ?", false).
		Where("expires_at <= ?", now).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to purge expired linking codes")
	}
	return nil
}

func (c *codes) ConsumeTx(ctx context.Context, tx bun.IDB, code string, by uuid.UUID, now time.Time) (*LinkingCode, error) {
	res, err := tx.NewUpdate().
		Model((*LinkingCode)(nil)).
		Set("is_consumed = ?", true).
		Set("consumed_by = ?", by).
		Set("consumed_at = ?", now).
		Where("code = ?", code).
		Where("is_consumed = ?", false).
		Where("expires_at > ?", now).
		Exec(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to consume linking code")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to read consume result")
	}
	if rows == 0 {
		return nil, ErrInvalidOrExpiredCode
	}

	record := &LinkingCode{}
	err = tx.NewSelect().
		Model(record).
		Where("?TableAlias.code = ?", code).
		Where("?TableAlias.consumed_by = ?", by).
		Order("consumed_at DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load consumed linking code")
	}
	return record, nil
}
