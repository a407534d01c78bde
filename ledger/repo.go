package ledger

import (
	"context"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Store bundles the four ledger repositories behind one surface
type Store interface {
	Goals() Goals
	Wallets() Wallets
	Violations() Violations
	Transactions() Transactions
}

type Goals interface {
	repository.Repository[*Goal]

	ForAccount(ctx context.Context, accountID uuid.UUID) ([]*Goal, error)
	GetOwned(ctx context.Context, goalID, accountID uuid.UUID) (*Goal, error)
	GetOwnedTx(ctx context.Context, tx bun.IDB, goalID, accountID uuid.UUID) (*Goal, error)
}

type Wallets interface {
	repository.Repository[*WalletLedger]

	ForAccount(ctx context.Context, accountID uuid.UUID) ([]*WalletLedger, error)
	ForGoalTx(ctx context.Context, tx bun.IDB, goalID uuid.UUID) (*WalletLedger, error)
	BumpWarningsTx(ctx context.Context, tx bun.IDB, walletID uuid.UUID) error
}

type Violations interface {
	repository.Repository[*Violation]

	ForGoal(ctx context.Context, goalID uuid.UUID) ([]*Violation, error)
	CountForGoalTx(ctx context.Context, tx bun.IDB, goalID uuid.UUID) (int, error)
}

type Transactions interface {
	repository.Repository[*Transaction]

	ForAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error)
}

type store struct {
	goals        Goals
	wallets      Wallets
	violations   Violations
	transactions Transactions
}

func NewStore(db *bun.DB) Store {
	return &store{
		goals:        newGoalsRepository(db),
		wallets:      newWalletsRepository(db),
		violations:   newViolationsRepository(db),
		transactions: newTransactionsRepository(db),
	}
}

func (s *store) Goals() Goals               { return s.goals }
func (s *store) Wallets() Wallets           { return s.wallets }
func (s *store) Violations() Violations     { return s.violations }
func (s *store) Transactions() Transactions { return s.transactions }

type goals struct {
	repository.Repository[*Goal]
	db *bun.DB
}

func newGoalsRepository(db *bun.DB) Goals {
	repo := repository.NewRepository[*Goal](db, repository.ModelHandlers[*Goal]{
		NewRecord: func() *Goal { return &Goal{} },
		GetID: func(g *Goal) uuid.UUID {
			if g == nil {
				return uuid.Nil
			}
			return g.ID
		},
		SetID: func(g *Goal, id uuid.UUID) {
			if g != nil {
				g.ID = id
			}
		},
		GetIdentifier: func() string { return "" },
	})
	return &goals{Repository: repo, db: db}
}

func (g *goals) ForAccount(ctx context.Context, accountID uuid.UUID) ([]*Goal, error) {
	var records []*Goal
	err := g.db.NewSelect().
		Model(&records).
		Where("?TableAlias.account_id = ?", accountID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list goals")
	}
	return records, nil
}

func (g *goals) GetOwned(ctx context.Context, goalID, accountID uuid.UUID) (*Goal, error) {
	return g.GetOwnedTx(ctx, g.db, goalID, accountID)
}

// GetOwnedTx resolves a goal and checks it belongs to the given account
func (g *goals) GetOwnedTx(ctx context.Context, tx bun.IDB, goalID, accountID uuid.UUID) (*Goal, error) {
	record := &Goal{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", goalID).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrGoalNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve goal")
	}
	if record.AccountID != accountID {
		return nil, ErrWrongGoalOwner
	}
	return record, nil
}

type wallets struct {
	repository.Repository[*WalletLedger]
	db *bun.DB
}

func newWalletsRepository(db *bun.DB) Wallets {
	repo := repository.NewRepository[*WalletLedger](db, repository.ModelHandlers[*WalletLedger]{
		NewRecord: func() *WalletLedger { return &WalletLedger{} },
		GetID: func(w *WalletLedger) uuid.UUID {
			if w == nil {
				return uuid.Nil
			}
			return w.ID
		},
		SetID: func(w *WalletLedger, id uuid.UUID) {
			if w != nil {
				w.ID = id
			}
		},
		GetIdentifier: func() string { return "" },
	})
	return &wallets{Repository: repo, db: db}
}

func (w *wallets) ForAccount(ctx context.Context, accountID uuid.UUID) ([]*WalletLedger, error) {
	var records []*WalletLedger
	err := w.db.NewSelect().
		Model(&records).
		Where("?TableAlias.account_id = ?", accountID).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list wallets")
	}
	return records, nil
}

func (w *wallets) ForGoalTx(ctx context.Context, tx bun.IDB, goalID uuid.UUID) (*WalletLedger, error) {
	record := &WalletLedger{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.goal_id = ?", goalID).
		Where("?TableAlias.status = ?", WalletActive).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrWalletNotFound
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve wallet")
	}
	return record, nil
}

func (w *wallets) BumpWarningsTx(ctx context.Context, tx bun.IDB, walletID uuid.UUID) error {
	_, err := tx.NewUpdate().
		Model((*WalletLedger)(nil)).
		Set("total_warnings = total_warnings + 1").
		Where("id = ?", walletID).
		Exec(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to bump warnings")
	}
	return nil
}

type violations struct {
	repository.Repository[*Violation]
	db *bun.DB
}

func newViolationsRepository(db *bun.DB) Violations {
	repo := repository.NewRepository[*Violation](db, repository.ModelHandlers[*Violation]{
		NewRecord: func() *Violation { return &Violation{} },
		GetID: func(v *Violation) uuid.UUID {
			if v == nil {
				return uuid.Nil
			}
			return v.ID
		},
		SetID: func(v *Violation, id uuid.UUID) {
			if v != nil {
				v.ID = id
			}
		},
		GetIdentifier: func() string { return "" },
	})
	return &violations{Repository: repo, db: db}
}

func (v *violations) ForGoal(ctx context.Context, goalID uuid.UUID) ([]*Violation, error) {
	var records []*Violation
	err := v.db.NewSelect().
		Model(&records).
		Where("?TableAlias.goal_id = ?", goalID).
		Order("recorded_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list violations")
	}
	return records, nil
}

func (v *violations) CountForGoalTx(ctx context.Context, tx bun.IDB, goalID uuid.UUID) (int, error) {
	count, err := tx.NewSelect().
		Model((*Violation)(nil)).
		Where("?TableAlias.goal_id = ?", goalID).
		Count(ctx)
	if err != nil {
		return 0, errors.Wrap(err, errors.CategoryInternal, "failed to count violations")
	}
	return count, nil
}

type transactions struct {
	repository.Repository[*Transaction]
	db *bun.DB
}

func newTransactionsRepository(db *bun.DB) Transactions {
	repo := repository.NewRepository[*Transaction](db, repository.ModelHandlers[*Transaction]{
		NewRecord: func() *Transaction { return &Transaction{} },
		GetID: func(t *Transaction) uuid.UUID {
			if t == nil {
				return uuid.Nil
			}
			return t.ID
		},
		SetID: func(t *Transaction, id uuid.UUID) {
			if t != nil {
				t.ID = id
			}
		},
		GetIdentifier: func() string { return "" },
	})
	return &transactions{Repository: repo, db: db}
}

func (t *transactions) ForAccount(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error) {
	var records []*Transaction
	err := t.db.NewSelect().
		Model(&records).
		Where("?TableAlias.account_id = ?", accountID).
		Order("recorded_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to list transactions")
	}
	return records, nil
}
