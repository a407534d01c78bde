package ledger

import (
	"context"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/guilteater/backend/auth"
)

// Service runs the ledger workflows: goal creation, stake deposits,
// violation bookkeeping and transaction history.
type Service struct {
	store  Store
	tx     repository.TransactionManager
	logger auth.Logger
	nowFn  func() time.Time
}

type ServiceOption func(*Service)

func WithLogger(logger auth.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.nowFn = now
		}
	}
}

func NewService(store Store, tx repository.TransactionManager, opts ...ServiceOption) *Service {
	s := &Service{
		store:  store,
		tx:     tx,
		logger: nopLogger{},
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// GoalInput is the payload for creating a goal
type GoalInput struct {
	AppName           string     `json:"app_name"`
	DailyLimitMinutes int        `json:"daily_limit_minutes"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	EndDate           *time.Time `json:"end_date,omitempty"`
	MaxWarnings       int        `json:"max_warnings"`
	PenaltyPercent    float64    `json:"penalty_percent"`
}

func (i GoalInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.AppName, validation.Required, validation.Length(1, 200)),
		validation.Field(&i.DailyLimitMinutes, validation.Required, validation.Min(1), validation.Max(24*60)),
		validation.Field(&i.MaxWarnings, validation.Min(0), validation.Max(100)),
		validation.Field(&i.PenaltyPercent, validation.Min(0.0), validation.Max(100.0)),
	)
}

// DepositInput stakes money against a goal
type DepositInput struct {
	GoalID     uuid.UUID `json:"goal_id"`
	Amount     float64   `json:"amount"`
	PaymentRef string    `json:"payment_ref,omitempty"`
}

func (i DepositInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.GoalID, validation.Required, validation.By(requireUUID)),
		validation.Field(&i.Amount, validation.Required, validation.Min(0.01)),
		validation.Field(&i.PaymentRef, validation.Length(0, 200)),
	)
}

// ViolationInput reports a limit breach for a goal. Whether a penalty was
// taken, and how much, is decided by the reporting client; the service only
// records it.
type ViolationInput struct {
	GoalID         uuid.UUID `json:"goal_id"`
	AppName        string    `json:"app_name"`
	UsedMinutes    int       `json:"used_minutes"`
	PenaltyApplied bool      `json:"penalty_applied"`
	PenaltyAmount  float64   `json:"penalty_amount"`
}

func (i ViolationInput) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.GoalID, validation.Required, validation.By(requireUUID)),
		validation.Field(&i.AppName, validation.Required, validation.Length(1, 200)),
		validation.Field(&i.UsedMinutes, validation.Required, validation.Min(1)),
		validation.Field(&i.PenaltyAmount, validation.Min(0.0)),
	)
}

func requireUUID(value any) error {
	id, ok := value.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return errors.New("must be a valid id", errors.CategoryValidation)
	}
	return nil
}

// CreateGoal registers a new screen-time goal for the account
func (s *Service) CreateGoal(ctx context.Context, account *auth.Account, input GoalInput) (*Goal, error) {
	if err := input.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	now := s.nowFn()
	goal := &Goal{
		ID:                uuid.New(),
		AccountID:         account.ID,
		AppName:           input.AppName,
		DailyLimitMinutes: input.DailyLimitMinutes,
		StartDate:         input.StartDate,
		EndDate:           input.EndDate,
		MaxWarnings:       input.MaxWarnings,
		PenaltyPercent:    input.PenaltyPercent,
		Status:            GoalActive,
		CreatedAt:         &now,
	}
	if goal.MaxWarnings == 0 {
		goal.MaxWarnings = 2
	}
	if goal.PenaltyPercent == 0 {
		goal.PenaltyPercent = 10.0
	}

	created, err := s.store.Goals().Create(ctx, goal)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create goal")
	}

	s.logger.Info("goal created", "goal_id", created.ID.String(), "app", created.AppName)
	return created, nil
}

func (s *Service) ListGoals(ctx context.Context, accountID uuid.UUID) ([]*Goal, error) {
	return s.store.Goals().ForAccount(ctx, accountID)
}

// Deposit stakes funds against a goal. The first deposit opens the wallet
// entry, later ones top up its balance. The wallet write and the deposit
// transaction commit together.
func (s *Service) Deposit(ctx context.Context, account *auth.Account, input DepositInput) (*WalletLedger, error) {
	if err := input.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	now := s.nowFn()
	var wallet *WalletLedger

	err := s.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		goal, err := s.store.Goals().GetOwnedTx(ctx, tx, input.GoalID, account.ID)
		if err != nil {
			return err
		}
		if goal.Status != GoalActive {
			return ErrGoalInactive
		}

		existing, err := s.store.Wallets().ForGoalTx(ctx, tx, goal.ID)
		switch {
		case err == nil:
			_, uerr := tx.NewUpdate().
				Model((*WalletLedger)(nil)).
				Set("deposit_amount = deposit_amount + ?", input.Amount).
				Set("current_balance = current_balance + ?", input.Amount).
				Where("id = ?", existing.ID).
				Exec(ctx)
			if uerr != nil {
				return errors.Wrap(uerr, errors.CategoryInternal, "failed to top up wallet")
			}
			existing.DepositAmount += input.Amount
			existing.CurrentBalance += input.Amount
			wallet = existing
		case errors.Is(err, ErrWalletNotFound):
			record := &WalletLedger{
				ID:             uuid.New(),
				AccountID:      account.ID,
				GoalID:         goal.ID,
				DepositAmount:  input.Amount,
				CurrentBalance: input.Amount,
				Status:         WalletActive,
				CreatedAt:      &now,
			}
			created, cerr := s.store.Wallets().CreateTx(ctx, tx, record)
			if cerr != nil {
				return errors.Wrap(cerr, errors.CategoryInternal, "failed to open wallet")
			}
			wallet = created
		default:
			return err
		}

		entry := &Transaction{
			ID:         uuid.New(),
			AccountID:  account.ID,
			GoalID:     &goal.ID,
			WalletID:   &wallet.ID,
			PaymentRef: input.PaymentRef,
			Type:       TransactionDeposit,
			Amount:     input.Amount,
			Status:     TransactionSuccess,
			RecordedAt: &now,
		}
		if _, err := s.store.Transactions().CreateTx(ctx, tx, entry); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to record deposit")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("deposit recorded", "wallet_id", wallet.ID.String(), "amount", input.Amount)
	return wallet, nil
}

func (s *Service) ListWallets(ctx context.Context, accountID uuid.UUID) ([]*WalletLedger, error) {
	return s.store.Wallets().ForAccount(ctx, accountID)
}

// RecordViolation books a limit breach against a goal and bumps the wallet's
// warning counter in the same commit. The violation row, the warning number
// and the wallet update stay consistent under concurrent reports.
func (s *Service) RecordViolation(ctx context.Context, account *auth.Account, input ViolationInput) (*Violation, error) {
	if err := input.Validate(); err != nil {
		return nil, wrapValidation(err)
	}

	now := s.nowFn()
	var violation *Violation

	err := s.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		goal, err := s.store.Goals().GetOwnedTx(ctx, tx, input.GoalID, account.ID)
		if err != nil {
			return err
		}
		if goal.Status != GoalActive {
			return ErrGoalInactive
		}

		wallet, err := s.store.Wallets().ForGoalTx(ctx, tx, goal.ID)
		if err != nil {
			return err
		}

		prior, err := s.store.Violations().CountForGoalTx(ctx, tx, goal.ID)
		if err != nil {
			return err
		}

		violation = &Violation{
			ID:             uuid.New(),
			AccountID:      account.ID,
			GoalID:         goal.ID,
			AppName:        input.AppName,
			UsedMinutes:    input.UsedMinutes,
			LimitMinutes:   goal.DailyLimitMinutes,
			WarningNumber:  prior + 1,
			PenaltyApplied: input.PenaltyApplied,
			PenaltyAmount:  input.PenaltyAmount,
			RecordedAt:     &now,
		}

		if err := s.store.Wallets().BumpWarningsTx(ctx, tx, wallet.ID); err != nil {
			return err
		}

		if _, err := s.store.Violations().CreateTx(ctx, tx, violation); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to record violation")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("violation recorded",
		"goal_id", input.GoalID.String(),
		"warning_number", violation.WarningNumber)
	return violation, nil
}

func (s *Service) ListViolations(ctx context.Context, account *auth.Account, goalID uuid.UUID) ([]*Violation, error) {
	if _, err := s.store.Goals().GetOwned(ctx, goalID, account.ID); err != nil {
		return nil, err
	}
	return s.store.Violations().ForGoal(ctx, goalID)
}

func (s *Service) ListTransactions(ctx context.Context, accountID uuid.UUID) ([]*Transaction, error) {
	return s.store.Transactions().ForAccount(ctx, accountID)
}

func wrapValidation(err error) error {
	return errors.Wrap(err, errors.CategoryValidation, "invalid payload").
		WithTextCode(TextCodeInvalidPayload)
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
