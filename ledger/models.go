package ledger

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type GoalStatus string

const (
	GoalActive    GoalStatus = "active"
	GoalCompleted GoalStatus = "completed"
	GoalCancelled GoalStatus = "cancelled"
)

type WalletStatus string

const (
	WalletActive    WalletStatus = "active"
	WalletCompleted WalletStatus = "completed"
	WalletWithdrawn WalletStatus = "withdrawn"
)

type TransactionType string

const (
	TransactionDeposit    TransactionType = "deposit"
	TransactionPenalty    TransactionType = "penalty"
	TransactionWithdrawal TransactionType = "withdrawal"
)

type TransactionStatus string

const (
	TransactionPending TransactionStatus = "pending"
	TransactionSuccess TransactionStatus = "success"
	TransactionFailed  TransactionStatus = "failed"
)

// Goal is a daily screen-time limit for a single app
type Goal struct {
	bun.BaseModel `bun:"table:goals,alias:gl"`

	ID                uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	AccountID         uuid.UUID  `bun:"account_id,notnull" json:"account_id"`
	AppName           string     `bun:"app_name,notnull" json:"app_name"`
	DailyLimitMinutes int        `bun:"daily_limit_minutes,notnull" json:"daily_limit_minutes"`
	StartDate         *time.Time `bun:"start_date,nullzero" json:"start_date,omitempty"`
	EndDate           *time.Time `bun:"end_date,nullzero" json:"end_date,omitempty"`
	MaxWarnings       int        `bun:"max_warnings,notnull,default:2" json:"max_warnings"`
	PenaltyPercent    float64    `bun:"penalty_percent,notnull,default:10" json:"penalty_percent"`
	Status            GoalStatus `bun:"status,notnull,default:'active'" json:"status"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// WalletLedger holds the stake backing a goal and its running balance
type WalletLedger struct {
	bun.BaseModel `bun:"table:wallet_ledger,alias:wl"`

	ID             uuid.UUID    `bun:"id,pk,notnull" json:"id"`
	AccountID      uuid.UUID    `bun:"account_id,notnull" json:"account_id"`
	GoalID         uuid.UUID    `bun:"goal_id,notnull" json:"goal_id"`
	DepositAmount  float64      `bun:"deposit_amount,notnull" json:"deposit_amount"`
	CurrentBalance float64      `bun:"current_balance,notnull" json:"current_balance"`
	TotalPenalty   float64      `bun:"total_penalty,notnull,default:0" json:"total_penalty"`
	TotalWarnings  int          `bun:"total_warnings,notnull,default:0" json:"total_warnings"`
	Status         WalletStatus `bun:"status,notnull,default:'active'" json:"status"`
	CreatedAt      *time.Time   `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
}

// Violation records a single breach of a goal's daily limit
type Violation struct {
	bun.BaseModel `bun:"table:violations,alias:vi"`

	ID             uuid.UUID  `bun:"id,pk,notnull" json:"id"`
	AccountID      uuid.UUID  `bun:"account_id,notnull" json:"account_id"`
	GoalID         uuid.UUID  `bun:"goal_id,notnull" json:"goal_id"`
	AppName        string     `bun:"app_name,notnull" json:"app_name"`
	UsedMinutes    int        `bun:"used_minutes,notnull" json:"used_minutes"`
	LimitMinutes   int        `bun:"limit_minutes,notnull" json:"limit_minutes"`
	WarningNumber  int        `bun:"warning_number,notnull" json:"warning_number"`
	PenaltyApplied bool       `bun:"penalty_applied,notnull,default:false" json:"penalty_applied"`
	PenaltyAmount  float64    `bun:"penalty_amount,notnull,default:0" json:"penalty_amount"`
	RecordedAt     *time.Time `bun:"recorded_at,nullzero,default:current_timestamp" json:"recorded_at,omitempty"`
}

// Transaction records a movement of funds against an account
type Transaction struct {
	bun.BaseModel `bun:"table:transactions,alias:tr"`

	ID          uuid.UUID         `bun:"id,pk,notnull" json:"id"`
	AccountID   uuid.UUID         `bun:"account_id,notnull" json:"account_id"`
	GoalID      *uuid.UUID        `bun:"goal_id,nullzero" json:"goal_id,omitempty"`
	WalletID    *uuid.UUID        `bun:"wallet_id,nullzero" json:"wallet_id,omitempty"`
	PaymentRef  string            `bun:"payment_ref,nullzero" json:"payment_ref,omitempty"`
	Type        TransactionType   `bun:"type,notnull" json:"type"`
	Amount      float64           `bun:"amount,notnull" json:"amount"`
	Status      TransactionStatus `bun:"status,notnull,default:'pending'" json:"status"`
	RecordedAt  *time.Time        `bun:"recorded_at,nullzero,default:current_timestamp" json:"recorded_at,omitempty"`
}
