package ledger

import "github.com/goliatone/go-errors"

const (
	TextCodeGoalNotFound    = "ledger_goal_not_found"
	TextCodeWalletNotFound  = "ledger_wallet_not_found"
	TextCodeGoalInactive    = "ledger_goal_inactive"
	TextCodeInvalidPayload  = "ledger_invalid_payload"
	TextCodeWrongGoalOwner  = "ledger_wrong_goal_owner"
)

var (
	// ErrGoalNotFound means the referenced goal does not exist
	ErrGoalNotFound = errors.New("goal not found", errors.CategoryNotFound).
			WithTextCode(TextCodeGoalNotFound)

	// ErrWalletNotFound means no wallet entry exists for the goal
	ErrWalletNotFound = errors.New("wallet not found", errors.CategoryNotFound).
				WithTextCode(TextCodeWalletNotFound)

	// ErrGoalInactive rejects deposits and violations against a goal that is
	// completed or cancelled
	ErrGoalInactive = errors.New("goal is not active", errors.CategoryConflict).
			WithTextCode(TextCodeGoalInactive)

	// ErrWrongGoalOwner rejects operations on a goal owned by another account
	ErrWrongGoalOwner = errors.New("goal belongs to another account", errors.CategoryAuthz).
				WithTextCode(TextCodeWrongGoalOwner)
)
