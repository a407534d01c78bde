package linking

import (
	"context"
	"crypto/rand"
	"math/big"
	"strings"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/guilteater/backend/auth"
)

// maxMintAttempts bounds the generate-retry loop against the store's
// uniqueness guard. At 6-digit cardinality collisions are vanishingly rare.
const maxMintAttempts = 10

// Registry generates, stores and redeems one-time linking codes
type Registry struct {
	codes    Codes
	accounts auth.Accounts
	tx       repository.TransactionManager
	logger   auth.Logger
	nowFn    func() time.Time
}

// RegistryOption configures a Registry
type RegistryOption func(*Registry)

func WithLogger(logger auth.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source. Test hook.
func WithClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		if now != nil {
			r.nowFn = now
		}
	}
}

func NewRegistry(codes Codes, accounts auth.Accounts, tx repository.TransactionManager, opts ...RegistryOption) *Registry {
	r := &Registry{
		codes:    codes,
		accounts: accounts,
		tx:       tx,
		logger:   noopLogger{},
		nowFn:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// GenerateResult is what a parent receives when asking for a linking code
type GenerateResult struct {
	Code       string    `json:"code"`
	ParentID   uuid.UUID `json:"parent_id"`
	ParentName string    `json:"parent_name"`
	ExpiresAt  time.Time `json:"expires_at"`
	QRData     string    `json:"qr_data"`
}

// RedeemInput carries either a raw code or a QR payload
type RedeemInput struct {
	Code   string `json:"code"`
	QRData string `json:"qr_data"`
}

// RedeemResult describes an established parent/child link
type RedeemResult struct {
	ParentName  string    `json:"parent_name"`
	ParentEmail string    `json:"parent_email"`
	ChildName   string    `json:"child_name"`
	ChildEmail  string    `json:"child_email"`
	LinkedAt    time.Time `json:"linked_at"`
}

// Generate returns the parent's shareable linking code. While a previously
// minted code is still unconsumed and unexpired the same code is returned
// again, so the shareable code stays stable during its validity window.
func (r *Registry) Generate(ctx context.Context, parent *auth.Account) (*GenerateResult, error) {
	if parent == nil || !parent.Role.CanGenerateLinkingCodes() {
		return nil, ErrOnlyParentsGenerate
	}

	now := r.nowFn()

	existing, err := r.codes.ActiveForParent(ctx, parent.ID, now)
	if err == nil {
		return r.result(parent, existing), nil
	}
	if !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up active linking code")
	}

	// An expired unconsumed code still occupies the parent's live slot in
	// the store; clear it before minting a replacement.
	if err := r.codes.PurgeExpired(ctx, parent.ID, now); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxMintAttempts; attempt++ {
		code, err := randomCode()
		if err != nil {
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to draw random code")
		}

		// Covers consumed-but-unexpired values the insert guard cannot see.
		inUse, err := r.codes.ValueInUse(ctx, code, now)
		if err != nil {
			return nil, err
		}
		if inUse {
			continue
		}

		record := &LinkingCode{
			ParentID:  parent.ID,
			Code:      code,
			CreatedAt: &now,
			ExpiresAt: now.Add(ExpiryWindow),
		}

		created, err := r.codes.Mint(ctx, record)
		if err != nil {
			if isUniqueViolation(err) {
				// Either the code value collided or a concurrent generate
				// for this parent won the one-live-code slot. In the
				// latter case return the winner's code.
				if winner, lookupErr := r.codes.ActiveForParent(ctx, parent.ID, now); lookupErr == nil {
					return r.result(parent, winner), nil
				}
				r.logger.Debug("linking code collided at insert, retrying", "attempt", attempt)
				continue
			}
			return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist linking code")
		}

		r.logger.Info("linking code minted", "parent_id", parent.ID.String(), "expires_at", created.ExpiresAt)
		return r.result(parent, created), nil
	}

	r.logger.Error("linking code generation exhausted retry budget", "parent_id", parent.ID.String())
	return nil, ErrCodeSpaceExhausted
}

// Redeem consumes a linking code on behalf of a non-parent account and
// attaches the account to the code's owning parent. The consume flag, the
// parent reference and the role transition commit as one transaction; no
// intermediate state is ever observable.
func (r *Registry) Redeem(ctx context.Context, account *auth.Account, input RedeemInput) (*RedeemResult, error) {
	if account == nil || account.Role == auth.RoleParent {
		return nil, ErrParentsCannotRedeem
	}
	if account.IsLinked() {
		return nil, ErrAlreadyLinked
	}

	code, err := resolveCode(input)
	if err != nil {
		return nil, err
	}

	now := r.nowFn()
	var (
		result   *RedeemResult
		parentID uuid.UUID
	)

	err = r.tx.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		consumed, err := r.codes.ConsumeTx(ctx, tx, code, account.ID, now)
		if err != nil {
			return err
		}

		parent, err := r.accounts.FetchByIDTx(ctx, tx, consumed.ParentID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrParentNotFound
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to resolve code owner")
		}

		// The store refuses the write when the row already carries a
		// parent reference, so a stale snapshot of the account cannot
		// overwrite an existing link. Failing here rolls the consume back.
		if err := r.accounts.LinkToParentTx(ctx, tx, account.ID, parent.ID); err != nil {
			if errors.Is(err, auth.ErrAccountLinked) {
				return ErrAlreadyLinked
			}
			return err
		}

		parentID = parent.ID
		result = &RedeemResult{
			ParentName:  parent.Name,
			ParentEmail: parent.Email,
			ChildName:   account.Name,
			ChildEmail:  account.Email,
			LinkedAt:    now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	account.ParentID = &parentID
	account.Role = auth.RoleChild

	r.logger.Info("linking code redeemed", "child_id", account.ID.String())
	return result, nil
}

func (r *Registry) result(parent *auth.Account, code *LinkingCode) *GenerateResult {
	return &GenerateResult{
		Code:       code.Code,
		ParentID:   parent.ID,
		ParentName: parent.Name,
		ExpiresAt:  code.ExpiresAt,
		QRData:     EncodeQRPayload(parent.ID.String(), code.Code),
	}
}

func resolveCode(input RedeemInput) (string, error) {
	if input.QRData != "" {
		_, code, err := ParseQRPayload(input.QRData)
		if err != nil {
			return "", err
		}
		return code, nil
	}
	if input.Code == "" {
		return "", ErrMissingCode
	}
	return input.Code, nil
}

// randomCode draws each digit uniformly at random
func randomCode() (string, error) {
	var sb strings.Builder
	sb.Grow(CodeLength)
	for i := 0; i < CodeLength; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		sb.WriteByte(byte('0' + n.Int64()))
	}
	return sb.String(), nil
}

// isUniqueViolation matches the unique-index error of both supported
// dialects (Postgres in production, SQLite in tests).
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "23505") ||
		strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
