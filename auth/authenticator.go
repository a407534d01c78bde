package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Auther exchanges external identity credentials for session tokens
type Auther struct {
	verifier IdentityVerifier
	repo     RepositoryManager
	tokens   TokenService
	logger   Logger
	markerFn func() string
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(verifier IdentityVerifier, repo RepositoryManager, cfg Config) *Auther {
	tokens := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenIdleWindow(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		verifier: verifier,
		repo:     repo,
		tokens:   tokens,
		logger:   defLogger{},
		markerFn: uuid.NewString,
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService swaps the token service used for issuance
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokens
}

// ExchangeCredential verifies an external identity credential and issues a
// session token for the matching account, creating the account on first
// sight. The first-seen role is sticky: presenting the same identity under a
// different role fails with ErrRoleConflict and never mutates the stored
// role. Parent logins rotate the account's session marker, which immediately
// invalidates tokens from any previous parent session.
func (s *Auther) ExchangeCredential(ctx context.Context, credential string, role Role) (string, *Account, error) {
	if credential == "" {
		return "", nil, ErrMissingCredential
	}
	if !role.IsValid() {
		return "", nil, ErrInvalidRole
	}

	identity, err := s.verifier.VerifyCredential(ctx, credential)
	if err != nil {
		s.logger.Warn("credential verification failed", "error", err)
		return "", nil, ErrInvalidCredential
	}

	if identity == nil || identity.Email == "" {
		return "", nil, ErrMissingEmail
	}

	account, err := s.resolveAccount(ctx, identity, role)
	if err != nil {
		return "", nil, err
	}

	marker := ""
	if account.Role == RoleParent {
		marker = s.markerFn()
		err := s.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
			return s.repo.Accounts().RotateSessionMarkerTx(ctx, tx, account.ID, marker)
		})
		if err != nil {
			return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to replace parent session")
		}
		account.SessionMarker = marker
		s.logger.Info("parent session replaced", "account_id", account.ID.String())
	}

	token, err := s.tokens.Issue(account.ID.String(), marker)
	if err != nil {
		return "", nil, err
	}

	return token, account, nil
}

func (s *Auther) resolveAccount(ctx context.Context, identity *VerifiedIdentity, role Role) (*Account, error) {
	account, err := s.repo.Accounts().GetByEmail(ctx, identity.Email)
	if err == nil {
		if account.Role != role {
			s.logger.Warn("role conflict on token exchange",
				"email", identity.Email,
				"stored_role", account.Role,
				"requested_role", role,
			)
			return nil, ErrRoleConflict
		}
		return account, nil
	}

	if !repository.IsRecordNotFound(err) {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to look up account")
	}

	record := &Account{
		Email:   identity.Email,
		Name:    identity.Name,
		Picture: identity.Picture,
		Role:    role,
	}

	created, err := s.repo.Accounts().Register(ctx, record)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	s.logger.Info("account created", "account_id", created.ID.String(), "role", created.Role)
	return created, nil
}
