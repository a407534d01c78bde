package auth

import "github.com/goliatone/go-errors"

const (
	TextCodeUnauthenticated   = "auth_unauthenticated"
	TextCodeTokenExpired      = "auth_token_expired"
	TextCodeTokenMalformed    = "auth_token_malformed"
	TextCodeTokenRevoked      = "auth_token_revoked"
	TextCodeAccountNotFound   = "auth_account_not_found"
	TextCodeMissingCredential = "auth_missing_credential"
	TextCodeInvalidCredential = "auth_invalid_credential"
	TextCodeMissingEmail      = "auth_missing_email"
	TextCodeRoleConflict      = "auth_role_conflict"
	TextCodeInvalidRole       = "auth_invalid_role"
	TextCodeAccountLinked     = "auth_account_linked"
)

// ErrUnauthenticated is returned when a protected request carries no credential.
var ErrUnauthenticated = errors.New("not authenticated", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthenticated).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned when a session token is past its idle window.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned when a token fails structural or signature checks.
var ErrTokenMalformed = errors.New("invalid or malformed token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrTokenRevoked is returned when a parent token carries a stale session marker.
var ErrTokenRevoked = errors.New("session superseded by a newer login", errors.CategoryAuth).
	WithTextCode(TextCodeTokenRevoked).
	WithCode(errors.CodeUnauthorized)

// ErrAccountNotFound is returned when a valid token references a deleted account.
var ErrAccountNotFound = errors.New("account not found", errors.CategoryAuth).
	WithTextCode(TextCodeAccountNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrMissingCredential is returned when the token exchange payload has no credential.
var ErrMissingCredential = errors.New("credential required", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingCredential).
	WithCode(errors.CodeBadRequest)

// ErrInvalidCredential is returned when identity-provider verification fails.
var ErrInvalidCredential = errors.New("invalid identity credential", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCredential).
	WithCode(errors.CodeBadRequest)

// ErrMissingEmail is returned when a verified credential carries no email claim.
var ErrMissingEmail = errors.New("email not present in credential", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingEmail).
	WithCode(errors.CodeBadRequest)

// ErrRoleConflict is returned when an identity is re-used under a different role.
var ErrRoleConflict = errors.New("account already registered under a different role", errors.CategoryAuth).
	WithTextCode(TextCodeRoleConflict).
	WithCode(errors.CodeForbidden)

// ErrAccountLinked is returned by the store when a link write finds the
// account already carrying a parent reference.
var ErrAccountLinked = errors.New("account already has a parent reference", errors.CategoryConflict).
	WithTextCode(TextCodeAccountLinked).
	WithCode(errors.CodeConflict)

// ErrInvalidRole is returned when the requested role is outside the closed set.
var ErrInvalidRole = errors.New("invalid role, must be individual, parent or child", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidRole).
	WithCode(errors.CodeBadRequest)
