package linking

import "github.com/goliatone/go-errors"

const (
	TextCodeGenerateForbidden = "linking_generate_forbidden"
	TextCodeRedeemForbidden   = "linking_redeem_forbidden"
	TextCodeAlreadyLinked     = "linking_already_linked"
	TextCodeMissingCode       = "linking_missing_code"
	TextCodeMalformedQR       = "linking_malformed_qr"
	TextCodeInvalidCode       = "linking_invalid_or_expired_code"
	TextCodeParentNotFound    = "linking_parent_not_found"
	TextCodeNotLinked         = "linking_not_linked"
	TextCodeSpaceExhausted    = "linking_code_space_exhausted"
)

// ErrOnlyParentsGenerate is returned when a non-parent asks for a linking code.
var ErrOnlyParentsGenerate = errors.New("only parents can generate linking codes", errors.CategoryAuth).
	WithTextCode(TextCodeGenerateForbidden).
	WithCode(errors.CodeForbidden)

// ErrParentsCannotRedeem is returned when a parent tries to redeem a code.
var ErrParentsCannotRedeem = errors.New("parents cannot use linking codes", errors.CategoryAuth).
	WithTextCode(TextCodeRedeemForbidden).
	WithCode(errors.CodeForbidden)

// ErrAlreadyLinked is returned when the redeemer already has a parent reference.
var ErrAlreadyLinked = errors.New("already linked to a parent", errors.CategoryValidation).
	WithTextCode(TextCodeAlreadyLinked).
	WithCode(errors.CodeBadRequest)

// ErrMissingCode is returned when neither a code nor a QR payload is supplied.
var ErrMissingCode = errors.New("code or QR data required", errors.CategoryBadInput).
	WithTextCode(TextCodeMissingCode).
	WithCode(errors.CodeBadRequest)

// ErrMalformedQRPayload is returned when a QR payload does not split into
// exactly parent id and code.
var ErrMalformedQRPayload = errors.New("invalid QR code format", errors.CategoryBadInput).
	WithTextCode(TextCodeMalformedQR).
	WithCode(errors.CodeBadRequest)

// ErrInvalidOrExpiredCode covers unknown, already-consumed and expired codes
// uniformly so callers cannot probe which case they hit.
var ErrInvalidOrExpiredCode = errors.New("invalid or expired linking code", errors.CategoryNotFound).
	WithTextCode(TextCodeInvalidCode).
	WithCode(errors.CodeNotFound)

// ErrParentNotFound is returned when a code's owning parent no longer exists.
var ErrParentNotFound = errors.New("parent not found", errors.CategoryNotFound).
	WithTextCode(TextCodeParentNotFound).
	WithCode(errors.CodeNotFound)

// ErrNotLinked is returned when a child-only lookup finds no parent reference.
var ErrNotLinked = errors.New("no parent linked", errors.CategoryNotFound).
	WithTextCode(TextCodeNotLinked).
	WithCode(errors.CodeNotFound)

// ErrCodeSpaceExhausted is returned when generation exhausts its retry
// budget. Practically unreachable at 6-digit cardinality.
var ErrCodeSpaceExhausted = errors.New("could not allocate a unique linking code", errors.CategoryInternal).
	WithTextCode(TextCodeSpaceExhausted)
