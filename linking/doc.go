// Package linking implements one-time parent/child linking codes: 6-digit
// numeric credentials a parent shares (directly or as a QR payload) so a
// child account can attach itself to the parent.
//
// A parent holds at most one active code at a time; generation is idempotent
// while a code is valid. Redemption consumes the code exactly once inside a
// single transaction that also records the parent reference and forces the
// redeemer's role to child. Codes are never deleted; consumed and expired
// rows remain as an audit trail.
package linking
