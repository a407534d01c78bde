// Package auth implements the account and session model for the backend:
// accounts with a fixed role (individual, parent, child), sliding-expiry JWT
// session tokens, and session establishment from an externally verified
// identity credential.
//
// Parent accounts are limited to a single active session. Each parent login
// rotates an opaque session marker stored on the account; tokens embed the
// marker and any token carrying a stale marker is rejected.
package auth
