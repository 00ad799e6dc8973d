// Package common defines shared constants and sentinel errors used across
// the vault's layers. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Authorization errors.
	ErrorForbidden = errors.New("access denied or permission expired")
	ErrorNotOwner  = errors.New("not the document owner")

	// Grant-creation input errors.
	ErrorSelfShare       = errors.New("cannot share a document with its owner")
	ErrorViewerNotFound  = errors.New("no user with this email")
	ErrorInvalidDuration = errors.New("share duration must be positive")

	// Document metadata errors.
	ErrorInvalidName = errors.New("file extension cannot change")

	// Crypto errors. ErrorIntegrity means the authentication tag did not
	// verify: the ciphertext, IV, tag or wrapped key was tampered with or
	// corrupted. It must stay distinguishable from NotFound and Forbidden.
	ErrorIntegrity    = errors.New("integrity check failed: document may be corrupted or tampered with")
	ErrorCryptoConfig = errors.New("invalid master key configuration")

	// Blob store unavailable, or inconsistent with document metadata.
	ErrorStorage = errors.New("blob storage error")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
