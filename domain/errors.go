package domain

import "errors"

// Store-level errors. Callers distinguish "your move was invalid" (game
// package sentinels) from "the store failed" (UnexpectedDatabaseError wraps).
var (
	ErrRoomNotFound         = errors.New("room-not-found")
	ErrRoomExists           = errors.New("room-exists")
	UnexpectedDatabaseError = errors.New("database-error")
)

var (
	ErrDuplicateUsername = errors.New("duplicate-username")
	ErrUserNotFound      = errors.New("user-not-found")
)

var HashingError = errors.New("hashing-error")

var (
	UnexpectedTokenGenerationError   = errors.New("token-generation-error")
	UnexpectedTokenVerificationError = errors.New("token-verification-error")
	ErrInvalidSigningAlg             = errors.New("invalid-signing-alg")
	ErrExpiredToken                  = errors.New("expired-token")
	ErrInvalidTokenSignature         = errors.New("invalid-token-signature")
	ErrCorruptedToken                = errors.New("corrupted-token")
)
