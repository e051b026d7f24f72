package api

import "errors"

// Caller-visible error kinds. Handlers translate these into HTTP responses;
// none of them should ever crash the process.
var (
	// ErrInvalidCredentials covers both an unknown identifier and a wrong
	// password. The two cases are deliberately indistinguishable so that
	// login responses cannot be used to enumerate accounts.
	ErrInvalidCredentials = errors.New("incorrect username or password")

	// ErrUsernameTaken and ErrEmailTaken report registration conflicts.
	// When both fields collide with an existing record, the username wins.
	ErrUsernameTaken = errors.New("username already exists")
	ErrEmailTaken    = errors.New("email already exists")

	// ErrInvalidToken is returned for a bad signature or undecodable payload,
	// ErrExpiredToken when the current time is at or past the embedded expiry.
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")

	// ErrUserNotFound means a token verified fine but its subject no longer
	// resolves to a record.
	ErrUserNotFound = errors.New("user not found")
)
