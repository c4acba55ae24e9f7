package repository

import "errors"

var (
	// ErrAlreadyReferred means the user's referred_by was set concurrently.
	ErrAlreadyReferred = errors.New("user already referred")
	// ErrStaleState means a conditional update matched no row because the
	// row left the expected status.
	ErrStaleState = errors.New("row is no longer in the expected state")
)
