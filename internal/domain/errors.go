package domain

import "errors"

var (
	ErrValidation    = errors.New("missing or invalid required field")
	ErrOrderNotFound = errors.New("order not found")
	ErrConflict      = errors.New("order already reached a terminal status")

	// ErrRaceLost marks a conditioned write that found its row already
	// mutated by a concurrent cycle or amendment. Expected outcome, not
	// an alarm.
	ErrRaceLost = errors.New("conditioned write lost a race")
)
