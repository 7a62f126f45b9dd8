package service

import "errors"

var (
	// ErrAlreadyTerminal is returned for transitions attempted on a
	// completed or cancelled reminder.
	ErrAlreadyTerminal = errors.New("service: reminder already completed or cancelled")
	// ErrInvalidInput covers bad request fields outside the recurrence
	// config (recurrence problems come back as recurrence.ErrConfig).
	ErrInvalidInput = errors.New("service: invalid input")
	// ErrNotPending is returned when a pending-only operation, such as
	// editing the recurrence policy, hits a reminder in another state.
	ErrNotPending = errors.New("service: reminder is not pending")
)
