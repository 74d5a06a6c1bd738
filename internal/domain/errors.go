package domain

import "errors"

// Sentinel errors shared across repositories and services. Handlers match
// on these with errors.Is to pick response codes.
var (
	ErrFlightNotFound  = errors.New("flight not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrSeatNotFound    = errors.New("seat not found")

	ErrInvalidFlightState  = errors.New("flight is not bookable")
	ErrInvalidTransition   = errors.New("invalid status transition")
	ErrInvalidPaymentState = errors.New("invalid payment state")
	ErrBookingTerminal     = errors.New("booking already terminal")

	ErrInsufficientCapacity = errors.New("not enough available seats")

	ErrDuplicateTransaction  = errors.New("transaction already recorded")
	ErrBookingNumberConflict = errors.New("booking number conflict")
	ErrAlreadyFinalized      = errors.New("booking already finalized")

	ErrValidation = errors.New("invalid request")
)
