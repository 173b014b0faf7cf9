package database

import "errors"

var (
	ErrBookingNotFound  = errors.New("booking not found")
	ErrStatusTransition = errors.New("booking is not pending")
	ErrInvalidStatus    = errors.New("invalid booking status")
)
