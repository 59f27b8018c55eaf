package smp

import "errors"

var (
	ErrRatingNotNumber  = errors.New("rating is not a number")
	ErrRatingOutOfRange = errors.New("rating out of range")
)
