package repository

import "errors"

var (
	// ErrInvalidImageURL indicates an invalid sheet image URL
	ErrInvalidImageURL = errors.New("invalid sheet image URL")

	// ErrResultNotFound indicates the grading result was not found
	ErrResultNotFound = errors.New("grading result not found")

	// ErrBatchNotFound indicates the batch session was not found
	ErrBatchNotFound = errors.New("batch session not found")
)
