package bmi

import "errors"

// Error definitions for the bmi package.
var (
	ErrNotFound          = errors.New("model not found in registry")
	ErrAlreadyRegistered = errors.New("model is already registered in the registry")

	ErrNotInitialized     = errors.New("model has not been initialized")
	ErrAlreadyInitialized = errors.New("model is already initialized")
	ErrFinalized          = errors.New("model has been finalized")

	// ErrEndOfModelTime reports that the model clock has reached EndTime;
	// it is the defined end-of-run indicator, not a failure.
	ErrEndOfModelTime = errors.New("model has reached the end of its time horizon")

	ErrUnknownVar      = errors.New("unknown variable name")
	ErrReadOnlyVar     = errors.New("variable cannot be set")
	ErrUnknownGrid     = errors.New("unknown grid identifier")
	ErrSizeMismatch    = errors.New("buffer length does not match variable size")
	ErrIndexOutOfRange = errors.New("grid index out of range")
	ErrNotSupported    = errors.New("operation not supported by this model")
)
