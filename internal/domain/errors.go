package domain

import "errors"

var (
	// ErrEmptyInput is returned when a quantity string is blank
	ErrEmptyInput = errors.New("empty quantity string")

	// ErrInvalidFormat is returned when a quantity string matches no accepted grammar
	ErrInvalidFormat = errors.New("invalid quantity format")

	// ErrZeroDenominator is returned for an explicit "/0" or a stored denominator of 0
	ErrZeroDenominator = errors.New("denominator cannot be zero")

	// ErrDivisionByZero is returned when a quantity is divided by zero
	ErrDivisionByZero = errors.New("cannot divide by zero")

	// ErrUnknownUnit is returned when a unit is in neither conversion table
	ErrUnknownUnit = errors.New("unknown unit")

	// ErrCrossFamilyConversion is returned when converting between volume and mass
	ErrCrossFamilyConversion = errors.New("cannot convert between volume and mass units")

	// ErrFractionNotSupported is returned by the decimal input mode for fraction syntax
	ErrFractionNotSupported = errors.New("fraction format not supported, use decimal format (e.g. \"1.5\" instead of \"1 1/2\")")

	// ErrQuantityOutOfRange is returned by the decimal input mode for values outside
	// [0.01, 9999.99] or with more than 2 decimal places, and by arithmetic whose
	// result does not fit in int64
	ErrQuantityOutOfRange = errors.New("quantity out of range")

	// ErrInvalidServings is returned when a recipe has no usable default serving count
	ErrInvalidServings = errors.New("invalid serving count")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = errors.New("not found")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrRateLimited is returned when rate limit is exceeded
	ErrRateLimited = errors.New("rate limit exceeded")
)
