package core

import "errors"

// Structural errors abort an operation before anything is written.
var (
	ErrEmptyFile      = errors.New("empty file: no header row")
	ErrHeaderMismatch = errors.New("header mismatch")
	ErrTooManyRows    = errors.New("too many rows")
	ErrInvalidCount   = errors.New("invalid generation count")
	ErrVendorRequired = errors.New("vendor name is required")
	ErrUnknownVendor  = errors.New("unknown vendor")
)

// ErrGenerationExhausted stops a generation batch when no unused code was
// found within the attempt limit. Codes minted before it stay stored.
var ErrGenerationExhausted = errors.New("generation exhausted: no unused sku found")

// ErrInvalidProduct wraps the field error of a product rejected by SaveProduct.
var ErrInvalidProduct = errors.New("invalid product")

// ErrProductNotFound is returned by administrative product lookups.
var ErrProductNotFound = errors.New("product not found")
