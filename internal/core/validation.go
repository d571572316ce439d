package core

// validation.go turns a raw sheet row into a product the store can accept.
//
// Rules run in order and the first failure wins:
//  1. old_sku defaults to NA when blank
//  2. vendor_name must name a stored vendor (UnknownVendor)
//  3. sku must be present (MissingSku)
//  4. for full-record writes, sku_type and sku_status must be known values
//     (InvalidEnum)
//
// A failed vendor lookup is reported as a StoreError validation rather than
// returned, so the import loop always has exactly one result per row.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/proset/internal/catalog"
)

// VendorChecker answers whether a vendor exists.
type VendorChecker interface {
	Exists(ctx context.Context, name string) (bool, error)
}

// Validation is the tagged result of validating one row: either OK with a
// normalized product, or a failure outcome with a reason.
type Validation struct {
	Product catalog.Product
	Failure Outcome // empty when the row is valid
	Reason  string
	Err     error // set only for store failures during the vendor lookup
}

// OK reports whether the row passed every rule.
func (v Validation) OK() bool { return v.Failure == "" }

func (v Validation) result() result {
	if v.Failure == OutcomeStoreError {
		return storeFailure(v.Err)
	}
	return invalid(v.Failure, v.Reason)
}

func fail(kind Outcome, format string, args ...any) Validation {
	return Validation{Failure: kind, Reason: fmt.Sprintf(format, args...)}
}

// RowValidator validates rows against the vendor store and the catalog enums.
type RowValidator struct {
	vendors VendorChecker
}

// NewRowValidator returns a validator that checks vendors with vendors.
func NewRowValidator(vendors VendorChecker) *RowValidator {
	return &RowValidator{vendors: vendors}
}

// Validate checks row for the given action and returns the normalized
// product on success. Enum rules only apply to ActionUpsert: a replace row
// carries the action in its status cell, and a discontinue row only needs
// its key.
func (v *RowValidator) Validate(ctx context.Context, row Row, action Action) Validation {
	p := catalog.NewProduct(
		row.VendorName,
		row.SKU,
		strings.ToLower(row.SKUType),
		strings.ToLower(row.SKUStatus),
		row.OldSKU,
	)

	if row.VendorName == "" {
		return fail(OutcomeUnknownVendor, "vendor_name is required")
	}
	ok, err := v.vendors.Exists(ctx, row.VendorName)
	if err != nil {
		return Validation{Failure: OutcomeStoreError, Err: err}
	}
	if !ok {
		return fail(OutcomeUnknownVendor, "unknown vendor %q", row.VendorName)
	}

	if row.SKU == "" {
		return fail(OutcomeMissingSKU, "sku is required")
	}

	if action == ActionUpsert {
		if err := catalog.Validate(p); err != nil {
			var fe catalog.FieldError
			if errors.As(err, &fe) {
				return fail(OutcomeInvalidEnum, "invalid %s %q", fe.Field, fe.Value)
			}
			return fail(OutcomeInvalidEnum, "%v", err)
		}
	}

	return Validation{Product: p}
}
