package core

import "fmt"

// Outcome is the single result recorded for every imported row.
type Outcome string

const (
	OutcomeCreated      Outcome = "created"
	OutcomeUpdated      Outcome = "updated"
	OutcomeNoChange     Outcome = "no_change"
	OutcomeReplaced     Outcome = "replaced"
	OutcomeDiscontinued Outcome = "discontinued"

	// Validation failures.
	OutcomeUnknownVendor Outcome = "unknown_vendor"
	OutcomeMissingSKU    Outcome = "missing_sku"
	OutcomeInvalidEnum   Outcome = "invalid_enum"

	// Target lookups that found nothing, or found something in the way.
	OutcomeReplaceTargetNotFound     Outcome = "replace_target_not_found"
	OutcomeReplaceConflict           Outcome = "replace_conflict"
	OutcomeDiscontinueTargetNotFound Outcome = "discontinue_target_not_found"

	OutcomeStoreError Outcome = "store_error"
	OutcomeSkipped    Outcome = "skipped"
	OutcomeCancelled  Outcome = "cancelled"
)

// Applied reports whether the outcome means the row was written or already
// matched the store.
func (o Outcome) Applied() bool {
	switch o {
	case OutcomeCreated, OutcomeUpdated, OutcomeNoChange, OutcomeReplaced, OutcomeDiscontinued:
		return true
	}
	return false
}

// IsValidationFailure reports whether the row was rejected before any store
// write was attempted because of its own content.
func (o Outcome) IsValidationFailure() bool {
	switch o {
	case OutcomeUnknownVendor, OutcomeMissingSKU, OutcomeInvalidEnum:
		return true
	}
	return false
}

// result pairs an outcome with the text written into the report column.
type result struct {
	outcome Outcome
	message string
}

func created() result      { return result{OutcomeCreated, "Inserted new product"} }
func updated() result      { return result{OutcomeUpdated, "Updated existing product"} }
func noChange() result     { return result{OutcomeNoChange, "No changes made"} }
func discontinued() result { return result{OutcomeDiscontinued, "Discontinued"} }

func replaced(oldSKU, newSKU string) result {
	return result{OutcomeReplaced, fmt.Sprintf("Replaced %s with %s", oldSKU, newSKU)}
}

func invalid(o Outcome, reason string) result {
	return result{o, "Validation error: " + reason}
}

func replaceNotFound(oldSKU string) result {
	return result{OutcomeReplaceTargetNotFound, fmt.Sprintf("Replace target %q not found", oldSKU)}
}

func replaceConflict(newSKU string) result {
	return result{OutcomeReplaceConflict, fmt.Sprintf("Replace conflict: %q already exists", newSKU)}
}

func discontinueNotFound(sku string) result {
	return result{OutcomeDiscontinueTargetNotFound, fmt.Sprintf("Discontinue target %q not found", sku)}
}

func storeFailure(err error) result {
	return result{OutcomeStoreError, "Unexpected error: " + err.Error()}
}

func skipped() result   { return result{OutcomeSkipped, "Skipped empty row"} }
func cancelled() result { return result{OutcomeCancelled, "Cancelled before processing"} }
