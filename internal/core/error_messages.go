package core

// error_messages.go maps errors to user-facing messages with a support code.
//
// Codes by group:
//
//	SKU001-SKU099    import, export and generation rules
//	VAL001-VAL099    vendor and product field validation
//	FILE001-FILE099  sheet files and uploads
//	STORE001-STORE099 document store and cache
//	BATCH001-BATCH099 batch slots, cancellation and timeouts
//	RATE001          request throttling
//	ERR000           anything unrecognized; check the server log
//
// Sentinel errors are matched with errors.Is first. Remaining errors are
// matched by case-insensitive substring, first pattern wins.

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/JonMunkholm/proset/internal/store"
)

// UserMessage is what a client is shown for an error.
type UserMessage struct {
	Message string // what happened
	Action  string // what to do about it
	Code    string // support reference
	Status  int    // HTTP status for API responses
}

type sentinelMessage struct {
	target error
	msg    UserMessage
}

var sentinelMessages = []sentinelMessage{
	{ErrHeaderMismatch, UserMessage{
		Message: "The header row does not match the SKU sheet layout",
		Action:  "Use the columns vendor_name, sku, sku_type, sku_status, old_sku, report in that order",
		Code:    "SKU001",
		Status:  http.StatusUnprocessableEntity,
	}},
	{ErrEmptyFile, UserMessage{
		Message: "The file has no header row",
		Action:  "Export a vendor's SKUs to get a sheet in the expected layout",
		Code:    "SKU002",
		Status:  http.StatusBadRequest,
	}},
	{ErrTooManyRows, UserMessage{
		Message: "The file has more rows than one import accepts",
		Action:  "Split the sheet into smaller files",
		Code:    "SKU003",
		Status:  http.StatusRequestEntityTooLarge,
	}},
	{ErrInvalidCount, UserMessage{
		Message: "The number of SKUs to generate is out of range",
		Action:  "Enter a positive count within the configured limit",
		Code:    "SKU004",
		Status:  http.StatusBadRequest,
	}},
	{ErrVendorRequired, UserMessage{
		Message: "No vendor was selected",
		Action:  "Choose a vendor and try again",
		Code:    "SKU005",
		Status:  http.StatusBadRequest,
	}},
	{ErrUnknownVendor, UserMessage{
		Message: "The vendor does not exist",
		Action:  "Create the vendor first or check the spelling",
		Code:    "SKU006",
		Status:  http.StatusNotFound,
	}},
	{ErrGenerationExhausted, UserMessage{
		Message: "Could not find an unused SKU code",
		Action:  "Codes created before the failure were kept; try again or lengthen the generated code",
		Code:    "SKU007",
		Status:  http.StatusConflict,
	}},
	{ErrInvalidProduct, UserMessage{
		Message: "The product record is invalid",
		Action:  "Check sku_type, sku_status and every dimension name, unit and exact value",
		Code:    "VAL003",
		Status:  http.StatusBadRequest,
	}},
	{ErrProductNotFound, UserMessage{
		Message: "The product does not exist",
		Action:  "Check the vendor and SKU",
		Code:    "SKU008",
		Status:  http.StatusNotFound,
	}},
	{store.ErrDuplicateKey, UserMessage{
		Message: "A record with this key already exists",
		Action:  "Use a different SKU or vendor name",
		Code:    "STORE001",
		Status:  http.StatusConflict,
	}},
	{ErrTooManyBatches, UserMessage{
		Message: "Another import or generation is running",
		Action:  "Wait for it to finish and try again",
		Code:    "BATCH001",
		Status:  http.StatusServiceUnavailable,
	}},
	{context.Canceled, UserMessage{
		Message: "The request was cancelled",
		Action:  "Rows processed before the cancellation were kept; review the report",
		Code:    "BATCH002",
		Status:  http.StatusRequestTimeout,
	}},
	{context.DeadlineExceeded, UserMessage{
		Message: "The operation timed out",
		Action:  "Rows processed before the timeout were kept; import the rest separately",
		Code:    "BATCH003",
		Status:  http.StatusGatewayTimeout,
	}},
}

type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{"vendor not found", UserMessage{
		Message: "The vendor does not exist",
		Action:  "Check the vendor name",
		Code:    "SKU009",
		Status:  http.StatusNotFound,
	}},
	{"invalid vendor", UserMessage{
		Message: "The vendor record is invalid",
		Action:  "A name is required and e-mail addresses must be valid",
		Code:    "VAL001",
		Status:  http.StatusBadRequest,
	}},
	{"invalid json", UserMessage{
		Message: "The request body is not valid JSON",
		Action:  "Check the request format",
		Code:    "VAL002",
		Status:  http.StatusBadRequest,
	}},
	{"unsupported format", UserMessage{
		Message: "Unsupported file format",
		Action:  "Upload an .xlsx or .csv file",
		Code:    "FILE001",
		Status:  http.StatusUnsupportedMediaType,
	}},
	{"request body too large", UserMessage{
		Message: "The file is larger than the upload limit",
		Action:  "Split the sheet into smaller files",
		Code:    "FILE002",
		Status:  http.StatusRequestEntityTooLarge,
	}},
	{"no file provided", UserMessage{
		Message: "No file was uploaded",
		Action:  "Attach the sheet in the \"file\" form field",
		Code:    "FILE003",
		Status:  http.StatusBadRequest,
	}},
	{"read sheet", UserMessage{
		Message: "The file could not be read as a spreadsheet",
		Action:  "Save it again as .xlsx or UTF-8 .csv",
		Code:    "FILE004",
		Status:  http.StatusBadRequest,
	}},
	{"connection refused", UserMessage{
		Message: "Unable to reach the database",
		Action:  "Please try again in a few moments",
		Code:    "STORE002",
		Status:  http.StatusServiceUnavailable,
	}},
	{"connection reset", UserMessage{
		Message: "The database connection was interrupted",
		Action:  "Please try again",
		Code:    "STORE003",
		Status:  http.StatusServiceUnavailable,
	}},
	{"server selection", UserMessage{
		Message: "Unable to reach the database",
		Action:  "Please try again in a few moments",
		Code:    "STORE002",
		Status:  http.StatusServiceUnavailable,
	}},
	{"timeout", UserMessage{
		Message: "The database did not respond in time",
		Action:  "Please try again",
		Code:    "STORE004",
		Status:  http.StatusGatewayTimeout,
	}},
	{"rate limit", UserMessage{
		Message: "Too many requests",
		Action:  "Please wait a moment before trying again",
		Code:    "RATE001",
		Status:  http.StatusTooManyRequests,
	}},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
	Status:  http.StatusInternalServerError,
}

// MapError converts err to a user-facing message. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.target) {
			return sm.msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError renders err as "Message (Code: X). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than
// ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}
