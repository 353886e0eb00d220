package apperr

import "github.com/namjco/sales-tracker/pkg/zerror"

const (
	ValidationErrorCode = "VALIDATION_FAILED"
	StoreErrorCode      = "STORE_FAILED"
)

var (
	// ValidationErr marks missing or malformed input.
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	// StoreErr marks a record store that was unreachable or rejected a read or write.
	StoreErr = zerror.NewInternalServerError(StoreErrorCode, "record store error")
)
