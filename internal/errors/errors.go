// Package errors provides the typed error taxonomy for the budgeteer engine.
// All service-layer errors use AppError so callers can branch on a stable
// code, and so each failure kind maps to a distinct process exit code for
// scripting around the CLI.
package errors

// AppError represents a structured application error with an error code,
// human-readable message, process exit code, and optional internal error.
type AppError struct {
	Code     string
	Message  string
	ExitCode int
	Internal error
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/exit code but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  sentinel.Message,
		ExitCode: sentinel.ExitCode,
		Internal: internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:     sentinel.Code,
		Message:  message,
		ExitCode: sentinel.ExitCode,
		Internal: sentinel.Internal,
	}
}

// Engine error taxonomy. Exit codes are part of the contract: scripts
// invoking the CLI branch on them, so they must stay stable.
var (
	// ErrStoreFailure covers any store I/O or query error other than a
	// duplicate key. Fatal for the current operation; no partial state
	// may remain committed.
	ErrStoreFailure = &AppError{Code: "STORE_FAILURE", Message: "Ledger store operation failed", ExitCode: 1}

	// ErrInvalidAmount signals malformed monetary text in imported or
	// user-supplied data. The offending value must not be used.
	ErrInvalidAmount = &AppError{Code: "INVALID_AMOUNT", Message: "Malformed monetary amount", ExitCode: 2}

	// ErrConstraintViolation signals an attempted duplicate (account name
	// or (year, month) pair). Usually benign; callers fall back to lookup.
	ErrConstraintViolation = &AppError{Code: "CONSTRAINT_VIOLATION", Message: "Record already exists", ExitCode: 3}

	// ErrNotFound signals a referenced budget, account, envelope or income
	// row that is absent when required.
	ErrNotFound = &AppError{Code: "NOT_FOUND", Message: "Record not found", ExitCode: 4}

	// ErrUnbalancedAllocation signals an activation attempt while income
	// does not equal the total base allocation. User-correctable.
	ErrUnbalancedAllocation = &AppError{Code: "UNBALANCED_ALLOCATION", Message: "Income does not match total allocation", ExitCode: 5}

	// ErrInvalidTransition signals a lifecycle operation attempted from a
	// state that forbids it.
	ErrInvalidTransition = &AppError{Code: "INVALID_TRANSITION", Message: "Operation not allowed in current budget state", ExitCode: 6}

	// ErrInvalidInput covers malformed CLI arguments and failed request
	// validation outside the monetary codec.
	ErrInvalidInput = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", ExitCode: 7}
)

// Budget errors.
var (
	ErrBudgetNotFound = &AppError{Code: "NOT_FOUND", Message: "Budget not found for the requested period", ExitCode: 4}
	ErrBudgetExists   = &AppError{Code: "CONSTRAINT_VIOLATION", Message: "A budget for this period already exists", ExitCode: 3}
)

// Account and envelope errors.
var (
	ErrAccountNotFound  = &AppError{Code: "NOT_FOUND", Message: "Account not found", ExitCode: 4}
	ErrEnvelopeNotFound = &AppError{Code: "NOT_FOUND", Message: "No envelope for this account in the budget", ExitCode: 4}
	ErrIncomeNotFound   = &AppError{Code: "NOT_FOUND", Message: "No income recorded for this budget", ExitCode: 4}
)
