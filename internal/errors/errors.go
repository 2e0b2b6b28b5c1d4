// Package errors provides custom error types for the Kharcha API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// General errors.
var (
	ErrUnauthorized   = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Reference-not-found errors. Distinct from validation: the shape of the
// request is fine, the entity it points at does not exist.
var (
	ErrBudgetNotFound     = &AppError{Code: "BUDGET_NOT_FOUND", Message: "Budget not found", StatusCode: http.StatusNotFound}
	ErrDepartmentNotFound = &AppError{Code: "DEPARTMENT_NOT_FOUND", Message: "Department not found", StatusCode: http.StatusNotFound}
	ErrProjectNotFound    = &AppError{Code: "PROJECT_NOT_FOUND", Message: "Project not found", StatusCode: http.StatusNotFound}
	ErrCostCenterNotFound = &AppError{Code: "COST_CENTER_NOT_FOUND", Message: "Cost center not found", StatusCode: http.StatusNotFound}
	ErrCategoryNotFound   = &AppError{Code: "CATEGORY_NOT_FOUND", Message: "Category not found", StatusCode: http.StatusNotFound}
	ErrEmployeeNotFound   = &AppError{Code: "EMPLOYEE_NOT_FOUND", Message: "Employee not found", StatusCode: http.StatusNotFound}
)

// Validation errors. Rejected before any mutation.
var (
	ErrInvalidDateRange   = &AppError{Code: "INVALID_DATE_RANGE", Message: "End date must be after start date", StatusCode: http.StatusBadRequest}
	ErrInvalidQuarter     = &AppError{Code: "INVALID_QUARTER", Message: "Quarter must be between 1 and 4", StatusCode: http.StatusBadRequest}
	ErrInvalidMonth       = &AppError{Code: "INVALID_MONTH", Message: "Month must be between 1 and 12", StatusCode: http.StatusBadRequest}
	ErrProjectBasedPeriod = &AppError{Code: "PROJECT_BASED_PERIOD", Message: "Project-based budgets have no derivable period; supply explicit start and end dates", StatusCode: http.StatusBadRequest}
	ErrNegativeAmount     = &AppError{Code: "NEGATIVE_AMOUNT", Message: "Amount must not be negative", StatusCode: http.StatusBadRequest}
	ErrInvalidThreshold   = &AppError{Code: "INVALID_THRESHOLD", Message: "Warning threshold must be between 0 and 100", StatusCode: http.StatusBadRequest}
)

// Lifecycle-state errors. Terminal and non-retryable; the caller must
// correct the budget's state first.
var (
	ErrBudgetAlreadyActive   = &AppError{Code: "BUDGET_ALREADY_ACTIVE", Message: "Budget is already active", StatusCode: http.StatusConflict}
	ErrBudgetAlreadyInactive = &AppError{Code: "BUDGET_ALREADY_INACTIVE", Message: "Budget is already inactive", StatusCode: http.StatusConflict}
	ErrBudgetPeriodEnded     = &AppError{Code: "BUDGET_PERIOD_ENDED", Message: "Cannot activate a budget whose period has ended", StatusCode: http.StatusConflict}
	ErrBudgetNotClosed       = &AppError{Code: "BUDGET_NOT_CLOSED", Message: "Budget must be closed before archiving", StatusCode: http.StatusConflict}
	ErrBudgetPeriodNotEnded  = &AppError{Code: "BUDGET_PERIOD_NOT_ENDED", Message: "Cannot archive a budget before its period ends", StatusCode: http.StatusConflict}
)

// Transfer errors. Messages carry the precise figures involved.
var (
	ErrCurrencyMismatch  = &AppError{Code: "CURRENCY_MISMATCH", Message: "Cannot transfer between budgets with different currencies", StatusCode: http.StatusBadRequest}
	ErrBudgetInactive    = &AppError{Code: "BUDGET_INACTIVE", Message: "Both budgets must be active to transfer funds", StatusCode: http.StatusConflict}
	ErrInsufficientFunds = &AppError{Code: "INSUFFICIENT_FUNDS", Message: "Insufficient available funds for transfer", StatusCode: http.StatusBadRequest}
)
