package domain

import "errors"

// Domain errors
var (
	ErrNotFound            = errors.New("resource not found")
	ErrUserNotFound        = errors.New("user not found")
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrSummaryNotFound     = errors.New("summary not found")
	ErrInvalidInput        = errors.New("invalid input")
	ErrForbidden           = errors.New("forbidden")
	ErrTitleRequired       = errors.New("title is required")
	ErrTitleTooLong        = errors.New("title exceeds maximum length")
	ErrInvalidAmount       = errors.New("amount must be non-negative")
	ErrInvalidDirection    = errors.New("invalid transaction direction")
	ErrInvalidIncome       = errors.New("monthly income must be a positive number")
	ErrInvalidGoal         = errors.New("savings goal must be non-negative")
	ErrInvalidMonth        = errors.New("month must be between 1 and 12")
)

// Validation constants
const (
	MaxTransactionTitleLength = 255
	MaxCategoryLength         = 50
)
