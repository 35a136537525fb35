package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")

	// Login
	ErrInvalidPhone        = errors.New("phone number must be 10 digits")
	ErrPhoneNotAllowed     = errors.New("phone number is not allowed to sign in")
	ErrIncompleteOTP       = errors.New("otp must be 4 digits")
	ErrInvalidOTP          = errors.New("invalid otp")
	ErrOTPExpired          = errors.New("otp expired or was never requested")
	ErrOTPAttemptsExceeded = errors.New("too many otp attempts")

	// Invoices and drafts
	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrDraftNotFound           = errors.New("draft not found or expired")
	ErrNoStoredImage           = errors.New("draft has no stored image to scan again")
	ErrInvalidDraftTransition  = errors.New("invalid draft state transition")
	ErrCustomCategoryTooShort  = errors.New("custom category must be at least 20 characters long")
	ErrInvalidDate             = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidAmount           = errors.New("amount must be a non-negative decimal number")
	ErrInvalidDateRange        = errors.New("start date must not be after end date")
	ErrDateRangeRequired       = errors.New("start and end dates are required")
	ErrRecognitionFailed       = errors.New("text recognition failed")
	ErrRecognitionTimeout      = errors.New("text recognition timed out")
	ErrNoTextRecognized        = errors.New("no text could be recognized in the document")
	ErrUnsupportedExportFormat = errors.New("unsupported export format")
)
