package domain

import "errors"

var (
	ErrNotFound           = errors.New("resource not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTenantInactive     = errors.New("tenant is inactive")
	ErrUserInactive       = errors.New("user is inactive")
	ErrDuplicateEmail     = errors.New("email already exists for this tenant")
	ErrDuplicateSlug      = errors.New("tenant slug already exists")

	// ErrValidation is the base for all pre-write input rejections.
	// Wrap it with context: fmt.Errorf("%w: client_id is required", ErrValidation).
	ErrValidation = errors.New("validation failed")

	// ErrInvalidTransition is the base for all rejected state transitions.
	// The current entity state is left unchanged.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrSequenceConflict means the numbering transaction could not commit
	// within the retry budget. No number was consumed; the caller may retry.
	ErrSequenceConflict = errors.New("sequence allocation conflict")

	ErrClientNotFound  = errors.New("client not found")
	ErrQuoteNotFound   = errors.New("quote not found")
	ErrJobNotFound     = errors.New("job not found")
	ErrInvoiceNotFound = errors.New("invoice not found")

	// ErrCreditNoteNotCreditable rejects issuing a credit note against a
	// document that is itself a credit note.
	ErrCreditNoteNotCreditable = errors.New("credit notes cannot be credited")

	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
)
