package domain

// QuoteStatus represents the lifecycle state of a quote.
type QuoteStatus string

const (
	QuoteStatusDraft            QuoteStatus = "draft"
	QuoteStatusAwaitingResponse QuoteStatus = "awaiting_response"
	QuoteStatusChangesRequested QuoteStatus = "changes_requested"
	QuoteStatusApproved         QuoteStatus = "approved"
	QuoteStatusConverted        QuoteStatus = "converted"
	QuoteStatusArchived         QuoteStatus = "archived"
)

// JobStatus represents the lifecycle state of a job.
type JobStatus string

const (
	JobStatusUnscheduled JobStatus = "unscheduled"
	JobStatusDraft       JobStatus = "draft"
	JobStatusScheduled   JobStatus = "scheduled"
	JobStatusInProgress  JobStatus = "in_progress"
	JobStatusCompleted   JobStatus = "completed"
)

// ValidJobStatuses lists every accepted job status value.
var ValidJobStatuses = map[JobStatus]bool{
	JobStatusUnscheduled: true,
	JobStatusDraft:       true,
	JobStatusScheduled:   true,
	JobStatusInProgress:  true,
	JobStatusCompleted:   true,
}

// InvoiceStatus represents the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft  InvoiceStatus = "draft"
	InvoiceStatusSent   InvoiceStatus = "sent"
	InvoiceStatusUnpaid InvoiceStatus = "unpaid"
	InvoiceStatusPaid   InvoiceStatus = "paid"
)

// DiscountType selects between a flat amount and a percentage discount.
type DiscountType string

const (
	DiscountAmount  DiscountType = "amount"
	DiscountPercent DiscountType = "percent"
)

// LineItemKind distinguishes priced rows from display-only text rows.
type LineItemKind string

const (
	LineItemPriced LineItemKind = "priced"
	LineItemText   LineItemKind = "text"
)

// CounterKey selects which per-tenant sequence counter to allocate from.
// Credit notes share the invoice counter.
type CounterKey string

const (
	CounterQuote   CounterKey = "quote"
	CounterJob     CounterKey = "job"
	CounterInvoice CounterKey = "invoice"
)

// PaymentMethod identifies how a payment was collected.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodOther        PaymentMethod = "other"
)

// UserRole defines the role hierarchy within a tenant.
type UserRole string

const (
	RoleAdmin  UserRole = "admin"
	RoleMember UserRole = "member"
)

// EventType identifies an outbound engine event.
type EventType string

const (
	EventQuoteSent     EventType = "quote.sent"
	EventQuoteApproved EventType = "quote.approved"
	EventQuoteDeclined EventType = "quote.declined"
	EventJobCompleted  EventType = "job.completed"
	EventInvoiceSent   EventType = "invoice.sent"
	EventInvoicePaid   EventType = "invoice.paid"
)

// FileType represents the allowed attachment file types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedFileTypes maps FileType to its MIME content type.
var AllowedFileTypes = map[FileType]string{
	FileTypePDF: "application/pdf",
	FileTypeJPG: "image/jpeg",
	FileTypePNG: "image/png",
}

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}

// AllowedExtensions maps file extensions (without dot) to FileType.
var AllowedExtensions = map[string]FileType{
	"pdf":  FileTypePDF,
	"jpg":  FileTypeJPG,
	"jpeg": FileTypeJPG,
	"png":  FileTypePNG,
}

// AttachmentStatus represents the lifecycle of an uploaded job attachment.
type AttachmentStatus string

const (
	AttachmentStatusPending  AttachmentStatus = "pending"
	AttachmentStatusUploaded AttachmentStatus = "uploaded"
	AttachmentStatusFailed   AttachmentStatus = "failed"
	AttachmentStatusDeleted  AttachmentStatus = "deleted"
)
