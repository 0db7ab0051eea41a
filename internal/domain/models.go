package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Tenant represents an isolated business account. Every other entity is
// scoped to exactly one tenant.
type Tenant struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Slug      string    `db:"slug" json:"slug"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// User represents a staff member belonging to a tenant.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	TenantID     uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	FullName     string    `db:"full_name" json:"full_name"`
	Role         UserRole  `db:"role" json:"role"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Client represents a customer of the tenant's business.
type Client struct {
	ID          uuid.UUID `db:"id" json:"id"`
	TenantID    uuid.UUID `db:"tenant_id" json:"tenant_id"`
	Name        string    `db:"name" json:"name"`
	CompanyName string    `db:"company_name" json:"company_name"`
	Email       string    `db:"email" json:"email"`
	Phone       string    `db:"phone" json:"phone"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Property represents a service address belonging to a client.
type Property struct {
	ID         uuid.UUID `db:"id" json:"id"`
	TenantID   uuid.UUID `db:"tenant_id" json:"tenant_id"`
	ClientID   uuid.UUID `db:"client_id" json:"client_id"`
	Street     string    `db:"street" json:"street"`
	Unit       string    `db:"unit" json:"unit"`
	City       string    `db:"city" json:"city"`
	Region     string    `db:"region" json:"region"`
	PostalCode string    `db:"postal_code" json:"postal_code"`
	Country    string    `db:"country" json:"country"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// PropertySnapshot is a denormalized copy of a property's address, frozen
// onto jobs and invoices at creation time so later edits to the property
// never rewrite history.
type PropertySnapshot struct {
	PropertyID *uuid.UUID `json:"property_id,omitempty"`
	Street     string     `json:"street"`
	Unit       string     `json:"unit,omitempty"`
	City       string     `json:"city"`
	Region     string     `json:"region"`
	PostalCode string     `json:"postal_code"`
	Country    string     `json:"country"`
}

// Value implements driver.Valuer for JSONB storage.
func (p PropertySnapshot) Value() (driver.Value, error) {
	return json.Marshal(p)
}

// Scan implements sql.Scanner for JSONB storage.
func (p *PropertySnapshot) Scan(src interface{}) error {
	return scanJSON(src, p)
}

// Snapshot copies the property's address fields into a snapshot.
func (p *Property) Snapshot() PropertySnapshot {
	id := p.ID
	return PropertySnapshot{
		PropertyID: &id,
		Street:     p.Street,
		Unit:       p.Unit,
		City:       p.City,
		Region:     p.Region,
		PostalCode: p.PostalCode,
		Country:    p.Country,
	}
}

// LineItem is one row on a quote, job, or invoice. Kind selects the variant:
// a priced item carries quantity/price/discount fields, a text item only a
// description. Text items and items marked optional contribute nothing to
// the document's totals but stay in the list for display.
type LineItem struct {
	Kind          LineItemKind `json:"kind"`
	Name          string       `json:"name,omitempty"`
	Description   string       `json:"description,omitempty"`
	Quantity      float64      `json:"quantity,omitempty"`
	UnitPrice     float64      `json:"unit_price,omitempty"`
	UnitCost      float64      `json:"unit_cost,omitempty"`
	DiscountType  DiscountType `json:"discount_type,omitempty"`
	DiscountValue float64      `json:"discount_value,omitempty"`
	Optional      bool         `json:"optional,omitempty"`
}

// LineItems is a JSONB-stored list of line items.
type LineItems []LineItem

// Value implements driver.Valuer for JSONB storage.
func (l LineItems) Value() (driver.Value, error) {
	if l == nil {
		return json.Marshal([]LineItem{})
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONB storage.
func (l *LineItems) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Totals holds the derived money fields shared by quotes and invoices.
// They are always recomputed from the line items and discount/tax config,
// never hand-edited.
type Totals struct {
	SubtotalBeforeDiscount float64 `db:"subtotal_before_discount" json:"subtotal_before_discount"`
	LineDiscountTotal      float64 `db:"line_discount_total" json:"line_discount_total"`
	DiscountAmount         float64 `db:"discount_amount" json:"discount_amount"`
	TaxAmount              float64 `db:"tax_amount" json:"tax_amount"`
	Total                  float64 `db:"total" json:"total"`
	OriginalTotal          float64 `db:"original_total" json:"original_total"`
	TotalSavings           float64 `db:"total_savings" json:"total_savings"`
}

// Quote represents a price quote offered to a client.
type Quote struct {
	ID             uuid.UUID    `db:"id" json:"id"`
	TenantID       uuid.UUID    `db:"tenant_id" json:"tenant_id"`
	ClientID       uuid.UUID    `db:"client_id" json:"client_id"`
	PropertyID     *uuid.UUID   `db:"property_id" json:"property_id"`
	Title          string       `db:"title" json:"title"`
	QuoteNumber    string       `db:"quote_number" json:"quote_number"`
	Status         QuoteStatus  `db:"status" json:"status"`
	LineItems      LineItems    `db:"line_items" json:"line_items"`
	TaxRate        float64      `db:"tax_rate" json:"tax_rate"`
	DiscountType   DiscountType `db:"discount_type" json:"discount_type"`
	DiscountValue  float64      `db:"discount_value" json:"discount_value"`
	Totals         `json:"totals"`
	ApprovalToken  string     `db:"approval_token" json:"-"`
	ApprovedByName string     `db:"approved_by_name" json:"approved_by_name"`
	DeclinedByName string     `db:"declined_by_name" json:"declined_by_name"`
	SentAt         *time.Time `db:"sent_at" json:"sent_at"`
	ApprovedAt     *time.Time `db:"approved_at" json:"approved_at"`
	DeclinedAt     *time.Time `db:"declined_at" json:"declined_at"`
	ConvertedAt    *time.Time `db:"converted_at" json:"converted_at"`
	ArchivedAt     *time.Time `db:"archived_at" json:"archived_at"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
}

// Visit is a scheduled time window for work on a job.
type Visit struct {
	ID          uuid.UUID   `json:"id"`
	StartAt     time.Time   `json:"start_at"`
	EndAt       time.Time   `json:"end_at"`
	Assignees   []uuid.UUID `json:"assignees,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Visits is a JSONB-stored list of visits.
type Visits []Visit

// Value implements driver.Valuer for JSONB storage.
func (v Visits) Value() (driver.Value, error) {
	if v == nil {
		return json.Marshal([]Visit{})
	}
	return json.Marshal(v)
}

// Scan implements sql.Scanner for JSONB storage.
func (v *Visits) Scan(src interface{}) error {
	return scanJSON(src, v)
}

// UUIDList is a JSONB-stored list of ids (job assignees).
type UUIDList []uuid.UUID

// Value implements driver.Valuer for JSONB storage.
func (u UUIDList) Value() (driver.Value, error) {
	if u == nil {
		return json.Marshal([]uuid.UUID{})
	}
	return json.Marshal(u)
}

// Scan implements sql.Scanner for JSONB storage.
func (u *UUIDList) Scan(src interface{}) error {
	return scanJSON(src, u)
}

// Job represents schedulable work for a client, created directly or by
// converting an approved quote. QuoteID is a non-owning back-reference.
type Job struct {
	ID               uuid.UUID        `db:"id" json:"id"`
	TenantID         uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	ClientID         uuid.UUID        `db:"client_id" json:"client_id"`
	QuoteID          *uuid.UUID       `db:"quote_id" json:"quote_id"`
	PropertyID       *uuid.UUID       `db:"property_id" json:"property_id"`
	PropertySnapshot PropertySnapshot `db:"property_snapshot" json:"property_snapshot"`
	Title            string           `db:"title" json:"title"`
	Instructions     string           `db:"instructions" json:"instructions"`
	JobNumber        string           `db:"job_number" json:"job_number"`
	Status           JobStatus        `db:"status" json:"status"`
	LineItems        LineItems        `db:"line_items" json:"line_items"`
	Assignees        UUIDList         `db:"assignees" json:"assignees"`
	Visits           Visits           `db:"visits" json:"visits"`
	StartedAt        *time.Time       `db:"started_at" json:"started_at"`
	CompletedAt      *time.Time       `db:"completed_at" json:"completed_at"`
	CreatedAt        time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time        `db:"updated_at" json:"updated_at"`
}

// Invoice represents a bill for a client, created from a completed job,
// from an ad hoc draft, or as a credit note offsetting another invoice.
// JobID and CreditForInvoiceID are non-owning references by id.
type Invoice struct {
	ID                 uuid.UUID        `db:"id" json:"id"`
	TenantID           uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	ClientID           uuid.UUID        `db:"client_id" json:"client_id"`
	JobID              *uuid.UUID       `db:"job_id" json:"job_id"`
	PropertySnapshot   PropertySnapshot `db:"property_snapshot" json:"property_snapshot"`
	Subject            string           `db:"subject" json:"subject"`
	InvoiceNumber      string           `db:"invoice_number" json:"invoice_number"`
	Status             InvoiceStatus    `db:"status" json:"status"`
	LineItems          LineItems        `db:"line_items" json:"line_items"`
	IssueDate          time.Time        `db:"issue_date" json:"issue_date"`
	DueTerm            string           `db:"due_term" json:"due_term"`
	DueDate            time.Time        `db:"due_date" json:"due_date"`
	TaxRate            float64          `db:"tax_rate" json:"tax_rate"`
	DiscountType       DiscountType     `db:"discount_type" json:"discount_type"`
	DiscountValue      float64          `db:"discount_value" json:"discount_value"`
	Totals             `json:"totals"`
	IsCreditNote       bool       `db:"is_credit_note" json:"is_credit_note"`
	CreditForInvoiceID *uuid.UUID `db:"credit_for_invoice_id" json:"credit_for_invoice_id"`
	PublicToken        string     `db:"public_token" json:"-"`
	SentAt             *time.Time `db:"sent_at" json:"sent_at"`
	PaidAt             *time.Time `db:"paid_at" json:"paid_at"`
	CreatedAt          time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `db:"updated_at" json:"updated_at"`
}

// Payment is one append-only payment record against an invoice.
type Payment struct {
	ID        uuid.UUID     `db:"id" json:"id"`
	TenantID  uuid.UUID     `db:"tenant_id" json:"tenant_id"`
	InvoiceID uuid.UUID     `db:"invoice_id" json:"invoice_id"`
	Amount    float64       `db:"amount" json:"amount"`
	Method    PaymentMethod `db:"method" json:"method"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
}

// SequenceCounters is the single shared mutable record per tenant: the next
// value and prefix for each document number series, plus the zero padding
// width. Mutated only inside the allocation transaction.
type SequenceCounters struct {
	TenantID      uuid.UUID `db:"tenant_id" json:"tenant_id"`
	NextQuote     int64     `db:"next_quote" json:"next_quote"`
	PrefixQuote   string    `db:"prefix_quote" json:"prefix_quote"`
	NextJob       int64     `db:"next_job" json:"next_job"`
	PrefixJob     string    `db:"prefix_job" json:"prefix_job"`
	NextInvoice   int64     `db:"next_invoice" json:"next_invoice"`
	PrefixInvoice string    `db:"prefix_invoice" json:"prefix_invoice"`
	Padding       int       `db:"padding" json:"padding"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}

// Attachment stores metadata about a file uploaded against a job.
type Attachment struct {
	ID           uuid.UUID        `db:"id" json:"id"`
	TenantID     uuid.UUID        `db:"tenant_id" json:"tenant_id"`
	JobID        uuid.UUID        `db:"job_id" json:"job_id"`
	UploadedBy   uuid.UUID        `db:"uploaded_by" json:"uploaded_by"`
	FileName     string           `db:"file_name" json:"file_name"`
	OriginalName string           `db:"original_name" json:"original_name"`
	FileType     FileType         `db:"file_type" json:"file_type"`
	FileSize     int64            `db:"file_size" json:"file_size"`
	S3Bucket     string           `db:"s3_bucket" json:"s3_bucket"`
	S3Key        string           `db:"s3_key" json:"s3_key"`
	ContentType  string           `db:"content_type" json:"content_type"`
	Status       AttachmentStatus `db:"status" json:"status"`
	CreatedAt    time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time        `db:"updated_at" json:"updated_at"`
}

// Event is an outbound notification about a completed state transition.
// Delivery is best-effort and never blocks the transition it describes.
type Event struct {
	Type       EventType `json:"type"`
	TenantID   uuid.UUID `json:"tenant_id"`
	EntityID   uuid.UUID `json:"entity_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

func scanJSON(src, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}
