package port

import "context"

// EmailSender defines the contract for client-facing notification emails.
// Sending is best-effort: failures are logged by callers and never block
// the state transition they describe.
type EmailSender interface {
	SendQuoteApprovalEmail(ctx context.Context, toEmail, toName, quoteNumber, approvalToken string) error
	SendInvoiceEmail(ctx context.Context, toEmail, toName, invoiceNumber, publicToken string, total float64) error
}
