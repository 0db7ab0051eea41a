package noop

import (
	"context"
	"fmt"
	"log"
	"net/url"

	"fieldos/internal/port"
)

type noopSender struct {
	portalURL string
}

// NewNoopSender creates a no-op EmailSender that logs portal URLs to stdout.
func NewNoopSender(portalURL string) port.EmailSender {
	return &noopSender{portalURL: portalURL}
}

func (s *noopSender) SendQuoteApprovalEmail(_ context.Context, toEmail, toName, quoteNumber, approvalToken string) error {
	approveURL := fmt.Sprintf("%s/quotes/respond?token=%s", s.portalURL, url.QueryEscape(approvalToken))
	log.Printf("[NOOP EMAIL] Quote %s for %s (%s): %s", quoteNumber, toName, toEmail, approveURL)
	return nil
}

func (s *noopSender) SendInvoiceEmail(_ context.Context, toEmail, toName, invoiceNumber, publicToken string, total float64) error {
	viewURL := fmt.Sprintf("%s/invoices/view?token=%s", s.portalURL, url.QueryEscape(publicToken))
	log.Printf("[NOOP EMAIL] Invoice %s (%.2f) for %s (%s): %s", invoiceNumber, total, toName, toEmail, viewURL)
	return nil
}
