package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendQuoteApprovalEmail(ctx context.Context, toEmail, toName, quoteNumber, approvalToken string) error {
	args := m.Called(ctx, toEmail, toName, quoteNumber, approvalToken)
	return args.Error(0)
}

func (m *MockEmailSender) SendInvoiceEmail(ctx context.Context, toEmail, toName, invoiceNumber, publicToken string, total float64) error {
	args := m.Called(ctx, toEmail, toName, invoiceNumber, publicToken, total)
	return args.Error(0)
}
