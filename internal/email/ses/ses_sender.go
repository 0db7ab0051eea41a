package ses

import (
	"context"
	"fmt"
	"net/url"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"fieldos/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	portalURL   string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName, portalURL string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
		portalURL:   portalURL,
	}, nil
}

func (s *sesSender) SendQuoteApprovalEmail(ctx context.Context, toEmail, toName, quoteNumber, approvalToken string) error {
	approveURL := fmt.Sprintf("%s/quotes/respond?token=%s", s.portalURL, url.QueryEscape(approvalToken))

	subject := fmt.Sprintf("Quote %s is ready for your review", quoteNumber)
	htmlBody := buildQuoteHTML(toName, quoteNumber, approveURL)
	textBody := fmt.Sprintf("Hi %s,\n\nQuote %s is ready for your review. View and respond here:\n%s\n\n%s", toName, quoteNumber, approveURL, s.fromName)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) SendInvoiceEmail(ctx context.Context, toEmail, toName, invoiceNumber, publicToken string, total float64) error {
	viewURL := fmt.Sprintf("%s/invoices/view?token=%s", s.portalURL, url.QueryEscape(publicToken))

	subject := fmt.Sprintf("Invoice %s", invoiceNumber)
	htmlBody := buildInvoiceHTML(toName, invoiceNumber, total, viewURL)
	textBody := fmt.Sprintf("Hi %s,\n\nInvoice %s for %.2f is ready. View it here:\n%s\n\n%s", toName, invoiceNumber, total, viewURL, s.fromName)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *sesSender) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildQuoteHTML(name, quoteNumber, approveURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Quote %s</h2>
  <p>Hi %s,</p>
  <p>Your quote is ready for review. You can approve it or request changes using the button below:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Review Quote</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
</body>
</html>`, quoteNumber, name, approveURL, approveURL)
}

func buildInvoiceHTML(name, invoiceNumber string, total float64, viewURL string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Invoice %s</h2>
  <p>Hi %s,</p>
  <p>Your invoice for <strong>%.2f</strong> is ready. You can view it online:</p>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">View Invoice</a>
  </p>
  <p>Or copy and paste this link into your browser:</p>
  <p style="word-break: break-all; color: #666;">%s</p>
</body>
</html>`, invoiceNumber, name, total, viewURL, viewURL)
}
