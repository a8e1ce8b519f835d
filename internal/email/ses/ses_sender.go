package ses

import (
	"context"
	"fmt"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"invoiceqc/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendQCAlert(ctx context.Context, recipients []string, alert port.QCAlert) error {
	if len(recipients) == 0 {
		return nil
	}

	subject := fmt.Sprintf("Invoice QC: %d of %d invoices failed validation",
		alert.Run.InvalidCount, alert.Run.TotalCount)
	htmlBody := buildQCAlertHTML(alert)
	textBody := buildQCAlertText(alert)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: recipients,
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

func buildQCAlertText(alert port.QCAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Validation run %s has completed.\n\n", alert.Run.ID)
	fmt.Fprintf(&b, "Invoices checked: %d\nValid: %d\nInvalid: %d\n",
		alert.Run.TotalCount, alert.Run.ValidCount, alert.Run.InvalidCount)
	if len(alert.TopErrors) > 0 {
		b.WriteString("\nMost frequent failures:\n")
		for _, f := range alert.TopErrors {
			fmt.Fprintf(&b, "  %s: %d invoice(s)\n", f.RuleID, f.Count)
		}
	}
	b.WriteString("\nInvoice QC")
	return b.String()
}

func buildQCAlertHTML(alert port.QCAlert) string {
	var rows strings.Builder
	for _, f := range alert.TopErrors {
		fmt.Fprintf(&rows,
			`    <tr><td style="padding: 6px 12px; border-bottom: 1px solid #eee;">%s</td>`+
				`<td style="padding: 6px 12px; border-bottom: 1px solid #eee; text-align: right;">%d</td></tr>
`, f.RuleID, f.Count)
	}

	errorTable := ""
	if rows.Len() > 0 {
		errorTable = fmt.Sprintf(`  <h3 style="color: #333;">Most frequent failures</h3>
  <table style="border-collapse: collapse; width: 100%%;">
    <tr><th style="padding: 6px 12px; text-align: left; border-bottom: 2px solid #ccc;">Rule</th>
    <th style="padding: 6px 12px; text-align: right; border-bottom: 2px solid #ccc;">Invoices</th></tr>
%s  </table>
`, rows.String())
	}

	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Validation run completed</h2>
  <p>Run <code>%s</code> has finished.</p>
  <p>
    Invoices checked: <strong>%d</strong><br>
    Valid: <strong style="color: #16A34A;">%d</strong><br>
    Invalid: <strong style="color: #DC2626;">%d</strong>
  </p>
%s  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Invoice QC - Automated Invoice Validation</p>
</body>
</html>`, alert.Run.ID, alert.Run.TotalCount, alert.Run.ValidCount, alert.Run.InvalidCount, errorTable)
}
