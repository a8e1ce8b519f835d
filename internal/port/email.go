package port

import (
	"context"

	"invoiceqc/internal/domain"
)

// QCAlert summarizes a completed run with invalid invoices for notification.
type QCAlert struct {
	Run       domain.ValidationRun
	TopErrors []domain.RuleFrequency
}

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	SendQCAlert(ctx context.Context, recipients []string, alert QCAlert) error
}
