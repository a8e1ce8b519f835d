package noop

import (
	"context"
	"log"
	"strings"

	"invoiceqc/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs alerts to stdout.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendQCAlert(_ context.Context, recipients []string, alert port.QCAlert) error {
	log.Printf("[NOOP EMAIL] QC alert for run %s to %s: %d/%d invoices invalid",
		alert.Run.ID, strings.Join(recipients, ", "),
		alert.Run.InvalidCount, alert.Run.TotalCount)
	return nil
}
