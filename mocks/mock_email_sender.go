package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/port"
)

// MockEmailSender is a mock implementation of port.EmailSender.
type MockEmailSender struct {
	mock.Mock
}

func (m *MockEmailSender) SendQCAlert(ctx context.Context, recipients []string, alert port.QCAlert) error {
	args := m.Called(ctx, recipients, alert)
	return args.Error(0)
}
