package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"invoiceqc/internal/validator"
)

// MockValidationService is a mock implementation of service.ValidationService.
type MockValidationService struct {
	mock.Mock
}

func (m *MockValidationService) ValidateRaw(ctx context.Context, batch []json.RawMessage) (validator.Report, error) {
	args := m.Called(ctx, batch)
	if args.Get(0) == nil {
		return validator.Report{}, args.Error(1)
	}
	return args.Get(0).(validator.Report), args.Error(1)
}

func (m *MockValidationService) Rules() []validator.RuleInfo {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]validator.RuleInfo)
}
