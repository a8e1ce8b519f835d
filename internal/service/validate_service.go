package service

import (
	"context"
	"encoding/json"

	"invoiceqc/internal/domain"
	"invoiceqc/internal/validator"
)

// ValidationService runs the rule engine synchronously over an in-request
// batch, with no extraction and no persistence.
type ValidationService interface {
	ValidateRaw(ctx context.Context, batch []json.RawMessage) (validator.Report, error)
	Rules() []validator.RuleInfo
}

type validationService struct {
	engine   *validator.Engine
	maxBatch int
}

// NewValidationService creates a new ValidationService implementation.
func NewValidationService(engine *validator.Engine, maxBatch int) ValidationService {
	return &validationService{engine: engine, maxBatch: maxBatch}
}

func (s *validationService) ValidateRaw(_ context.Context, batch []json.RawMessage) (validator.Report, error) {
	if s.maxBatch > 0 && len(batch) > s.maxBatch {
		return validator.Report{}, domain.ErrBatchTooLarge
	}
	return s.engine.RunRaw(batch), nil
}

func (s *validationService) Rules() []validator.RuleInfo {
	return s.engine.Rules()
}
