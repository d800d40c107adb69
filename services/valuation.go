package services

import (
	"context"
	"strings"

	"bizmarket/models"
	"bizmarket/store"

	"github.com/badoux/checkmail"
)

type ValuationInput struct {
	ContactName     string
	ContactEmail    string
	Phone           string
	BusinessDetails string
}

// ValuationService stores valuation requests from prospective sellers.
type ValuationService struct {
	store store.ValuationStore
}

func NewValuationService(st store.ValuationStore) *ValuationService {
	return &ValuationService{store: st}
}

func (s *ValuationService) Submit(ctx context.Context, in ValuationInput) (*models.Valuation, error) {
	email := strings.TrimSpace(in.ContactEmail)
	if err := checkmail.ValidateFormat(email); err != nil {
		return nil, newError(KindValidation, "invalid contact email")
	}
	if strings.TrimSpace(in.BusinessDetails) == "" {
		return nil, newError(KindValidation, "business details are required")
	}

	name := strings.TrimSpace(in.ContactName)
	if name == "" {
		name = "Anonymous"
	}
	v := &models.Valuation{
		ContactName:     name,
		ContactEmail:    email,
		Phone:           strings.TrimSpace(in.Phone),
		BusinessDetails: in.BusinessDetails,
		Status:          models.ValuationNew,
	}
	if err := s.store.CreateValuation(ctx, v); err != nil {
		return nil, storeError(err, "valuation")
	}
	return v, nil
}
