package store

import (
	"context"
	"time"

	"bizmarket/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateLeadUnlessRecent locks the listing row so two enquiries from the same
// buyer cannot both pass the cooldown check.
func (s *GormStore) CreateLeadUnlessRecent(ctx context.Context, lead *models.Lead, since time.Time) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Select("id").
			First(&listing, lead.ListingID).Error; err != nil {
			return translate(err)
		}

		var recent int64
		if err := tx.Model(&models.Lead{}).
			Where("listing_id = ? AND buyer_id = ? AND created_at >= ?", lead.ListingID, lead.BuyerID, since).
			Count(&recent).Error; err != nil {
			return translate(err)
		}
		if recent > 0 {
			return ErrCooldown
		}

		return translate(tx.Create(lead).Error)
	})
}

func (s *GormStore) FindLead(ctx context.Context, id uint) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.WithContext(ctx).First(&lead, id).Error; err != nil {
		return nil, translate(err)
	}
	return &lead, nil
}

func (s *GormStore) LeadsForAgent(ctx context.Context, agentID uint) ([]models.LeadView, error) {
	assigned := s.db.Model(&models.Listing{}).Select("id").Where("assigned_agent_id = ?", agentID)

	var leads []models.Lead
	if err := s.db.WithContext(ctx).
		Preload("Listing").
		Preload("Buyer").
		Where("listing_id IN (?)", assigned).
		Order("created_at DESC").
		Find(&leads).Error; err != nil {
		return nil, translate(err)
	}
	return leadViews(leads, true), nil
}

func (s *GormStore) LeadsForBuyer(ctx context.Context, buyerID uint) ([]models.LeadView, error) {
	var leads []models.Lead
	if err := s.db.WithContext(ctx).
		Preload("Listing").
		Where("buyer_id = ?", buyerID).
		Order("created_at DESC").
		Find(&leads).Error; err != nil {
		return nil, translate(err)
	}
	return leadViews(leads, false), nil
}

func (s *GormStore) UpdateLeadStatus(ctx context.Context, leadID, agentID uint, status models.LeadStatus) (bool, error) {
	assigned := s.db.Model(&models.Listing{}).Select("id").Where("assigned_agent_id = ?", agentID)
	res := s.db.WithContext(ctx).Model(&models.Lead{}).
		Where("id = ? AND listing_id IN (?)", leadID, assigned).
		Update("status", status)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func leadViews(leads []models.Lead, withBuyer bool) []models.LeadView {
	out := make([]models.LeadView, len(leads))
	for i := range leads {
		out[i] = leadView(&leads[i], leads[i].Listing, leads[i].Buyer, withBuyer)
	}
	return out
}

func leadView(l *models.Lead, listing *models.Listing, buyer *models.User, withBuyer bool) models.LeadView {
	v := models.LeadView{
		ID:        l.ID,
		ListingID: l.ListingID,
		BuyerID:   l.BuyerID,
		Message:   l.Message,
		Status:    l.Status,
		CreatedAt: l.CreatedAt,
		UpdatedAt: l.UpdatedAt,
		Listing:   models.ListingRef{ID: l.ListingID},
	}
	if listing != nil {
		v.Listing.Title = listing.Title
	}
	if withBuyer && buyer != nil {
		v.Buyer = &models.BuyerContact{
			Name:           buyer.Name,
			Email:          buyer.Email,
			FinancialMeans: buyer.FinancialMeans,
		}
	}
	return v
}
