package store

import (
	"context"

	"bizmarket/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) CreatePaidSubscription(ctx context.Context, sub *models.Subscription) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var listing models.Listing
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&listing, sub.ListingID).Error; err != nil {
			return translate(err)
		}

		if err := tx.Create(sub).Error; err != nil {
			return translate(err)
		}

		return tx.Model(&listing).Updates(map[string]interface{}{
			"tier":        models.TierPremium,
			"expiry_date": sub.EndDate,
		}).Error
	})
}

func (s *GormStore) SubscriptionsByUser(ctx context.Context, userID uint) ([]models.Subscription, error) {
	var subs []models.Subscription
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&subs).Error
	return subs, translate(err)
}
