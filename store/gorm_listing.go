package store

import (
	"context"
	"time"

	"bizmarket/models"

	"gorm.io/gorm"
)

func (s *GormStore) CreateListing(ctx context.Context, listing *models.Listing) error {
	return translate(s.db.WithContext(ctx).Create(listing).Error)
}

func (s *GormStore) FindListing(ctx context.Context, id uint) (*models.Listing, error) {
	var listing models.Listing
	if err := s.db.WithContext(ctx).First(&listing, id).Error; err != nil {
		return nil, translate(err)
	}
	return &listing, nil
}

func (s *GormStore) SearchListings(ctx context.Context, f ListingFilter) ([]models.Listing, error) {
	q := s.db.WithContext(ctx).Model(&models.Listing{}).Where("status = ?", models.ListingActive)

	if f.Location != "" {
		q = q.Where("region ILIKE ?", containsPattern(f.Location))
	}
	if f.Industry != "" {
		q = q.Where("industry = ?", f.Industry)
	}
	if f.SearchTerm != "" {
		like := containsPattern(f.SearchTerm)
		q = q.Where(s.db.Where("title ILIKE ?", like).Or("industry ILIKE ?", like))
	}
	if f.PriceMin != nil {
		q = q.Where("price >= ?", *f.PriceMin)
	}
	if f.PriceMax != nil {
		q = q.Where("price <= ?", *f.PriceMax)
	}
	if f.NetProfitMin != nil {
		q = q.Where("net_profit >= ?", *f.NetProfitMin)
	}

	var listings []models.Listing
	err := q.Order("CASE WHEN tier = 'premium' THEN 0 ELSE 1 END").
		Order("created_at DESC").
		Order("id DESC").
		Find(&listings).Error
	return listings, translate(err)
}

func (s *GormStore) ListingsBySeller(ctx context.Context, sellerID uint) ([]models.SellerListing, error) {
	var listings []models.Listing
	if err := s.db.WithContext(ctx).
		Where("seller_id = ?", sellerID).
		Order("created_at DESC").
		Find(&listings).Error; err != nil {
		return nil, translate(err)
	}
	if len(listings) == 0 {
		return []models.SellerListing{}, nil
	}

	ids := make([]uint, len(listings))
	for i := range listings {
		ids[i] = listings[i].ID
	}
	var counts []struct {
		ListingID uint
		Total     int64
	}
	if err := s.db.WithContext(ctx).Model(&models.Lead{}).
		Select("listing_id, COUNT(*) AS total").
		Where("listing_id IN ?", ids).
		Group("listing_id").
		Scan(&counts).Error; err != nil {
		return nil, translate(err)
	}
	byListing := make(map[uint]int64, len(counts))
	for _, c := range counts {
		byListing[c.ListingID] = c.Total
	}

	out := make([]models.SellerListing, len(listings))
	for i := range listings {
		out[i] = models.SellerListing{
			PrivateListing: listings[i].Private(),
			LeadCount:      byListing[listings[i].ID],
		}
	}
	return out, nil
}

func (s *GormStore) ListingsByAgent(ctx context.Context, agentID uint) ([]models.Listing, error) {
	var listings []models.Listing
	err := s.db.WithContext(ctx).
		Where("assigned_agent_id = ?", agentID).
		Order("created_at DESC").
		Find(&listings).Error
	return listings, translate(err)
}

func (s *GormStore) PendingListings(ctx context.Context) ([]models.PendingListing, error) {
	var listings []models.Listing
	if err := s.db.WithContext(ctx).
		Preload("Seller").
		Where("status = ?", models.ListingPending).
		Order("created_at ASC").
		Find(&listings).Error; err != nil {
		return nil, translate(err)
	}

	out := make([]models.PendingListing, len(listings))
	for i := range listings {
		out[i].PrivateListing = listings[i].Private()
		if seller := listings[i].Seller; seller != nil {
			out[i].SellerName = seller.Name
			out[i].SellerEmail = seller.Email
		}
	}
	return out, nil
}

func (s *GormStore) CountListings(ctx context.Context, c ListingCount) (int64, error) {
	q := s.db.WithContext(ctx).Model(&models.Listing{})
	if c.Status != nil {
		q = q.Where("status = ?", *c.Status)
	}
	if c.Tier != nil {
		q = q.Where("tier = ?", *c.Tier)
	}
	var n int64
	err := q.Count(&n).Error
	return n, translate(err)
}

func (s *GormStore) TransitionListing(ctx context.Context, t Transition) (bool, error) {
	q := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND status = ?", t.ID, t.From)
	if t.Tier != nil {
		q = q.Where("tier = ?", *t.Tier)
	}
	if t.ExpiredBefore != nil {
		q = q.Where("expiry_date < ?", *t.ExpiredBefore)
	}

	updates := map[string]interface{}{"status": t.To}
	if t.AgentID != nil {
		updates["assigned_agent_id"] = *t.AgentID
	}
	if t.ExpiryDate != nil {
		updates["expiry_date"] = *t.ExpiryDate
	}

	res := q.Updates(updates)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) ReassignAgent(ctx context.Context, listingID, agentID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", listingID).
		Update("assigned_agent_id", agentID)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) UpdateDeliverables(ctx context.Context, listingID, agentID uint, update models.DeliverablesUpdate) (bool, error) {
	if update.Empty() {
		var n int64
		err := s.db.WithContext(ctx).Model(&models.Listing{}).
			Where("id = ? AND assigned_agent_id = ?", listingID, agentID).
			Count(&n).Error
		return n == 1, translate(err)
	}
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND assigned_agent_id = ?", listingID, agentID).
		Updates(update.Columns())
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) RequestFinancing(ctx context.Context, listingID, sellerID uint) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ? AND seller_id = ? AND tier = ?", listingID, sellerID, models.TierPremium).
		Update("financing_requested", true)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *GormStore) IncrementViews(ctx context.Context, listingID uint) error {
	res := s.db.WithContext(ctx).Model(&models.Listing{}).
		Where("id = ?", listingID).
		UpdateColumn("views", gorm.Expr("views + ?", 1))
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormStore) ExpiryCandidates(ctx context.Context, now time.Time, afterID uint, limit int) ([]models.ExpiryCandidate, error) {
	var listings []models.Listing
	if err := s.db.WithContext(ctx).
		Preload("Seller").
		Where("status = ? AND tier = ? AND expiry_date < ? AND id > ?",
			models.ListingActive, models.TierPremium, now, afterID).
		Order("id ASC").
		Limit(limit).
		Find(&listings).Error; err != nil {
		return nil, translate(err)
	}

	out := make([]models.ExpiryCandidate, 0, len(listings))
	for _, l := range listings {
		c := models.ExpiryCandidate{ListingID: l.ID, Title: l.Title}
		if l.ExpiryDate != nil {
			c.ExpiryDate = *l.ExpiryDate
		}
		if l.Seller != nil {
			c.SellerName = l.Seller.Name
			c.SellerEmail = l.Seller.Email
		}
		out = append(out, c)
	}
	return out, nil
}
