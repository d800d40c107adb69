package store

import (
	"context"
	"strings"

	"bizmarket/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func (s *GormStore) CreateUser(ctx context.Context, user *models.User) error {
	return translate(s.db.WithContext(ctx).Create(user).Error)
}

func (s *GormStore) FindUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) FindUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(email)).
		First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (s *GormStore) ListUsers(ctx context.Context, f UserFilter) ([]models.User, error) {
	var users []models.User
	err := userScope(s.db.WithContext(ctx), f).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true}).
		Find(&users).Error
	return users, translate(err)
}

func (s *GormStore) CountUsers(ctx context.Context, f UserFilter) (int64, error) {
	var n int64
	err := userScope(s.db.WithContext(ctx).Model(&models.User{}), f).Count(&n).Error
	return n, translate(err)
}

func (s *GormStore) UpdateAccountStatus(ctx context.Context, id uint, status models.AccountStatus) error {
	res := s.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", id).
		Update("account_status", status)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func userScope(db *gorm.DB, f UserFilter) *gorm.DB {
	if f.Role != "" {
		db = db.Where("role = ?", f.Role)
	}
	if f.Status != "" {
		db = db.Where("account_status = ?", f.Status)
	}
	return db
}

func (s *GormStore) CreateValuation(ctx context.Context, valuation *models.Valuation) error {
	return translate(s.db.WithContext(ctx).Create(valuation).Error)
}
