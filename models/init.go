package models

import "gorm.io/gorm"

// CreateDefaultAdmin makes sure the bootstrap admin account exists.
// An existing account with the same email is left untouched.
func CreateDefaultAdmin(db *gorm.DB, name, email, passwordHash string) error {
	admin := User{
		Name:          name,
		Email:         email,
		PasswordHash:  passwordHash,
		Role:          RoleAdmin,
		AccountStatus: AccountActive,
	}
	return db.Where("email = ?", email).FirstOrCreate(&admin).Error
}

// Migrate creates or updates the tables of every persisted model.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&User{},
		&Listing{},
		&Lead{},
		&Subscription{},
		&Valuation{},
	)
}
