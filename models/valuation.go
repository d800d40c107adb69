package models

import "gorm.io/gorm"

// ValuationStatus tracks the handling of a valuation request.
type ValuationStatus string

const (
	ValuationNew       ValuationStatus = "new"
	ValuationReviewed  ValuationStatus = "reviewed"
	ValuationContacted ValuationStatus = "contacted"
)

// Valuation is a request from a prospective seller to have a business valued
type Valuation struct {
	gorm.Model
	ContactName     string          `gorm:"not null" json:"contact_name"`
	ContactEmail    string          `gorm:"not null" json:"contact_email"`
	Phone           string          `json:"phone"`
	BusinessDetails string          `gorm:"type:text;not null" json:"business_details"`
	Status          ValuationStatus `gorm:"type:varchar(16);not null;default:'new'" json:"status"`
}
