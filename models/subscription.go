package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus is the settlement state of a subscription payment.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
	PaymentFailed  PaymentStatus = "failed"
)

// Subscription records a premium upgrade paid for a listing
type Subscription struct {
	gorm.Model
	UserID    uint `gorm:"not null;index" json:"user_id"`
	ListingID uint `gorm:"not null;index" json:"listing_id"`

	Amount        decimal.Decimal `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency      string          `gorm:"type:varchar(3);default:'AED'" json:"currency"`
	PaymentStatus PaymentStatus   `gorm:"type:varchar(16);not null;default:'pending'" json:"payment_status"`
	TransactionID string          `gorm:"index" json:"transaction_id"` // tx_<uuid> until a gateway reference is available

	StartDate time.Time `gorm:"not null" json:"start_date"`
	EndDate   time.Time `gorm:"not null" json:"end_date"`

	User    *User    `gorm:"foreignKey:UserID" json:"-"`
	Listing *Listing `gorm:"foreignKey:ListingID" json:"-"`
}
