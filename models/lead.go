package models

import (
	"time"

	"gorm.io/gorm"
)

// LeadStatus tracks how far an agent has followed up on an enquiry.
type LeadStatus string

const (
	LeadNew       LeadStatus = "new"
	LeadContacted LeadStatus = "contacted"
	LeadClosed    LeadStatus = "closed"
)

// ValidLeadStatus reports whether s is one of the known lead states.
func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadNew, LeadContacted, LeadClosed:
		return true
	}
	return false
}

// Lead is a buyer enquiry against a listing
type Lead struct {
	gorm.Model
	ListingID uint       `gorm:"not null;index:idx_leads_listing_buyer,priority:1" json:"listing_id"`
	BuyerID   uint       `gorm:"not null;index:idx_leads_listing_buyer,priority:2;index" json:"buyer_id"`
	Message   string     `gorm:"type:text;not null" json:"message"`
	Status    LeadStatus `gorm:"type:varchar(16);not null;default:'new'" json:"status"`

	Listing *Listing `gorm:"foreignKey:ListingID" json:"-"`
	Buyer   *User    `gorm:"foreignKey:BuyerID" json:"-"`
}

// ListingRef is the part of a listing shown next to a lead.
type ListingRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// BuyerContact is the public contact card of the buyer behind a lead.
type BuyerContact struct {
	Name           string          `json:"name"`
	Email          string          `json:"email"`
	FinancialMeans *FinancialMeans `json:"financial_means"`
}

// LeadView is a lead joined with its listing and, for agents, the buyer's contact.
type LeadView struct {
	ID        uint          `json:"id"`
	ListingID uint          `json:"listing_id"`
	BuyerID   uint          `json:"buyer_id"`
	Message   string        `json:"message"`
	Status    LeadStatus    `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Listing   ListingRef    `json:"listing"`
	Buyer     *BuyerContact `json:"buyer,omitempty"`
}
