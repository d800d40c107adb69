package models

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Tier is the paid classification of a listing.
type Tier string

const (
	TierBasic   Tier = "basic"
	TierPremium Tier = "premium"
)

// ListingStatus is the lifecycle state of a listing.
type ListingStatus string

const (
	ListingPending ListingStatus = "pending"
	ListingActive  ListingStatus = "active"
	ListingSold    ListingStatus = "sold"
	ListingExpired ListingStatus = "expired"
)

// Deliverables are the agent-managed readiness flags of a listing.
type Deliverables struct {
	SalePackReady             bool `gorm:"default:false" json:"sale_pack_ready"`
	FinancialAnalysisReady    bool `gorm:"default:false" json:"financial_analysis_ready"`
	LegalAttestationReady     bool `gorm:"default:false" json:"legal_attestation_ready"`
	TransferArrangementsReady bool `gorm:"default:false" json:"transfer_arrangements_ready"`
}

// DeliverablesUpdate is a partial update of the deliverable flags; nil leaves a flag as is.
type DeliverablesUpdate struct {
	SalePackReady             *bool `json:"sale_pack_ready"`
	FinancialAnalysisReady    *bool `json:"financial_analysis_ready"`
	LegalAttestationReady     *bool `json:"legal_attestation_ready"`
	TransferArrangementsReady *bool `json:"transfer_arrangements_ready"`
}

// Empty reports whether the update sets nothing.
func (d DeliverablesUpdate) Empty() bool {
	return d.SalePackReady == nil && d.FinancialAnalysisReady == nil &&
		d.LegalAttestationReady == nil && d.TransferArrangementsReady == nil
}

// Columns returns the column/value pairs the update sets.
func (d DeliverablesUpdate) Columns() map[string]interface{} {
	cols := make(map[string]interface{}, 4)
	if d.SalePackReady != nil {
		cols["sale_pack_ready"] = *d.SalePackReady
	}
	if d.FinancialAnalysisReady != nil {
		cols["financial_analysis_ready"] = *d.FinancialAnalysisReady
	}
	if d.LegalAttestationReady != nil {
		cols["legal_attestation_ready"] = *d.LegalAttestationReady
	}
	if d.TransferArrangementsReady != nil {
		cols["transfer_arrangements_ready"] = *d.TransferArrangementsReady
	}
	return cols
}

// Apply copies the set flags onto d.
func (d *Deliverables) Apply(u DeliverablesUpdate) {
	if u.SalePackReady != nil {
		d.SalePackReady = *u.SalePackReady
	}
	if u.FinancialAnalysisReady != nil {
		d.FinancialAnalysisReady = *u.FinancialAnalysisReady
	}
	if u.LegalAttestationReady != nil {
		d.LegalAttestationReady = *u.LegalAttestationReady
	}
	if u.TransferArrangementsReady != nil {
		d.TransferArrangementsReady = *u.TransferArrangementsReady
	}
}

// Listing is a business offered for sale
type Listing struct {
	gorm.Model
	SellerID        uint  `gorm:"not null;index" json:"seller_id"`
	AssignedAgentID *uint `gorm:"index" json:"assigned_agent_id"`

	// Public data
	Title     string              `gorm:"not null" json:"title"`
	Industry  string              `gorm:"not null;index" json:"industry"`
	Region    string              `gorm:"not null" json:"region"`
	Price     decimal.Decimal     `gorm:"type:numeric(15,2);not null" json:"price"`
	NetProfit decimal.NullDecimal `gorm:"type:numeric(15,2)" json:"net_profit"`
	Turnover  decimal.NullDecimal `gorm:"type:numeric(15,2)" json:"turnover"`

	// Private data, masked for unrelated viewers
	LegalBusinessName string `json:"legal_business_name"`
	FullAddress       string `gorm:"type:text" json:"full_address"`
	OwnerName         string `json:"owner_name"`

	Tier   Tier          `gorm:"type:varchar(16);not null;default:'basic';index" json:"tier"`
	Status ListingStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"status"`

	Deliverables Deliverables `gorm:"embedded" json:"deliverables"`

	ExpiryDate         *time.Time `gorm:"index" json:"expiry_date"`
	Views              int64      `gorm:"not null;default:0" json:"views"`
	FinancingRequested bool       `gorm:"default:false" json:"financing_requested"`

	Seller *User  `gorm:"foreignKey:SellerID" json:"-"`
	Agent  *User  `gorm:"foreignKey:AssignedAgentID" json:"-"`
	Leads  []Lead `gorm:"foreignKey:ListingID" json:"-"`
}

// IsAssignedTo reports whether agentID is the listing's assigned agent.
func (l *Listing) IsAssignedTo(agentID uint) bool {
	return l.AssignedAgentID != nil && *l.AssignedAgentID == agentID
}

// ListingView is what a reader is allowed to see of a listing.
type ListingView interface {
	ListingID() uint
	Masked() bool
}

// PublicListing is the projection shown to viewers without a relation to the listing.
type PublicListing struct {
	ID                 uint                `json:"id"`
	SellerID           uint                `json:"seller_id"`
	AssignedAgentID    *uint               `json:"assigned_agent_id"`
	Title              string              `json:"title"`
	Industry           string              `json:"industry"`
	Region             string              `json:"region"`
	Price              decimal.Decimal     `json:"price"`
	NetProfit          decimal.NullDecimal `json:"net_profit"`
	Turnover           decimal.NullDecimal `json:"turnover"`
	Tier               Tier                `json:"tier"`
	Status             ListingStatus       `json:"status"`
	Deliverables       Deliverables        `json:"deliverables"`
	ExpiryDate         *time.Time          `json:"expiry_date"`
	Views              int64               `json:"views"`
	FinancingRequested bool                `json:"financing_requested"`
	CreatedAt          time.Time           `json:"created_at"`
	UpdatedAt          time.Time           `json:"updated_at"`
}

func (p PublicListing) ListingID() uint { return p.ID }
func (p PublicListing) Masked() bool { return true }

// PrivateListing is the full projection for the owner, the assigned agent and admins.
type PrivateListing struct {
	PublicListing
	LegalBusinessName string `json:"legal_business_name"`
	FullAddress       string `json:"full_address"`
	OwnerName         string `json:"owner_name"`
}

func (p PrivateListing) Masked() bool { return false }

// Public returns the masked projection of l.
func (l *Listing) Public() PublicListing {
	return PublicListing{
		ID:                 l.ID,
		SellerID:           l.SellerID,
		AssignedAgentID:    l.AssignedAgentID,
		Title:              l.Title,
		Industry:           l.Industry,
		Region:             l.Region,
		Price:              l.Price,
		NetProfit:          l.NetProfit,
		Turnover:           l.Turnover,
		Tier:               l.Tier,
		Status:             l.Status,
		Deliverables:       l.Deliverables,
		ExpiryDate:         l.ExpiryDate,
		Views:              l.Views,
		FinancingRequested: l.FinancingRequested,
		CreatedAt:          l.CreatedAt,
		UpdatedAt:          l.UpdatedAt,
	}
}

// Private returns the unmasked projection of l.
func (l *Listing) Private() PrivateListing {
	return PrivateListing{
		PublicListing:     l.Public(),
		LegalBusinessName: l.LegalBusinessName,
		FullAddress:       l.FullAddress,
		OwnerName:         l.OwnerName,
	}
}

// SellerListing is a seller's own listing together with the number of enquiries it received.
type SellerListing struct {
	PrivateListing
	LeadCount int64 `json:"lead_count"`
}

// PendingListing is a listing waiting for an agent, with the seller's contact.
type PendingListing struct {
	PrivateListing
	SellerName  string `json:"seller_name"`
	SellerEmail string `json:"seller_email"`
}

// ExpiryCandidate is a premium listing due for expiry and the seller to notify.
type ExpiryCandidate struct {
	ListingID   uint
	Title       string
	SellerName  string
	SellerEmail string
	ExpiryDate  time.Time
}
