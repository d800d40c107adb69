package models

import (
	"gorm.io/gorm"
)

// Role is the marketplace role a user account acts under.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleAgent  Role = "agent"
	RoleSeller Role = "seller"
	RoleBuyer  Role = "buyer"
)

// AccountStatus is the approval state of a user account.
type AccountStatus string

const (
	AccountPending  AccountStatus = "pending"
	AccountActive   AccountStatus = "active"
	AccountRejected AccountStatus = "rejected"
)

// FinancialMeans is the self-declared buying capacity of a buyer.
type FinancialMeans string

const (
	MeansUnder100K FinancialMeans = "<100k"
	Means100KTo1M  FinancialMeans = "100k-1M"
	MeansOver1M    FinancialMeans = ">1M"
)

// User represents an account in the marketplace
type User struct {
	gorm.Model

	Name         string  `gorm:"not null" json:"name"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	Mobile       *string `json:"mobile,omitempty"`

	Role          Role          `gorm:"type:varchar(16);not null;default:'buyer';index" json:"role"`
	AccountStatus AccountStatus `gorm:"type:varchar(16);not null;default:'pending';index" json:"account_status"`

	// Buyer specific
	FinancialMeans *FinancialMeans `gorm:"type:varchar(16)" json:"financial_means,omitempty"`
	// Seller specific
	AgreedCommission bool `gorm:"default:false" json:"agreed_commission"`

	Listings         []Listing `gorm:"foreignKey:SellerID" json:"-"`
	AssignedListings []Listing `gorm:"foreignKey:AssignedAgentID" json:"-"`
	Enquiries        []Lead    `gorm:"foreignKey:BuyerID" json:"-"`
}

// IsActive reports whether the account has been approved.
func (u *User) IsActive() bool {
	return u.AccountStatus == AccountActive
}

// Actor is the authenticated identity an operation runs on behalf of.
type Actor struct {
	UserID uint
	Role   Role
}

// ActorOf builds the actor for an authenticated user. A nil user yields nil.
func ActorOf(u *User) *Actor {
	if u == nil {
		return nil
	}
	return &Actor{UserID: u.ID, Role: u.Role}
}

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleAgent, RoleSeller, RoleBuyer:
		return true
	}
	return false
}

// ValidAccountStatus reports whether s is one of the known account states.
func ValidAccountStatus(s AccountStatus) bool {
	switch s {
	case AccountPending, AccountActive, AccountRejected:
		return true
	}
	return false
}
