package services

import "bizmarket/models"

// The predicates below are the only place that decides who may see or change
// a listing and its leads. A nil actor is an anonymous viewer.

// CanViewPrivate reports whether actor may see the private fields of l.
func CanViewPrivate(actor *models.Actor, l *models.Listing) bool {
	if actor == nil {
		return false
	}
	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleSeller:
		return actor.UserID == l.SellerID
	case models.RoleAgent:
		return l.IsAssignedTo(actor.UserID)
	}
	return false
}

// CanManageListing reports whether actor is the agent responsible for l. The
// assigned agent alone updates deliverables and the status of the listing's leads.
func CanManageListing(actor *models.Actor, l *models.Listing) bool {
	return actor != nil && actor.Role == models.RoleAgent && l.IsAssignedTo(actor.UserID)
}

// IsOwner reports whether actor is the seller who created l.
func IsOwner(actor *models.Actor, l *models.Listing) bool {
	return actor != nil && actor.Role == models.RoleSeller && actor.UserID == l.SellerID
}
