package services

import "bizmarket/models"

// Mask returns the projection of l that viewer may read. Viewers without an
// ownership or assignment relation, anonymous ones included, get the public view.
func Mask(l *models.Listing, viewer *models.Actor) models.ListingView {
	if CanViewPrivate(viewer, l) {
		return l.Private()
	}
	return l.Public()
}

// MaskAll projects a search result. Lists are always public, whoever asks.
func MaskAll(listings []models.Listing) []models.PublicListing {
	out := make([]models.PublicListing, len(listings))
	for i := range listings {
		out[i] = listings[i].Public()
	}
	return out
}
