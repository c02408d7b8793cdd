package shared

import (
	"context"

	"github.com/google/uuid"

	"github.com/societydesk/societydesk/internal/principal"
)

// AdminApartment returns the apartment scope of the authenticated admin.
func AdminApartment(ctx context.Context) (uuid.UUID, bool) {
	auth := AuthFromContext(ctx)
	if auth == nil {
		return uuid.Nil, false
	}
	admin, ok := auth.Principal.(*principal.Admin)
	if !ok {
		return uuid.Nil, false
	}
	return admin.ApartmentID, true
}

// GuardApartment returns the apartment scope of the authenticated guard.
func GuardApartment(ctx context.Context) (uuid.UUID, bool) {
	auth := AuthFromContext(ctx)
	if auth == nil {
		return uuid.Nil, false
	}
	guard, ok := auth.Principal.(*principal.Guard)
	if !ok {
		return uuid.Nil, false
	}
	return guard.ApartmentID, true
}

// ClientResidence returns the authenticated client's active residence scope.
// ok is false when there is no client principal or no active flat context;
// routes that require a residence reject with Forbidden on their own.
func ClientResidence(ctx context.Context) (apartmentID, flatID uuid.UUID, ok bool) {
	auth := AuthFromContext(ctx)
	if auth == nil {
		return uuid.Nil, uuid.Nil, false
	}
	if _, isClient := auth.Principal.(*principal.Client); !isClient {
		return uuid.Nil, uuid.Nil, false
	}
	if auth.ApartmentID == nil || auth.FlatID == nil {
		return uuid.Nil, uuid.Nil, false
	}
	return *auth.ApartmentID, *auth.FlatID, true
}
