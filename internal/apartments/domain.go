// Package apartments manages apartment complexes and their flats.
package apartments

import (
	"time"

	"github.com/google/uuid"
)

// Apartment is one managed complex, the tenant boundary of the platform.
type Apartment struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	City      string    `json:"city"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
}

// Flat is one unit inside an apartment.
type Flat struct {
	ID          uuid.UUID `json:"id"`
	ApartmentID uuid.UUID `json:"apartment_id"`
	Block       string    `json:"block"`
	Number      string    `json:"number"`
	Floor       int       `json:"floor"`
	Archived    bool      `json:"archived"`
}
