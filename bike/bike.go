// Package bike
package bike

import (
	"time"

	"github.com/google/uuid"
)

// DefaultCO2SavedPerKm is the eco-metric applied when an owner does not
// supply one: kilograms of CO2 saved per kilometre compared to driving.
const DefaultCO2SavedPerKm = 0.15

// Bike represents a rentable unit listed by an owner. A bike carries no
// reservation calendar; the available flag is toggled manually by its owner
// and is not recomputed from bookings.
type Bike struct {
	ID    uuid.UUID `db:"id"`
	Name  string    `db:"name"`
	Brand string    `db:"brand"`
	// Price is the rental price in the platform currency. Never negative.
	Price     float64 `db:"price"`
	Available bool    `db:"available"`
	// OwnerID is the user who listed the bike and the only non-admin
	// identity allowed to mutate it.
	OwnerID       uuid.UUID `db:"owner_id"`
	CO2SavedPerKm float64   `db:"co2_saved_per_km"`
	CreatedAt     time.Time `db:"created_at"`
}
