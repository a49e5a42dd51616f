package bike

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var ErrNotFound = errors.New("bike not found")

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) GetBikes(ctx context.Context) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, getBikesQuery)
	return bikes, err
}

const getBikesQuery = `SELECT * FROM bikes ORDER BY created_at DESC`

func (r *Repository) GetBike(ctx context.Context, id uuid.UUID) (Bike, error) {
	var b Bike
	err := r.db.GetContext(ctx, &b, getBikeQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

const getBikeQuery = `SELECT * FROM bikes WHERE id = $1`

// GetBikeForOwner fetches a bike only if it belongs to the given owner.
// A bike that exists but belongs to someone else reports ErrNotFound, the
// same answer as a nonexistent id, so callers cannot probe for existence.
func (r *Repository) GetBikeForOwner(ctx context.Context, id, ownerID uuid.UUID) (Bike, error) {
	var b Bike
	err := r.db.GetContext(ctx, &b, getBikeForOwnerQuery, id, ownerID)
	if errors.Is(err, sql.ErrNoRows) {
		return b, ErrNotFound
	}
	return b, err
}

const getBikeForOwnerQuery = `SELECT * FROM bikes WHERE id = $1 AND owner_id = $2`

func (r *Repository) GetBikesByOwner(ctx context.Context, ownerID uuid.UUID) ([]Bike, error) {
	var bikes []Bike
	err := r.db.SelectContext(ctx, &bikes, getBikesByOwnerQuery, ownerID)
	return bikes, err
}

const getBikesByOwnerQuery = `SELECT * FROM bikes WHERE owner_id = $1 ORDER BY created_at DESC`

func (r *Repository) Create(ctx context.Context, b *Bike) error {
	return r.db.GetContext(ctx, b, createBikeQuery,
		b.ID, b.Name, b.Brand, b.Price, b.Available, b.OwnerID, b.CO2SavedPerKm)
}

const createBikeQuery = `
INSERT INTO bikes (id, name, brand, price, available, owner_id, co2_saved_per_km, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())
RETURNING *
`

// Update writes the mutable fields of a bike, scoped to its owner. Zero rows
// matched means not-found-or-not-yours and reports ErrNotFound.
func (r *Repository) Update(ctx context.Context, b *Bike) error {
	err := r.db.GetContext(ctx, b, updateBikeQuery,
		b.ID, b.OwnerID, b.Name, b.Brand, b.Price, b.Available, b.CO2SavedPerKm)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

const updateBikeQuery = `
UPDATE bikes
SET name = $3, brand = $4, price = $5, available = $6, co2_saved_per_km = $7
WHERE id = $1 AND owner_id = $2
RETURNING *
`

// Delete removes a bike, scoped to its owner. Existing bookings keep their
// bike_id reference; deletion does not cascade.
func (r *Repository) Delete(ctx context.Context, id, ownerID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteBikeQuery, id, ownerID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

const deleteBikeQuery = `DELETE FROM bikes WHERE id = $1 AND owner_id = $2`

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, countBikesQuery)
	return n, err
}

const countBikesQuery = `SELECT count(*) FROM bikes`
