package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

var (
	ErrNotFound      = errors.New("booking not found")
	ErrNotAuthorized = errors.New("not authorized to modify this booking")
	// ErrAlreadyPaid is reported when a pay action races or repeats: the
	// booking exists and belongs to the caller but is no longer Pending.
	ErrAlreadyPaid = errors.New("booking already paid or transitioned")
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(ctx context.Context, b *Booking) error {
	return r.db.GetContext(ctx, b, createBookingQuery,
		b.ID, b.UserID, b.BikeID, b.StartDate, b.EndDate, b.TotalPrice)
}

const createBookingQuery = `
INSERT INTO bookings (id, user_id, bike_id, start_date, end_date, total_price, status, payment_status, created_at)
VALUES ($1, $2, $3, $4, $5, $6, 'Pending', 'Unpaid', now())
RETURNING *
`

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, getByIDQuery, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

const getByIDQuery = `SELECT * FROM bookings WHERE id = $1`

// GetByUserID fetches all bookings made by a user, newest first.
func (r *Repository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, getByUserIDQuery, userID)
	return bookings, err
}

const getByUserIDQuery = `SELECT * FROM bookings WHERE user_id = $1 ORDER BY created_at DESC`

func (r *Repository) GetAll(ctx context.Context) ([]Booking, error) {
	var bookings []Booking
	err := r.db.SelectContext(ctx, &bookings, getAllQuery)
	return bookings, err
}

const getAllQuery = `SELECT * FROM bookings ORDER BY created_at DESC`

// Pay confirms a Pending booking and records the payment in one conditional
// update. The WHERE clause is the race guard: two concurrent pay calls on the
// same booking produce exactly one Confirmed transition; the loser matches
// zero rows and is classified by a follow-up read.
func (r *Repository) Pay(ctx context.Context, id, userID uuid.UUID, paymentID string, amount float64) (Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, payBookingQuery, id, userID, paymentID, amount)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return Booking{}, err
	}

	// Zero rows matched: work out which precondition failed.
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return Booking{}, err
	}
	if current.UserID != userID {
		return Booking{}, ErrNotAuthorized
	}
	return Booking{}, ErrAlreadyPaid
}

const payBookingQuery = `
UPDATE bookings
SET status = 'Confirmed', payment_status = 'Paid', payment_id = $3, payment_amount = $4, payment_date = now()
WHERE id = $1 AND user_id = $2 AND status = 'Pending'
RETURNING *
`

// OverrideStatus sets a booking's status directly with no adjacency
// restriction. Admin escape hatch: Completed -> Pending is permitted.
func (r *Repository) OverrideStatus(ctx context.Context, id uuid.UUID, status Status) (Booking, error) {
	var b Booking
	err := r.db.GetContext(ctx, &b, overrideStatusQuery, id, status)
	if errors.Is(err, sql.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	return b, err
}

const overrideStatusQuery = `UPDATE bookings SET status = $2 WHERE id = $1 RETURNING *`

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, deleteBookingQuery, id)
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

const deleteBookingQuery = `DELETE FROM bookings WHERE id = $1`

func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, countBookingsQuery)
	return n, err
}

const countBookingsQuery = `SELECT count(*) FROM bookings`

func (r *Repository) CountByStatus(ctx context.Context, status Status) (int, error) {
	var n int
	err := r.db.GetContext(ctx, &n, countByStatusQuery, status)
	return n, err
}

const countByStatusQuery = `SELECT count(*) FROM bookings WHERE status = $1`

// TotalRevenue sums total_price over paid bookings. The paid match is
// case-insensitive to cover historical spellings of the marker.
func (r *Repository) TotalRevenue(ctx context.Context) (float64, error) {
	var total float64
	err := r.db.GetContext(ctx, &total, totalRevenueQuery)
	return total, err
}

const totalRevenueQuery = `
SELECT COALESCE(sum(total_price), 0) FROM bookings WHERE lower(payment_status) = 'paid'
`

// RecentDetail is a booking joined with renter and bike display fields for
// the admin dashboard's recent-activity list.
type RecentDetail struct {
	Booking
	UserName  sql.NullString `db:"user_name"`
	UserEmail sql.NullString `db:"user_email"`
	BikeName  sql.NullString `db:"bike_name"`
}

func (r *Repository) Recent(ctx context.Context, limit int) ([]RecentDetail, error) {
	var rows []RecentDetail
	err := r.db.SelectContext(ctx, &rows, recentBookingsQuery, limit)
	return rows, err
}

const recentBookingsQuery = `
SELECT bk.*, u.name AS user_name, u.email AS user_email, b.name AS bike_name
FROM bookings bk
LEFT JOIN users u ON u.id = bk.user_id
LEFT JOIN bikes b ON b.id = bk.bike_id
ORDER BY bk.created_at DESC
LIMIT $1
`

// MonthRevenue is one calendar-month bucket of paid revenue.
type MonthRevenue struct {
	Month   time.Time `db:"month"`
	Revenue float64   `db:"revenue"`
}

// RevenueByMonth buckets paid revenue by calendar month for a trailing
// window of the given number of months.
func (r *Repository) RevenueByMonth(ctx context.Context, months int) ([]MonthRevenue, error) {
	var rows []MonthRevenue
	err := r.db.SelectContext(ctx, &rows, revenueByMonthQuery, months)
	return rows, err
}

const revenueByMonthQuery = `
SELECT date_trunc('month', created_at) AS month, COALESCE(sum(total_price), 0) AS revenue
FROM bookings
WHERE lower(payment_status) = 'paid'
  AND created_at >= date_trunc('month', now()) - ($1 - 1) * interval '1 month'
GROUP BY 1
ORDER BY 1
`

// BikeUsage ranks a bike by how often it was booked and how much paid
// revenue it accumulated.
type BikeUsage struct {
	BikeID   uuid.UUID      `db:"bike_id"`
	BikeName sql.NullString `db:"bike_name"`
	Bookings int            `db:"bookings"`
	Revenue  float64        `db:"revenue"`
}

func (r *Repository) TopBikes(ctx context.Context, limit int) ([]BikeUsage, error) {
	var rows []BikeUsage
	err := r.db.SelectContext(ctx, &rows, topBikesQuery, limit)
	return rows, err
}

const topBikesQuery = `
SELECT bk.bike_id, b.name AS bike_name, count(*) AS bookings,
       COALESCE(sum(bk.total_price) FILTER (WHERE lower(bk.payment_status) = 'paid'), 0) AS revenue
FROM bookings bk
LEFT JOIN bikes b ON b.id = bk.bike_id
GROUP BY bk.bike_id, b.name
ORDER BY bookings DESC, revenue DESC
LIMIT $1
`

// Earnings is the paid-revenue summary for one owner's fleet.
type Earnings struct {
	TotalEarnings float64 `db:"total_earnings"`
	TotalRentals  int     `db:"total_rentals"`
}

// OwnerEarnings sums paid revenue over bookings whose bike belongs to the
// given owner. Bookings on other owners' bikes never contribute.
func (r *Repository) OwnerEarnings(ctx context.Context, ownerID uuid.UUID) (Earnings, error) {
	var e Earnings
	err := r.db.GetContext(ctx, &e, ownerEarningsQuery, ownerID)
	return e, err
}

const ownerEarningsQuery = `
SELECT COALESCE(sum(bk.total_price), 0) AS total_earnings, count(*) AS total_rentals
FROM bookings bk
JOIN bikes b ON b.id = bk.bike_id
WHERE b.owner_id = $1 AND lower(bk.payment_status) = 'paid'
`

// StatusAggregate is one row of the per-status report grouping.
type StatusAggregate struct {
	Status  Status  `db:"status"`
	Count   int     `db:"count"`
	Revenue float64 `db:"revenue"`
}

func (r *Repository) SummaryByStatus(ctx context.Context) ([]StatusAggregate, error) {
	var rows []StatusAggregate
	err := r.db.SelectContext(ctx, &rows, summaryByStatusQuery)
	return rows, err
}

const summaryByStatusQuery = `
SELECT status, count(*) AS count, COALESCE(sum(total_price), 0) AS revenue
FROM bookings
GROUP BY status
ORDER BY status
`
