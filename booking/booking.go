package booking

import (
	"database/sql"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is a booking's lifecycle state. Customers only ever move a booking
// Pending -> Confirmed via the pay action; admins may set any value directly.
type Status string

const (
	StatusPending   Status = "Pending"
	StatusConfirmed Status = "Confirmed"
	StatusCancelled Status = "Cancelled"
	StatusCompleted Status = "Completed"
)

// Valid reports whether s is one of the four lifecycle states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus normalizes a client-supplied status spelling ("confirmed",
// "CONFIRMED") to its canonical form.
func ParseStatus(raw string) (Status, bool) {
	for _, s := range []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted} {
		if strings.EqualFold(raw, string(s)) {
			return s, true
		}
	}
	return "", false
}

// PaymentStatus is the payment leg of the composite booking state.
type PaymentStatus string

const (
	PaymentUnpaid PaymentStatus = "Unpaid"
	PaymentPaid   PaymentStatus = "Paid"
)

// IsPaidMarker reports whether a stored payment-status spelling means the
// payment was captured. Historical rows carry mixed-case variants ("Paid",
// "paid"); all of them normalize to PaymentPaid.
func IsPaidMarker(raw string) bool {
	return strings.EqualFold(raw, string(PaymentPaid))
}

// Booking links a customer to a bike for a date range. UserID is set exactly
// once at creation and never reassigned by any operation.
type Booking struct {
	ID            uuid.UUID       `db:"id"`
	UserID        uuid.UUID       `db:"user_id"`
	BikeID        uuid.UUID       `db:"bike_id"`
	StartDate     time.Time       `db:"start_date"`
	EndDate       time.Time       `db:"end_date"`
	TotalPrice    float64         `db:"total_price"`
	Status        Status          `db:"status"`
	PaymentStatus PaymentStatus   `db:"payment_status"`
	PaymentID     sql.NullString  `db:"payment_id"`
	PaymentDate   sql.NullTime    `db:"payment_date"`
	PaymentAmount sql.NullFloat64 `db:"payment_amount"`
	CreatedAt     time.Time       `db:"created_at"`
}

// DurationDays is the rental length in whole days, rounded up.
func (b Booking) DurationDays() int {
	diff := b.EndDate.Sub(b.StartDate)
	if diff < 0 {
		diff = -diff
	}
	return int(math.Ceil(diff.Hours() / 24))
}
