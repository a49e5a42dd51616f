// Package policy holds the authorization decision table. Every function is a
// pure check over an explicit Actor and the resource's ownership fields; no
// decision reads ambient request state.
package policy

import (
	"errors"

	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/user"
)

var (
	// ErrForbidden means the actor is authenticated but not entitled.
	ErrForbidden = errors.New("access denied")
	// ErrHidden means the resource must be reported as absent rather than
	// denied, so a prober cannot learn whether it exists. Callers map it to
	// the same not-found shape as a nonexistent id.
	ErrHidden = errors.New("not found or not yours")
)

// Actor is the authenticated identity performing a request.
type Actor struct {
	ID    uuid.UUID
	Role  user.Role
	Email string
}

func (a Actor) is(roles ...user.Role) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// CreateBooking: customers only.
func (a Actor) CreateBooking() error {
	if !a.is(user.RoleCustomer) {
		return ErrForbidden
	}
	return nil
}

// ViewOwnBookings: customers only; the listing itself is scoped to a.ID.
func (a Actor) ViewOwnBookings() error {
	if !a.is(user.RoleCustomer) {
		return ErrForbidden
	}
	return nil
}

// ViewBooking: admins see any booking; a customer sees only their own.
func (a Actor) ViewBooking(renterID uuid.UUID) error {
	if a.is(user.RoleAdmin) {
		return nil
	}
	if a.is(user.RoleCustomer) && a.ID == renterID {
		return nil
	}
	return ErrForbidden
}

// PayBooking: only the renting customer may pay. A foreign customer is
// denied outright (not hidden) because the pay route already implies the
// caller knows the id from their own flow.
func (a Actor) PayBooking(renterID uuid.UUID) error {
	if !a.is(user.RoleCustomer) || a.ID != renterID {
		return ErrForbidden
	}
	return nil
}

// OverrideBookingStatus: admin escape hatch.
func (a Actor) OverrideBookingStatus() error {
	if !a.is(user.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

// DeleteBooking: admins only.
func (a Actor) DeleteBooking() error {
	if !a.is(user.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

// ListAllBookings: admins only.
func (a Actor) ListAllBookings() error {
	if !a.is(user.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

// CreateBike: owners and admins may list bikes.
func (a Actor) CreateBike() error {
	if !a.is(user.RoleOwner, user.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}

// ManageBike guards update and delete. Admins manage any bike; an owner
// manages only their own, and an ownership mismatch is hidden, not denied.
func (a Actor) ManageBike(ownerID uuid.UUID) error {
	if a.is(user.RoleAdmin) {
		return nil
	}
	if !a.is(user.RoleOwner) {
		return ErrForbidden
	}
	if a.ID != ownerID {
		return ErrHidden
	}
	return nil
}

// ViewFleet guards the owner fleet and earnings views, which are scoped to
// the actor's own bikes.
func (a Actor) ViewFleet() error {
	if !a.is(user.RoleOwner) {
		return ErrForbidden
	}
	return nil
}

// ViewDashboard guards the admin dashboard and report generation.
func (a Actor) ViewDashboard() error {
	if !a.is(user.RoleAdmin) {
		return ErrForbidden
	}
	return nil
}
