package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/bike"
	"github.com/pedalpoint/bikerental-backend/booking"
	"github.com/pedalpoint/bikerental-backend/internal/middleware"
)

type bookingResponse struct {
	ID            uuid.UUID             `json:"id"`
	UserID        uuid.UUID             `json:"userId"`
	BikeID        uuid.UUID             `json:"bikeId"`
	StartDate     time.Time             `json:"startDate"`
	EndDate       time.Time             `json:"endDate"`
	DurationDays  int                   `json:"durationDays"`
	TotalPrice    float64               `json:"totalPrice"`
	Status        booking.Status        `json:"status"`
	PaymentStatus booking.PaymentStatus `json:"paymentStatus"`
	PaymentID     *string               `json:"paymentId,omitempty"`
	PaymentDate   *time.Time            `json:"paymentDate,omitempty"`
	PaymentAmount *float64              `json:"paymentAmount,omitempty"`
	CreatedAt     time.Time             `json:"createdAt"`
}

func toBookingResponse(b booking.Booking) bookingResponse {
	resp := bookingResponse{
		ID:            b.ID,
		UserID:        b.UserID,
		BikeID:        b.BikeID,
		StartDate:     b.StartDate,
		EndDate:       b.EndDate,
		DurationDays:  b.DurationDays(),
		TotalPrice:    b.TotalPrice,
		Status:        b.Status,
		PaymentStatus: b.PaymentStatus,
		CreatedAt:     b.CreatedAt,
	}
	if b.PaymentID.Valid {
		resp.PaymentID = &b.PaymentID.String
	}
	if b.PaymentDate.Valid {
		resp.PaymentDate = &b.PaymentDate.Time
	}
	if b.PaymentAmount.Valid {
		resp.PaymentAmount = &b.PaymentAmount.Float64
	}
	return resp
}

func toBookingResponses(bookings []booking.Booking) []bookingResponse {
	out := make([]bookingResponse, 0, len(bookings))
	for _, b := range bookings {
		out = append(out, toBookingResponse(b))
	}
	return out
}

type createBookingRequest struct {
	BikeID     string  `json:"bikeId" binding:"required"`
	StartDate  string  `json:"startDate" binding:"required"`
	EndDate    string  `json:"endDate" binding:"required"`
	TotalPrice float64 `json:"totalPrice" binding:"gte=0"`
}

func (a *API) createBookingHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.CreateBooking(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	bikeID, err := uuid.Parse(req.BikeID)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid bike ID")
		return
	}
	startDate, err := time.Parse(time.RFC3339, req.StartDate)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid startDate format")
		return
	}
	endDate, err := time.Parse(time.RFC3339, req.EndDate)
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid endDate format")
		return
	}
	if !endDate.After(startDate) {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "endDate must be after startDate")
		return
	}

	// The bike must exist, but its calendar is not consulted: overlapping
	// bookings for the same bike are accepted.
	if _, err := a.bikes.GetBike(c, bikeID); err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			fail(c, http.StatusNotFound, "BIKE_NOT_FOUND", "Bike not found")
			return
		}
		serviceError(c, err, "failed to get bike")
		return
	}

	b := &booking.Booking{
		ID:         uuid.New(),
		UserID:     actor.ID,
		BikeID:     bikeID,
		StartDate:  startDate,
		EndDate:    endDate,
		TotalPrice: req.TotalPrice,
	}
	if err := a.bookings.Create(c, b); err != nil {
		serviceError(c, err, "failed to create booking")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "booking": toBookingResponse(*b)})
}

func (a *API) myBookingsHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.ViewOwnBookings(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	bookings, err := a.bookings.GetByUserID(c, actor.ID)
	if err != nil {
		serviceError(c, err, "failed to get user bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": toBookingResponses(bookings)})
}

func (a *API) getBookingHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid booking ID")
		return
	}

	b, err := a.bookings.GetByID(c, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
			return
		}
		serviceError(c, err, "failed to get booking")
		return
	}

	if err := actor.ViewBooking(b.UserID); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Not authorized to view this booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": toBookingResponse(b)})
}

type payBookingRequest struct {
	PaymentID string  `json:"paymentId" binding:"required"`
	Amount    float64 `json:"amount" binding:"gte=0"`
}

// payBookingHandler is the customer pay action: Pending -> Confirmed,
// Unpaid -> Paid, payment fields recorded. The amount is stored as supplied;
// it is not reconciled against the booking's total price.
func (a *API) payBookingHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid booking ID")
		return
	}

	var req payBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b, err := a.bookings.GetByID(c, id)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
			return
		}
		serviceError(c, err, "failed to get booking")
		return
	}

	if err := actor.PayBooking(b.UserID); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Not authorized to pay this booking")
		return
	}

	paid, err := a.bookings.Pay(c, id, actor.ID, req.PaymentID, req.Amount)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrAlreadyPaid):
			fail(c, http.StatusConflict, "BOOKING_ALREADY_PAID", "Booking has already been paid or transitioned")
		case errors.Is(err, booking.ErrNotAuthorized):
			fail(c, http.StatusForbidden, "ACCESS_DENIED", "Not authorized to pay this booking")
		case errors.Is(err, booking.ErrNotFound):
			fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
		default:
			serviceError(c, err, "failed to pay booking")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": toBookingResponse(paid)})
}

func (a *API) allBookingsHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.ListAllBookings(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	bookings, err := a.bookings.GetAll(c)
	if err != nil {
		serviceError(c, err, "failed to list bookings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bookings": toBookingResponses(bookings)})
}

type overrideBookingRequest struct {
	Status string `json:"status" binding:"required"`
}

// overrideBookingHandler is the admin escape hatch: any status may be set
// regardless of the current one, Completed -> Pending included.
func (a *API) overrideBookingHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.OverrideBookingStatus(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid booking ID")
		return
	}

	var req overrideBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	status, ok := booking.ParseStatus(req.Status)
	if !ok {
		fail(c, http.StatusBadRequest, "INVALID_STATUS", "Status must be Pending, Confirmed, Cancelled or Completed")
		return
	}

	b, err := a.bookings.OverrideStatus(c, id, status)
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
			return
		}
		serviceError(c, err, "failed to override booking status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "booking": toBookingResponse(b)})
}

func (a *API) deleteBookingHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.DeleteBooking(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid booking ID")
		return
	}

	if err := a.bookings.Delete(c, id); err != nil {
		if errors.Is(err, booking.ErrNotFound) {
			fail(c, http.StatusNotFound, "BOOKING_NOT_FOUND", "Booking not found")
			return
		}
		serviceError(c, err, "failed to delete booking")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Booking deleted successfully"})
}
