package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/booking"
	"github.com/pedalpoint/bikerental-backend/internal/middleware"
	"github.com/pedalpoint/bikerental-backend/report"
)

const (
	recentBookingsLimit = 6
	monthlyWindowMonths = 6
	topBikesLimit       = 5
)

type recentBookingResponse struct {
	bookingResponse
	UserName  string `json:"userName,omitempty"`
	UserEmail string `json:"userEmail,omitempty"`
	BikeName  string `json:"bikeName,omitempty"`
}

type monthRevenueResponse struct {
	Month   string  `json:"month"`
	Revenue float64 `json:"revenue"`
}

type topBikeResponse struct {
	BikeID   uuid.UUID `json:"bikeId"`
	BikeName string    `json:"bikeName,omitempty"`
	Bookings int       `json:"bookings"`
	Revenue  float64   `json:"revenue"`
}

// dashboardHandler recomputes the platform-wide aggregate view on each
// request; nothing is cached. Any storage failure aborts the whole response.
func (a *API) dashboardHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.ViewDashboard(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	totalBookings, err := a.bookings.Count(c)
	if err != nil {
		serviceError(c, err, "failed to count bookings")
		return
	}
	totalBikes, err := a.bikes.Count(c)
	if err != nil {
		serviceError(c, err, "failed to count bikes")
		return
	}
	totalUsers, err := a.users.CountNonAdmin(c)
	if err != nil {
		serviceError(c, err, "failed to count users")
		return
	}
	totalRevenue, err := a.bookings.TotalRevenue(c)
	if err != nil {
		serviceError(c, err, "failed to sum revenue")
		return
	}
	pending, err := a.bookings.CountByStatus(c, booking.StatusPending)
	if err != nil {
		serviceError(c, err, "failed to count pending bookings")
		return
	}
	confirmed, err := a.bookings.CountByStatus(c, booking.StatusConfirmed)
	if err != nil {
		serviceError(c, err, "failed to count confirmed bookings")
		return
	}
	cancelled, err := a.bookings.CountByStatus(c, booking.StatusCancelled)
	if err != nil {
		serviceError(c, err, "failed to count cancelled bookings")
		return
	}
	recent, err := a.bookings.Recent(c, recentBookingsLimit)
	if err != nil {
		serviceError(c, err, "failed to list recent bookings")
		return
	}
	monthly, err := a.bookings.RevenueByMonth(c, monthlyWindowMonths)
	if err != nil {
		serviceError(c, err, "failed to bucket monthly revenue")
		return
	}
	topBikes, err := a.bookings.TopBikes(c, topBikesLimit)
	if err != nil {
		serviceError(c, err, "failed to rank bikes")
		return
	}

	recentResponses := make([]recentBookingResponse, 0, len(recent))
	for _, row := range recent {
		recentResponses = append(recentResponses, recentBookingResponse{
			bookingResponse: toBookingResponse(row.Booking),
			UserName:        row.UserName.String,
			UserEmail:       row.UserEmail.String,
			BikeName:        row.BikeName.String,
		})
	}

	monthlyResponses := make([]monthRevenueResponse, 0, len(monthly))
	for _, m := range monthly {
		monthlyResponses = append(monthlyResponses, monthRevenueResponse{
			Month:   m.Month.Format("2006-01"),
			Revenue: m.Revenue,
		})
	}

	topBikeResponses := make([]topBikeResponse, 0, len(topBikes))
	for _, tb := range topBikes {
		topBikeResponses = append(topBikeResponses, topBikeResponse{
			BikeID:   tb.BikeID,
			BikeName: tb.BikeName.String,
			Bookings: tb.Bookings,
			Revenue:  tb.Revenue,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"success":        true,
		"stats":          report.BuildStats(totalBookings, totalBikes, totalUsers, totalRevenue, pending, confirmed, cancelled),
		"recentBookings": recentResponses,
		"monthlyRevenue": monthlyResponses,
		"topBikes":       topBikeResponses,
	})
}

func (a *API) reportHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.ViewDashboard(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	rows, err := a.bookings.SummaryByStatus(c)
	if err != nil {
		serviceError(c, err, "failed to aggregate booking summary")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "report": report.Build(time.Now(), rows)})
}
