package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedalpoint/bikerental-backend/internal/middleware"
)

// ownerFleetHandler lists the bikes belonging to the requesting owner.
func (a *API) ownerFleetHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.ViewFleet(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	bikes, err := a.bikes.GetBikesByOwner(c, actor.ID)
	if err != nil {
		serviceError(c, err, "failed to list owner fleet")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bikes": toBikeResponses(bikes)})
}

// ownerEarningsHandler sums paid revenue over bookings on the owner's own
// bikes. Paid bookings on other owners' bikes never contribute.
func (a *API) ownerEarningsHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.ViewFleet(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	earnings, err := a.bookings.OwnerEarnings(c, actor.ID)
	if err != nil {
		serviceError(c, err, "failed to aggregate owner earnings")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"totalEarnings": earnings.TotalEarnings,
			"totalRentals":  earnings.TotalRentals,
		},
	})
}
