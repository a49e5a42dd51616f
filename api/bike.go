package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/bike"
	"github.com/pedalpoint/bikerental-backend/internal/middleware"
	"github.com/pedalpoint/bikerental-backend/policy"
)

type bikeResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Brand         string    `json:"brand"`
	Price         float64   `json:"price"`
	Available     bool      `json:"available"`
	OwnerID       uuid.UUID `json:"ownerId"`
	CO2SavedPerKm float64   `json:"co2SavedPerKm"`
	CreatedAt     time.Time `json:"createdAt"`
}

func toBikeResponse(b bike.Bike) bikeResponse {
	return bikeResponse{
		ID:            b.ID,
		Name:          b.Name,
		Brand:         b.Brand,
		Price:         b.Price,
		Available:     b.Available,
		OwnerID:       b.OwnerID,
		CO2SavedPerKm: b.CO2SavedPerKm,
		CreatedAt:     b.CreatedAt,
	}
}

func toBikeResponses(bikes []bike.Bike) []bikeResponse {
	out := make([]bikeResponse, 0, len(bikes))
	for _, b := range bikes {
		out = append(out, toBikeResponse(b))
	}
	return out
}

// bikesHandler lists the whole catalogue. Public.
func (a *API) bikesHandler(c *gin.Context) {
	bikes, err := a.bikes.GetBikes(c)
	if err != nil {
		serviceError(c, err, "failed to list bikes")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "bikes": toBikeResponses(bikes)})
}

// bikeHandler fetches a single bike. Public.
func (a *API) bikeHandler(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid bike ID")
		return
	}

	b, err := a.bikes.GetBike(c, id)
	if err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			fail(c, http.StatusNotFound, "BIKE_NOT_FOUND", "Bike not found")
			return
		}
		serviceError(c, err, "failed to get bike")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bike": toBikeResponse(b)})
}

type createBikeRequest struct {
	Name          string   `json:"name" binding:"required"`
	Brand         string   `json:"brand"`
	Price         float64  `json:"price" binding:"gte=0"`
	Available     *bool    `json:"available"`
	CO2SavedPerKm *float64 `json:"co2SavedPerKm"`
}

func (a *API) createBikeHandler(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}
	if err := actor.CreateBike(); err != nil {
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return
	}

	var req createBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}

	b := &bike.Bike{
		ID:            uuid.New(),
		Name:          req.Name,
		Brand:         req.Brand,
		Price:         req.Price,
		Available:     true,
		OwnerID:       actor.ID,
		CO2SavedPerKm: bike.DefaultCO2SavedPerKm,
	}
	if req.Available != nil {
		b.Available = *req.Available
	}
	if req.CO2SavedPerKm != nil {
		b.CO2SavedPerKm = *req.CO2SavedPerKm
	}

	if err := a.bikes.Create(c, b); err != nil {
		serviceError(c, err, "failed to create bike")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "bike": toBikeResponse(*b)})
}

type updateBikeRequest struct {
	Name          *string  `json:"name"`
	Brand         *string  `json:"brand"`
	Price         *float64 `json:"price"`
	Available     *bool    `json:"available"`
	CO2SavedPerKm *float64 `json:"co2SavedPerKm"`
}

func (a *API) updateBikeHandler(c *gin.Context) {
	_, b, done := a.bikeForManage(c)
	if done {
		return
	}

	var req updateBikeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
		return
	}
	if req.Price != nil && *req.Price < 0 {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Price cannot be negative")
		return
	}

	if req.Name != nil {
		b.Name = *req.Name
	}
	if req.Brand != nil {
		b.Brand = *req.Brand
	}
	if req.Price != nil {
		b.Price = *req.Price
	}
	if req.Available != nil {
		b.Available = *req.Available
	}
	if req.CO2SavedPerKm != nil {
		b.CO2SavedPerKm = *req.CO2SavedPerKm
	}

	if err := a.bikes.Update(c, &b); err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			fail(c, http.StatusNotFound, "BIKE_NOT_FOUND", "Bike not found")
			return
		}
		serviceError(c, err, "failed to update bike")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "bike": toBikeResponse(b)})
}

func (a *API) deleteBikeHandler(c *gin.Context) {
	_, b, done := a.bikeForManage(c)
	if done {
		return
	}

	if err := a.bikes.Delete(c, b.ID, b.OwnerID); err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			fail(c, http.StatusNotFound, "BIKE_NOT_FOUND", "Bike not found")
			return
		}
		serviceError(c, err, "failed to delete bike")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Bike deleted successfully"})
}

// bikeForManage resolves the target bike of an update/delete and runs the
// manage policy. An ownership mismatch answers with the exact same not-found
// shape as a nonexistent id so callers cannot probe for existence. Returns
// done=true when a response has been written.
func (a *API) bikeForManage(c *gin.Context) (policy.Actor, bike.Bike, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return policy.Actor{}, bike.Bike{}, true
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid bike ID")
		return actor, bike.Bike{}, true
	}

	b, err := a.bikes.GetBike(c, id)
	if err != nil {
		if errors.Is(err, bike.ErrNotFound) {
			fail(c, http.StatusNotFound, "BIKE_NOT_FOUND", "Bike not found")
			return actor, bike.Bike{}, true
		}
		serviceError(c, err, "failed to get bike")
		return actor, bike.Bike{}, true
	}

	if err := actor.ManageBike(b.OwnerID); err != nil {
		if errors.Is(err, policy.ErrHidden) {
			fail(c, http.StatusNotFound, "BIKE_NOT_FOUND", "Bike not found")
			return actor, bike.Bike{}, true
		}
		fail(c, http.StatusForbidden, "ACCESS_DENIED", "Access denied")
		return actor, bike.Bike{}, true
	}

	return actor, b, false
}
