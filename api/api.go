package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pedalpoint/bikerental-backend/bike"
	"github.com/pedalpoint/bikerental-backend/booking"
	"github.com/pedalpoint/bikerental-backend/internal/credential"
	"github.com/pedalpoint/bikerental-backend/internal/middleware"
	"github.com/pedalpoint/bikerental-backend/internal/o11y"
	"github.com/pedalpoint/bikerental-backend/internal/payment"
	"github.com/pedalpoint/bikerental-backend/internal/token"
	"github.com/pedalpoint/bikerental-backend/user"
)

// UserStore is the persistence surface the API needs for identities.
type UserStore interface {
	Create(ctx context.Context, u *user.User) error
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	CountNonAdmin(ctx context.Context) (int, error)
}

// BikeStore is the persistence surface for the bike fleet.
type BikeStore interface {
	GetBikes(ctx context.Context) ([]bike.Bike, error)
	GetBike(ctx context.Context, id uuid.UUID) (bike.Bike, error)
	GetBikeForOwner(ctx context.Context, id, ownerID uuid.UUID) (bike.Bike, error)
	GetBikesByOwner(ctx context.Context, ownerID uuid.UUID) ([]bike.Bike, error)
	Create(ctx context.Context, b *bike.Bike) error
	Update(ctx context.Context, b *bike.Bike) error
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
	Count(ctx context.Context) (int, error)
}

// BookingStore is the persistence surface for the booking lifecycle and its
// derived aggregations.
type BookingStore interface {
	Create(ctx context.Context, b *booking.Booking) error
	GetByID(ctx context.Context, id uuid.UUID) (booking.Booking, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) ([]booking.Booking, error)
	GetAll(ctx context.Context) ([]booking.Booking, error)
	Pay(ctx context.Context, id, userID uuid.UUID, paymentID string, amount float64) (booking.Booking, error)
	OverrideStatus(ctx context.Context, id uuid.UUID, status booking.Status) (booking.Booking, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int, error)
	CountByStatus(ctx context.Context, status booking.Status) (int, error)
	TotalRevenue(ctx context.Context) (float64, error)
	Recent(ctx context.Context, limit int) ([]booking.RecentDetail, error)
	RevenueByMonth(ctx context.Context, months int) ([]booking.MonthRevenue, error)
	TopBikes(ctx context.Context, limit int) ([]booking.BikeUsage, error)
	OwnerEarnings(ctx context.Context, ownerID uuid.UUID) (booking.Earnings, error)
	SummaryByStatus(ctx context.Context) ([]booking.StatusAggregate, error)
}

type API struct {
	r        *gin.Engine
	users    UserStore
	bikes    BikeStore
	bookings BookingStore
	payments payment.IntentClient
	tokens   *token.Manager
	hasher   credential.Hasher
}

func New(us UserStore, bs BikeStore, bks BookingStore, pc payment.IntentClient,
	tm *token.Manager, h credential.Hasher, obs *o11y.Observability,
	metricsUsername, metricsPassword string,
) *API {
	a := &API{
		r:        gin.New(),
		users:    us,
		bikes:    bs,
		bookings: bks,
		payments: pc,
		tokens:   tm,
		hasher:   h,
	}

	a.r.Use(gin.Recovery())
	a.r.Use(middleware.Tracing())
	a.r.Use(middleware.Logging(obs.Logger))
	a.r.Use(middleware.Metrics(obs.Registry))

	a.r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	metricsHandler := promhttp.HandlerFor(obs.Registry, promhttp.HandlerOpts{})
	a.r.GET("/metrics", func(c *gin.Context) {
		if metricsUsername != "" {
			u, p, ok := c.Request.BasicAuth()
			if !ok || u != metricsUsername || p != metricsPassword {
				c.Header("WWW-Authenticate", `Basic realm="metrics"`)
				c.AbortWithStatus(http.StatusUnauthorized)
				return
			}
		}
		metricsHandler.ServeHTTP(c.Writer, c.Request)
	})

	a.routes()

	return a
}

func (a *API) routes() {
	auth := middleware.Auth(a.tokens)
	customerOnly := middleware.RequireRoles(user.RoleCustomer)
	ownerOnly := middleware.RequireRoles(user.RoleOwner)
	adminOnly := middleware.RequireRoles(user.RoleAdmin)
	listerOnly := middleware.RequireRoles(user.RoleOwner, user.RoleAdmin)

	api := a.r.Group("/api")

	api.POST("/users/register", a.registerHandler)
	api.POST("/users/login", a.loginHandler)

	// The /bikes/owner route must register before /bikes/:id.
	api.GET("/bikes", a.bikesHandler)
	api.GET("/bikes/owner", auth, ownerOnly, a.ownerFleetHandler)
	api.GET("/bikes/:id", a.bikeHandler)
	api.POST("/bikes", auth, listerOnly, a.createBikeHandler)
	api.PATCH("/bikes/:id", auth, listerOnly, a.updateBikeHandler)
	api.DELETE("/bikes/:id", auth, listerOnly, a.deleteBikeHandler)

	bookings := api.Group("/bookings", auth)
	bookings.POST("", customerOnly, a.createBookingHandler)
	bookings.GET("/my", customerOnly, a.myBookingsHandler)
	bookings.GET("", adminOnly, a.allBookingsHandler)
	bookings.GET("/:id", a.getBookingHandler)
	bookings.PUT("/:id/pay", customerOnly, a.payBookingHandler)
	bookings.PUT("/:id", adminOnly, a.overrideBookingHandler)
	bookings.DELETE("/:id", adminOnly, a.deleteBookingHandler)

	owner := api.Group("/owner", auth, ownerOnly)
	owner.GET("/my-fleet", a.ownerFleetHandler)
	owner.GET("/earnings", a.ownerEarningsHandler)
	owner.POST("/add-bike", a.createBikeHandler)
	owner.PUT("/bike/:id", a.updateBikeHandler)
	owner.DELETE("/bike/:id", a.deleteBikeHandler)

	adminAuth := api.Group("/admin/auth")
	adminAuth.POST("/login", a.adminLoginHandler)
	adminAuth.GET("/logout", a.adminLogoutHandler)
	adminAuth.GET("/check-session", auth, adminOnly, a.checkSessionHandler)

	admin := api.Group("/admin", auth, adminOnly)
	admin.GET("/dashboard", a.dashboardHandler)
	admin.GET("/report", a.reportHandler)
	admin.POST("/bikes", a.createBikeHandler)
	admin.PUT("/bikes/:id", a.updateBikeHandler)
	admin.DELETE("/bikes/:id", a.deleteBikeHandler)
	admin.PUT("/bookings/:id/status", a.overrideBookingHandler)
	admin.DELETE("/bookings/:id", a.deleteBookingHandler)

	api.POST("/payments/create-payment-intent", auth, a.createPaymentIntentHandler)
}

func (a *API) Router() *gin.Engine {
	return a.r
}

// fail writes the uniform error envelope. Internal detail never rides along;
// handlers log the underlying error and send only the taxonomy code here.
func fail(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{"success": false, "code": code, "message": message})
}

func serviceError(c *gin.Context, err error, msg string) {
	middleware.GetLogger(c).ErrorContext(c, msg, "error", err)
	fail(c, http.StatusInternalServerError, "SERVICE_ERROR", "internal error")
}
