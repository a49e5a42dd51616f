package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pedalpoint/bikerental-backend/internal/middleware"
)

// defaultCurrency for rental payments.
const defaultCurrency = "inr"

type createPaymentIntentRequest struct {
	Amount   float64 `json:"amount" binding:"required,gt=0"`
	Currency string  `json:"currency"`
}

// createPaymentIntentHandler is gateway passthrough: it creates an intent
// for the requested amount and hands the client secret back. The booking is
// only marked paid later, by the pay action, with whatever identifier the
// client reports.
func (a *API) createPaymentIntentHandler(c *gin.Context) {
	if _, ok := middleware.GetActor(c); !ok {
		fail(c, http.StatusUnauthorized, "UNAUTHORIZED", "Authentication required")
		return
	}

	var req createPaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "INVALID_AMOUNT", "Amount must be greater than 0")
		return
	}

	currency := req.Currency
	if currency == "" {
		currency = defaultCurrency
	}

	intent, err := a.payments.CreateIntent(c, req.Amount, currency)
	if err != nil {
		serviceError(c, err, "failed to create payment intent")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"clientSecret":    intent.ClientSecret,
		"paymentIntentId": intent.ID,
		"amount":          intent.Amount,
	})
}
