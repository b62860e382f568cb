package ginserver

import (
	"net/http"

	gin "github.com/gin-gonic/gin"

	"lendly/internal/app/commands"
	"lendly/internal/app/dto"
	paymentsapp "lendly/internal/app/handlers/payments"
	"lendly/internal/app/queries"
	"lendly/internal/domain/shared/money"
)

type PaymentHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type processPaymentRequest struct {
	BookingID     string `json:"booking_id"`
	PaymentMethod string `json:"payment_method"`
}

func (h PaymentHandler) Process(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req processPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentsapp.ProcessPaymentCommand{
		BookingID:       req.BookingID,
		Actor:           user.actor(),
		Method:          req.PaymentMethod,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[paymentsapp.ProcessPaymentCommand, *paymentsapp.ProcessPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h PaymentHandler) Details(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := paymentsapp.PaymentDetailsQuery{BookingID: c.Param("bookingId"), Actor: user.actor()}
	result, err := queries.Ask[paymentsapp.PaymentDetailsQuery, *dto.PaymentDetails](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type refundRequest struct {
	BookingID string `json:"booking_id"`
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reason    string `json:"reason"`
}

func (h PaymentHandler) Refund(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req refundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := paymentsapp.RefundPaymentCommand{
		BookingID: req.BookingID,
		Actor:     user.actor(),
		Amount:    money.Money{Amount: req.Amount, Currency: req.Currency},
	}
	result, err := commands.Dispatch[paymentsapp.RefundPaymentCommand, *paymentsapp.RefundPaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
