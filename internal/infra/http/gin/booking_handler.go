package ginserver

import (
	"net/http"
	"time"

	gin "github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"lendly/internal/app/commands"
	"lendly/internal/app/dto"
	bookingapp "lendly/internal/app/handlers/booking"
	"lendly/internal/app/queries"
)

type BookingHandler struct {
	Commands commands.Bus
	Queries  queries.Bus
}

type createBookingRequest struct {
	ItemID    string    `json:"item_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Notes     string    `json:"notes"`
}

func (h BookingHandler) Create(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req createBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.RequestBookingCommand{
		CommandID:       uuid.NewString(),
		ItemID:          req.ItemID,
		RenterID:        user.ID,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		Notes:           req.Notes,
		IdempotencyKeyV: c.GetHeader("Idempotency-Key"),
	}
	result, err := commands.Dispatch[bookingapp.RequestBookingCommand, *bookingapp.RequestBookingResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h BookingHandler) MyRentals(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := bookingapp.ListRentalsQuery{Actor: user.actor()}
	result, err := queries.Ask[bookingapp.ListRentalsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) MyListings(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := bookingapp.ListListingsQuery{Actor: user.actor()}
	result, err := queries.Ask[bookingapp.ListListingsQuery, *dto.BookingCollection](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h BookingHandler) Get(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	q := bookingapp.GetBookingQuery{BookingID: c.Param("id"), Actor: user.actor()}
	result, err := queries.Ask[bookingapp.GetBookingQuery, *dto.BookingView](c.Request.Context(), h.Queries, q)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type updatePaymentRequest struct {
	PaymentStatus string `json:"payment_status"`
	PaymentID     string `json:"payment_id"`
}

func (h BookingHandler) UpdatePayment(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req updatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.UpdatePaymentCommand{
		BookingID:     c.Param("id"),
		Actor:         user.actor(),
		PaymentStatus: req.PaymentStatus,
		PaymentID:     req.PaymentID,
	}
	result, err := commands.Dispatch[bookingapp.UpdatePaymentCommand, *bookingapp.UpdatePaymentResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type changeStatusRequest struct {
	Status string `json:"status"`
}

func (h BookingHandler) ChangeStatus(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req changeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.ChangeStatusCommand{
		BookingID: c.Param("id"),
		Actor:     user.actor(),
		Status:    req.Status,
	}
	result, err := commands.Dispatch[bookingapp.ChangeStatusCommand, *bookingapp.ChangeStatusResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type reportIssueRequest struct {
	Description string `json:"description"`
}

func (h BookingHandler) ReportIssue(c *gin.Context) {
	user, ok := requireAuth(c)
	if !ok {
		return
	}
	var req reportIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	cmd := bookingapp.ReportIssueCommand{
		BookingID:   c.Param("id"),
		Actor:       user.actor(),
		Description: req.Description,
	}
	result, err := commands.Dispatch[bookingapp.ReportIssueCommand, *bookingapp.ReportIssueResult](c.Request.Context(), h.Commands, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
