package booking

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"gymhub/internal/api"
	"gymhub/internal/auth"
	"gymhub/internal/gym"
	"gymhub/internal/payment"
	"gymhub/internal/slot"

	"github.com/gin-gonic/gin"
)

const (
	IdempotencyHeader    = "Idempotency-Key"
	maxIdempotencyKeyLen = 64
	defaultAnalyticsDays = 30
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// Create godoc
// @Summary      Book a slot
// @Description  Reserves a spot, charges the plan price and confirms the booking in one call.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotId           path      int                   true   "Slot ID"
// @Param        Idempotency-Key  header    string                false  "Replays return the first booking"
// @Param        request          body      CreateBookingRequest  true   "Booking payload"
// @Success      201              {object}  api.Envelope{data=Booking}
// @Failure      400              {object}  api.ErrorResponse
// @Failure      404              {object}  api.ErrorResponse
// @Failure      502              {object}  api.ErrorResponse
// @Router       /api/bookings/{slotId} [post]
func (h *Handler) Create(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	slotID, ok := pathID(c, "slotId", "Invalid slot ID")
	if !ok {
		return
	}

	key := c.GetHeader(IdempotencyHeader)
	if len(key) > maxIdempotencyKeyLen {
		api.Fail(c, api.BadRequest("Idempotency-Key is too long"))
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	b, err := h.service.Create(c.Request.Context(), userID, slotID, req, key)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.Created(c, b)
}

// CreatePaymentIntent godoc
// @Summary      Start a two-phase booking
// @Description  Creates an unconfirmed payment intent and a pending booking. No spot is held yet.
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        slotId   path      int                   true  "Slot ID"
// @Param        request  body      PaymentIntentRequest  true  "Booking payload"
// @Success      201      {object}  api.Envelope{data=PaymentIntentResponse}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/bookings/create-payment-intent/{slotId} [post]
func (h *Handler) CreatePaymentIntent(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	slotID, ok := pathID(c, "slotId", "Invalid slot ID")
	if !ok {
		return
	}

	var req PaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	resp, err := h.service.CreatePaymentIntent(c.Request.Context(), userID, slotID, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.Created(c, resp)
}

// ConfirmPayment godoc
// @Summary      Confirm a two-phase booking
// @Tags         bookings
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        bookingId  path      int                    true  "Booking ID"
// @Param        request    body      ConfirmPaymentRequest  true  "Intent to confirm"
// @Success      200        {object}  api.Envelope{data=Booking}
// @Failure      400        {object}  api.ErrorResponse
// @Failure      403        {object}  api.ErrorResponse
// @Failure      404        {object}  api.ErrorResponse
// @Router       /api/bookings/confirm-payment/{bookingId} [post]
func (h *Handler) ConfirmPayment(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "bookingId", "Invalid booking ID")
	if !ok {
		return
	}

	var req ConfirmPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	b, err := h.service.ConfirmPayment(c.Request.Context(), userID, id, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, b)
}

// Cancel godoc
// @Summary      Cancel booking
// @Description  Refunds a confirmed booking or voids a pending one, then frees its spot.
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  api.Envelope{data=Booking}
// @Failure      400  {object}  api.ErrorResponse
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/bookings/cancel/{id} [patch]
func (h *Handler) Cancel(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid booking ID")
	if !ok {
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), userID, id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, b)
}

// ListMine godoc
// @Summary      List my bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=[]Booking}
// @Router       /api/bookings [get]
func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	bookings, err := h.service.ListMine(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, bookings)
}

// Get godoc
// @Summary      Get booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  api.Envelope{data=Booking}
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/bookings/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid booking ID")
	if !ok {
		return
	}

	b, err := h.service.Get(c.Request.Context(), who, id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, b)
}

// Payments godoc
// @Summary      Payment history of a booking
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Booking ID"
// @Success      200  {object}  api.Envelope{data=[]payment.Record}
// @Failure      403  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/bookings/{id}/payments [get]
func (h *Handler) Payments(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid booking ID")
	if !ok {
		return
	}

	records, err := h.service.Payments(c.Request.Context(), who, id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, records)
}

// ListByGym godoc
// @Summary      List a gym's bookings
// @Tags         bookings
// @Security     BearerAuth
// @Produce      json
// @Param        gymId  path      int  true  "Gym ID"
// @Success      200    {object}  api.Envelope{data=[]Booking}
// @Failure      404    {object}  api.ErrorResponse
// @Router       /api/bookings/gym/{gymId} [get]
func (h *Handler) ListByGym(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	gymID, ok := pathID(c, "gymId", "Invalid gym ID")
	if !ok {
		return
	}

	bookings, err := h.service.ListByGym(c.Request.Context(), who, gymID)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, bookings)
}

// Analytics godoc
// @Summary      Booking analytics
// @Description  Counts and revenue grouped by day or gym. The window defaults to the last 30 days.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        groupBy  query     string  false  "day or gym"
// @Param        from     query     string  false  "RFC3339"
// @Param        to       query     string  false  "RFC3339"
// @Success      200      {object}  api.Envelope
// @Failure      400      {object}  api.ErrorResponse
// @Router       /api/admin/analytics/bookings [get]
func (h *Handler) Analytics(c *gin.Context) {
	to := time.Now().UTC()
	from := to.AddDate(0, 0, -defaultAnalyticsDays)

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.Fail(c, api.BadRequest("from must be RFC3339"))
			return
		}
		from = t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			api.Fail(c, api.BadRequest("to must be RFC3339"))
			return
		}
		to = t
	}
	if !from.Before(to) {
		api.Fail(c, api.BadRequest("from must be before to"))
		return
	}

	stats, err := h.service.Analytics(c.Request.Context(), c.Query("groupBy"), from, to)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, stats)
}

func pathID(c *gin.Context, name, msg string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		api.Fail(c, api.BadRequest(msg))
		return 0, false
	}
	return id, true
}

func mapError(err error) error {
	var gwErr *payment.GatewayError

	switch {
	case errors.Is(err, ErrBookingNotFound):
		return api.NotFound("Booking not found")
	case errors.Is(err, slot.ErrSlotNotFound):
		return api.NotFound("Slot not found")
	case errors.Is(err, gym.ErrGymNotFound):
		return api.NotFound("Gym not found")
	case errors.Is(err, ErrNotBookingOwner):
		return api.Forbidden("Not authorized to access this booking")
	case errors.Is(err, ErrAlreadyCancelled):
		return api.BadRequest("Booking already cancelled")
	case errors.Is(err, ErrNotPending):
		return api.BadRequest("Booking is not pending")
	case errors.Is(err, slot.ErrSlotFull):
		return api.BadRequest("Slot is full")
	case errors.Is(err, ErrSlotClosed):
		return api.BadRequest("Slot is closed")
	case errors.Is(err, gym.ErrInvalidPlan):
		return api.BadRequest("Invalid plan")
	case errors.Is(err, ErrInvalidStartDate):
		return api.BadRequest("Start date must be formatted as YYYY-MM-DD")
	case errors.Is(err, ErrStartDateInPast):
		return api.BadRequest("Start date is in the past")
	case errors.Is(err, ErrSlotInPast):
		return api.BadRequest("Slot date is in the past")
	case errors.Is(err, ErrStartDateMismatch):
		return api.BadRequest("Start date must match the slot date")
	case errors.Is(err, ErrIntentMismatch):
		return api.BadRequest("Payment intent does not match booking")
	case errors.Is(err, ErrPaymentNotSuccessful):
		return api.BadRequest("Payment not successful")
	case errors.Is(err, ErrDuplicateBooking):
		return api.BadRequest("Idempotency key already used")
	case errors.Is(err, ErrInvalidGroupBy):
		return api.BadRequest("groupBy must be day or gym")
	case errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.As(err, &gwErr):
		if gwErr.ClientError() {
			return api.NewError(gwErr.StatusCode, gwErr.Message, err)
		}
		return api.Upstream("Payment provider error", err)
	case errors.Is(err, payment.ErrGateway):
		return api.NewError(http.StatusBadGateway, "Payment provider unavailable", err)
	}
	return err
}
