package slot

import (
	"errors"
	"strconv"

	"gymhub/internal/api"
	"gymhub/internal/auth"
	"gymhub/internal/gym"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// ListByGym godoc
// @Summary      List a gym's slots
// @Tags         slots
// @Produce      json
// @Param        gymId  path      int  true  "Gym ID"
// @Success      200    {object}  api.Envelope{data=[]Slot}
// @Router       /api/slots/gym/{gymId} [get]
func (h *Handler) ListByGym(c *gin.Context) {
	gymID, ok := pathID(c, "gymId", "Invalid gym ID")
	if !ok {
		return
	}

	slots, err := h.service.ListByGym(c.Request.Context(), gymID)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, slots)
}

// ListAvailable godoc
// @Summary      List bookable slots
// @Description  Open slots with spots left, from today on or on the given date.
// @Tags         slots
// @Produce      json
// @Param        gymId  path      int     true   "Gym ID"
// @Param        date   query     string  false  "YYYY-MM-DD"
// @Success      200    {object}  api.Envelope{data=[]Slot}
// @Failure      400    {object}  api.ErrorResponse
// @Router       /api/slots/available/{gymId} [get]
func (h *Handler) ListAvailable(c *gin.Context) {
	gymID, ok := pathID(c, "gymId", "Invalid gym ID")
	if !ok {
		return
	}

	slots, err := h.service.ListAvailable(c.Request.Context(), gymID, c.Query("date"))
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, slots)
}

// Get godoc
// @Summary      Get slot
// @Tags         slots
// @Produce      json
// @Param        id   path      int  true  "Slot ID"
// @Success      200  {object}  api.Envelope{data=Slot}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/slots/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid slot ID")
	if !ok {
		return
	}

	s, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, s)
}

// Create godoc
// @Summary      Create slot
// @Tags         slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateSlotRequest  true  "Slot payload"
// @Success      201      {object}  api.Envelope{data=Slot}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/slots [post]
func (h *Handler) Create(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	s, err := h.service.Create(c.Request.Context(), who, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.Created(c, s)
}

// Update godoc
// @Summary      Update slot
// @Description  Capacity changes keep consumed spots and clamp availability at zero.
// @Tags         slots
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int                true  "Slot ID"
// @Param        request  body      UpdateSlotRequest  true  "Fields to change"
// @Success      200      {object}  api.Envelope{data=Slot}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/slots/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid slot ID")
	if !ok {
		return
	}

	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	s, err := h.service.Update(c.Request.Context(), who, id, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, s)
}

// Delete godoc
// @Summary      Delete slot
// @Tags         slots
// @Security     BearerAuth
// @Param        id   path  int  true  "Slot ID"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/slots/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid slot ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), who, id); err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.NoContent(c)
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
	switch {
	case errors.Is(err, ErrSlotNotFound):
		return api.NotFound("Slot not found")
	case errors.Is(err, gym.ErrGymNotFound):
		return api.NotFound("Gym not found")
	case errors.Is(err, ErrSlotFull):
		return api.BadRequest("Slot is full")
	case errors.Is(err, ErrInvalidTimes):
		return api.BadRequest("Slot end time must be after start time")
	case errors.Is(err, ErrSlotBooked):
		return api.BadRequest("Slot has bookings and cannot be deleted, close it instead")
	case errors.Is(err, ErrInvalidDate):
		return api.BadRequest("Date must be formatted as YYYY-MM-DD")
	}
	return err
}
