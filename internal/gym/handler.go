package gym

import (
	"errors"
	"strconv"

	"gymhub/internal/api"
	"gymhub/internal/auth"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// List godoc
// @Summary      List gyms
// @Tags         gyms
// @Produce      json
// @Param        page   query  int  false  "Page (1-based)"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  api.Envelope{data=Page}
// @Router       /api/gyms [get]
func (h *Handler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, result)
}

// Search godoc
// @Summary      Search gyms
// @Description  Matches name or description, exact city, and a facility.
// @Tags         gyms
// @Produce      json
// @Param        q         query  string  false  "Free text"
// @Param        city      query  string  false  "City"
// @Param        facility  query  string  false  "Facility"
// @Param        limit     query  int     false  "Page size"
// @Param        offset    query  int     false  "Offset"
// @Success      200  {object}  api.Envelope{data=[]Gym}
// @Router       /api/gyms/search [get]
func (h *Handler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	gyms, err := h.service.Search(c.Request.Context(), SearchFilter{
		Query:    c.Query("q"),
		City:     c.Query("city"),
		Facility: c.Query("facility"),
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, gyms)
}

// Get godoc
// @Summary      Get gym
// @Tags         gyms
// @Produce      json
// @Param        id   path      int  true  "Gym ID"
// @Success      200  {object}  api.Envelope{data=Gym}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/gyms/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	g, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, g)
}

// Create godoc
// @Summary      Create gym
// @Tags         gyms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateGymRequest  true  "Gym payload"
// @Success      201      {object}  api.Envelope{data=Gym}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      403      {object}  api.ErrorResponse
// @Router       /api/gyms [post]
func (h *Handler) Create(c *gin.Context) {
	ownerID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	var req CreateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	g, err := h.service.Create(c.Request.Context(), ownerID, req)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.Created(c, g)
}

// Update godoc
// @Summary      Update gym
// @Description  Only the owner (or an admin) can update; other gyms read as not found.
// @Tags         gyms
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      int               true  "Gym ID"
// @Param        request  body      UpdateGymRequest  true  "Fields to change"
// @Success      200      {object}  api.Envelope{data=Gym}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/gyms/{id} [patch]
func (h *Handler) Update(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var req UpdateGymRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	g, err := h.service.Update(c.Request.Context(), who, id, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, g)
}

// Delete godoc
// @Summary      Delete gym
// @Description  Cascades to the gym's slots, classes and bookings.
// @Tags         gyms
// @Security     BearerAuth
// @Param        id   path  int  true  "Gym ID"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/gyms/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), who, id); err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.NoContent(c)
}

func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		api.Fail(c, api.BadRequest("Invalid gym ID"))
		return 0, false
	}
	return id, true
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrGymNotFound):
		return api.NotFound("Gym not found")
	case errors.Is(err, ErrGymBooked):
		return api.BadRequest("Gym has bookings and cannot be deleted")
	}
	return err
}
