package class

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
// @Summary      List a gym's classes
// @Tags         classes
// @Produce      json
// @Param        gymId  path      int  true  "Gym ID"
// @Success      200    {object}  api.Envelope{data=[]Class}
// @Router       /api/classes/gym/{gymId} [get]
func (h *Handler) ListByGym(c *gin.Context) {
	gymID, ok := pathID(c, "gymId", "Invalid gym ID")
	if !ok {
		return
	}

	classes, err := h.service.ListByGym(c.Request.Context(), gymID)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, classes)
}

// Get godoc
// @Summary      Get class
// @Tags         classes
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  api.Envelope{data=Class}
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/classes/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	id, ok := pathID(c, "id", "Invalid class ID")
	if !ok {
		return
	}

	class, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, class)
}

// Create godoc
// @Summary      Create class
// @Description  The instructor's name, avatar and specialization are copied from their user record.
// @Tags         classes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      CreateClassRequest  true  "Class payload"
// @Success      201      {object}  api.Envelope{data=Class}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      404      {object}  api.ErrorResponse
// @Router       /api/classes [post]
func (h *Handler) Create(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	var req CreateClassRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	class, err := h.service.Create(c.Request.Context(), who, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.Created(c, class)
}

// Delete godoc
// @Summary      Delete class
// @Tags         classes
// @Security     BearerAuth
// @Param        id   path  int  true  "Class ID"
// @Success      204
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/classes/{id} [delete]
func (h *Handler) Delete(c *gin.Context) {
	who, ok := auth.GetIdentity(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid class ID")
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), who, id); err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.NoContent(c)
}

// Enroll godoc
// @Summary      Enroll in class
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  api.Envelope{data=Class}
// @Failure      400  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/classes/{id}/enroll [post]
func (h *Handler) Enroll(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid class ID")
	if !ok {
		return
	}

	class, err := h.service.Enroll(c.Request.Context(), userID, id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, class)
}

// Unenroll godoc
// @Summary      Leave class
// @Tags         classes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      int  true  "Class ID"
// @Success      200  {object}  api.Envelope{data=Class}
// @Failure      400  {object}  api.ErrorResponse
// @Router       /api/classes/{id}/enroll [delete]
func (h *Handler) Unenroll(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	id, ok := pathID(c, "id", "Invalid class ID")
	if !ok {
		return
	}

	class, err := h.service.Unenroll(c.Request.Context(), userID, id)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, class)
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
	case errors.Is(err, ErrClassNotFound):
		return api.NotFound("Class not found")
	case errors.Is(err, gym.ErrGymNotFound):
		return api.NotFound("Gym not found")
	case errors.Is(err, ErrInstructorNotFound):
		return api.NotFound("Instructor not found")
	case errors.Is(err, ErrClassFull):
		return api.BadRequest("Class is full")
	case errors.Is(err, ErrAlreadyEnrolled):
		return api.BadRequest("Already enrolled")
	case errors.Is(err, ErrNotEnrolled):
		return api.BadRequest("Not enrolled")
	case errors.Is(err, ErrInvalidTimes):
		return api.BadRequest("Class end time must be after start time")
	}
	return err
}
