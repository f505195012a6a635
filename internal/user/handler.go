package user

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

// Register godoc
// @Summary      Register new user
// @Description  Creates a user (role user or owner) and returns a token.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      RegisterRequest  true  "User registration data"
// @Success      201      {object}  api.Envelope{data=AuthResponse}
// @Failure      400      {object}  api.ErrorResponse
// @Router       /api/auth/register [post]
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	u, token, err := h.service.Register(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.Created(c, AuthResponse{Token: token, User: *u})
}

// Login godoc
// @Summary      Login user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request  body      LoginRequest  true  "User credentials"
// @Success      200      {object}  api.Envelope{data=AuthResponse}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /api/auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BadRequest("Please provide email and password"))
		return
	}

	u, token, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, AuthResponse{Token: token, User: *u})
}

// GetMe godoc
// @Summary      Get current user
// @Tags         auth
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  api.Envelope{data=User}
// @Failure      401  {object}  api.ErrorResponse
// @Failure      404  {object}  api.ErrorResponse
// @Router       /api/auth/me [get]
func (h *Handler) GetMe(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	u, err := h.service.GetByID(c.Request.Context(), userID)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, u)
}

// UpdateProfile godoc
// @Summary      Update profile fields
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      UpdateProfileRequest  true  "Fields to change"
// @Success      200      {object}  api.Envelope{data=User}
// @Failure      400      {object}  api.ErrorResponse
// @Router       /api/auth/update-profile [patch]
func (h *Handler) UpdateProfile(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	u, err := h.service.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, u)
}

// ChangePassword godoc
// @Summary      Change password
// @Description  Requires the current password; returns a fresh token.
// @Tags         auth
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        request  body      ChangePasswordRequest  true  "Current and new password"
// @Success      200      {object}  api.Envelope{data=AuthResponse}
// @Failure      400      {object}  api.ErrorResponse
// @Failure      401      {object}  api.ErrorResponse
// @Router       /api/auth/change-password [patch]
func (h *Handler) ChangePassword(c *gin.Context) {
	userID, ok := auth.GetUserID(c)
	if !ok {
		api.Fail(c, api.Unauthorized("User not authenticated"))
		return
	}

	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Fail(c, api.BindError(err))
		return
	}

	u, token, err := h.service.ChangePassword(c.Request.Context(), userID, req)
	if err != nil {
		api.Fail(c, mapError(err))
		return
	}

	api.OK(c, AuthResponse{Token: token, User: *u})
}

// ListUsers godoc
// @Summary      List users
// @Description  Admin only.
// @Tags         admin
// @Security     BearerAuth
// @Produce      json
// @Param        page   query  int  false  "Page (1-based)"
// @Param        limit  query  int  false  "Page size"
// @Success      200  {object}  api.Envelope{data=[]User}
// @Router       /api/admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	users, err := h.service.List(c.Request.Context(), page, limit)
	if err != nil {
		api.Fail(c, err)
		return
	}

	api.OK(c, users)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, ErrEmailExists):
		return api.BadRequest("Email already in use")
	case errors.Is(err, ErrInvalidCredentials):
		return api.Unauthorized("Incorrect email or password")
	case errors.Is(err, ErrWrongPassword):
		return api.Unauthorized("Your current password is wrong")
	case errors.Is(err, ErrUserNotFound):
		return api.NotFound("User not found")
	}
	return err
}
