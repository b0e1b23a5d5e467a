package auth

import (
	"context"
	"errors"

	"noteshare/cmd/server/ctxkeys"
	"noteshare/cmd/server/handlers/handlerutil"
	"noteshare/cmd/server/handlers/httperr"
	"noteshare/internal/logger"
	"noteshare/internal/services/auth"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/v2/bson"
)

// AuthService defines the interface for auth service
type AuthService interface {
	SignUp(ctx context.Context, req auth.SignUpRequest) (*auth.AuthResponse, error)
	SignIn(ctx context.Context, req auth.SignInRequest) (*auth.AuthResponse, error)
	Profile(ctx context.Context, userID bson.ObjectID) (*auth.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID bson.ObjectID, req auth.UpdateProfileRequest) (*auth.ProfileResponse, error)
}

// Handlers contains the auth HTTP handlers
type Handlers struct {
	authService AuthService
	validator   *validator.Validate
}

// NewHandlers creates new auth handlers
func NewHandlers(authService AuthService, validator *validator.Validate) *Handlers {
	return &Handlers{
		authService: authService,
		validator:   validator,
	}
}

// SignUp handles user registration
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignUpRequest true "Sign up request"
// @Success 201 {object} auth.SignUpResponse
// @Failure 400 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-up [post]
func (h *Handlers) SignUp(c *fiber.Ctx) error {
	var req auth.SignUpRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignUp"); err != nil {
		return err
	}

	resp, err := h.authService.SignUp(c.Context(), req)
	if err != nil {
		logger.L().Warn("signup service failed", "handler", "SignUp", "error", err)
		return httperr.From(fiber.StatusBadRequest, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// SignIn handles user authentication
// @Summary Authenticate a user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body auth.SignInRequest true "Sign in request"
// @Success 200 {object} auth.SignInResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 429 {object} httperr.E
// @Router /auth/sign-in [post]
func (h *Handlers) SignIn(c *fiber.Ctx) error {
	var req auth.SignInRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "SignIn"); err != nil {
		return err
	}

	resp, err := h.authService.SignIn(c.Context(), req)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			return httperr.From(fiber.StatusUnauthorized, err)
		}
		logger.L().Error("signin service failed", "handler", "SignIn", "error", err)
		return httperr.Fail(httperr.ErrInternal)
	}

	return c.JSON(resp)
}

// MeResponse echoes the identity carried by the caller's token
type MeResponse struct {
	UserID   string `json:"uid" example:"683cdb8aa96ad71e8e075bd0"`
	Email    string `json:"email" example:"test@example.com"`
	Username string `json:"username" example:"algebra_fan"`
}

// Me returns the identity from the caller's token.
// @Summary Get current user
// @Tags auth
// @Produce json
// @Security Bearer
// @Success 200 {object} MeResponse
// @Failure 401 {object} httperr.E
// @Router /me [get]
func (h *Handlers) Me(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}
	email, _ := c.Locals(ctxkeys.UserEmailKey).(string)

	return c.JSON(MeResponse{
		UserID:   userID.Hex(),
		Email:    email,
		Username: handlerutil.GetUsername(c),
	})
}

// Profile returns the caller's full profile
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Security Bearer
// @Success 200 {object} auth.ProfileResponse
// @Failure 401 {object} httperr.E
// @Failure 404 {object} httperr.E
// @Router /profile [get]
func (h *Handlers) Profile(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	resp, err := h.authService.Profile(c.Context(), userID)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "Profile",
			handlerutil.Mapping{Err: auth.ErrUserNotFound, Status: fiber.StatusNotFound})
	}

	return c.JSON(resp)
}

// UpdateProfile changes profile fields after checking the current password
// @Summary Update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body auth.UpdateProfileRequest true "Profile changes and current password"
// @Success 200 {object} auth.ProfileResponse
// @Failure 400 {object} httperr.E
// @Failure 401 {object} httperr.E
// @Failure 403 {object} httperr.E
// @Router /profile [patch]
func (h *Handlers) UpdateProfile(c *fiber.Ctx) error {
	userID, err := handlerutil.GetUserID(c)
	if err != nil {
		return err
	}

	var req auth.UpdateProfileRequest
	if err := handlerutil.ParseAndValidateBody(c, &req, h.validator, "UpdateProfile"); err != nil {
		return err
	}

	resp, err := h.authService.UpdateProfile(c.Context(), userID, req)
	if err != nil {
		return handlerutil.HandleServiceError(c, err, "UpdateProfile",
			handlerutil.Mapping{Err: auth.ErrIncorrectPassword, Status: fiber.StatusForbidden},
			handlerutil.Mapping{Err: auth.ErrUserNotFound, Status: fiber.StatusNotFound})
	}

	return c.JSON(resp)
}
