package handlers

import (
	"errors"
	"log"

	"tracker/internal/common"
	"tracker/internal/middleware"
	"tracker/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AuthHandler handles HTTP requests for authentication.
type AuthHandler struct {
	authService *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// RegisterRoutes registers the public authentication routes.
func (h *AuthHandler) RegisterRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/register", h.HandleRegister)
	authRoutes.Post("/login", h.HandleLogin)
}

// RegisterProtectedRoutes registers the routes that need an authenticated
// caller. router must already run middleware.AuthRequired.
func (h *AuthHandler) RegisterProtectedRoutes(router fiber.Router) {
	authRoutes := router.Group("/auth")
	authRoutes.Post("/logout", h.HandleLogout)
	authRoutes.Get("/me", h.HandleMe)
}

// HandleRegister handles new user registration.
func (h *AuthHandler) HandleRegister(c *fiber.Ctx) error {
	var req services.RegisterRequest
	if err := parseBody(c, &req); err != nil {
		return bodyError(c, err, "registration")
	}

	user, token, err := h.authService.Register(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "registration")
	}

	log.Printf("Registered user %s", user.ID)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"token":   token,
		"message": "Registration successful",
	})
}

// HandleLogin verifies credentials and issues a fresh token.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := parseBody(c, &req); err != nil {
		return bodyError(c, err, "login")
	}

	user, token, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		return respondError(c, err, "login")
	}

	return c.JSON(fiber.Map{
		"user":    user,
		"token":   token,
		"message": "Login successful",
	})
}

// HandleLogout revokes the caller's token.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "logout")
	}
	if err := h.authService.Logout(c.UserContext(), id.UserID); err != nil {
		return respondError(c, err, "logout")
	}
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// HandleMe returns the caller's profile.
func (h *AuthHandler) HandleMe(c *fiber.Ctx) error {
	id, ok := middleware.CurrentIdentity(c)
	if !ok {
		return respondError(c, common.ErrTokenMissing, "me")
	}
	user, err := h.authService.GetUser(c.UserContext(), id.UserID)
	if err != nil {
		// The token resolved a moment ago, so a missing row means the
		// account vanished in between; treat it like a dead token.
		if errors.Is(err, common.ErrNotFound) {
			err = common.ErrTokenInvalid
		}
		return respondError(c, err, "me")
	}
	return c.JSON(fiber.Map{"user": user})
}
