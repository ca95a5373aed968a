package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tracker/internal/common"
	"tracker/internal/models"
	"tracker/internal/repositories"

	"github.com/go-playground/validator/v10"
	"golang.org/x/crypto/bcrypt"
)

// RegisterRequest is the body of POST /auth/register.
type RegisterRequest struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=72"`
	PasswordConfirmation string `json:"password_confirmation" validate:"omitempty,eqfield=Password"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthService owns the user lifecycle: registration, password checks and
// issuing, resolving and revoking opaque bearer tokens.
//
// A token is a capability: whoever presents it acts as its user until the
// next login overwrites it or logout clears it. Concurrent logins for one
// account race on that overwrite and the last writer's token wins.
type AuthService struct {
	userRepo  repositories.UserRepository
	validate  *validator.Validate
	hashCost  int
	dummyHash []byte
	events    EventPublisher
	newToken  func() (string, error)
}

// NewAuthService creates a new AuthService hashing passwords at hashCost.
// publisher may be nil.
func NewAuthService(userRepo repositories.UserRepository, hashCost int, publisher EventPublisher) (*AuthService, error) {
	// Compared against when the email is unknown so both login failures
	// spend the same bcrypt time.
	dummy, err := bcrypt.GenerateFromPassword([]byte("tracker-dummy-password"), hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &AuthService{
		userRepo:  userRepo,
		validate:  newValidator(),
		hashCost:  hashCost,
		dummyHash: dummy,
		events:    publisher,
		newToken:  common.NewToken,
	}, nil
}

// Register validates req, creates the user with a hashed password and a
// fresh token, and returns both.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*models.User, string, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, "", err
	}

	// Early, friendlier answer; the unique index in Create is what actually
	// guarantees uniqueness under concurrent registrations.
	if _, err := s.userRepo.GetByEmail(ctx, req.Email); err == nil {
		return nil, "", common.ErrDuplicateEmail
	} else if !errors.Is(err, common.ErrNotFound) {
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, "", common.NewValidationError("password", "The password may not be greater than 72 bytes.")
		}
		return nil, "", fmt.Errorf("failed to hash password: %w", err)
	}

	token, err := s.newToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashedPassword),
		APIToken: &token,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, "", err
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	publishEvent(s.events, Event{Event: EventUserRegistered, UserID: user.ID})
	return user, token, nil
}

// Login verifies the credentials and rotates the user's token. An unknown
// email and a wrong password both yield common.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, "", err
	}

	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(req.Password))
			return nil, "", common.ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, "", common.ErrInvalidCredentials
	}

	token, err := s.newToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}
	if err := s.userRepo.SetToken(ctx, user.ID, &token); err != nil {
		return nil, "", fmt.Errorf("failed to store token for user %s: %w", user.ID, err)
	}
	user.APIToken = &token
	return user, token, nil
}

// Logout clears the user's token. Logging out twice is not an error.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if err := s.userRepo.SetToken(ctx, userID, nil); err != nil {
		return fmt.Errorf("failed to clear token for user %s: %w", userID, err)
	}
	return nil
}

// ResolveToken returns the user bound to token, common.ErrTokenMissing for
// an empty token and common.ErrTokenInvalid when no user holds it.
func (s *AuthService) ResolveToken(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, common.ErrTokenMissing
	}
	user, err := s.userRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrTokenInvalid
		}
		return nil, fmt.Errorf("failed to resolve token: %w", err)
	}
	return user, nil
}

// GetUser loads the user with the given id.
func (s *AuthService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
