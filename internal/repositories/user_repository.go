package repositories

import (
	"context"

	"tracker/internal/models"
)

// UserRepository defines the interface for user data access.
// Lookups return common.ErrNotFound when nothing matches and Create returns
// common.ErrDuplicateEmail when the store's unique constraint rejects the email.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByToken(ctx context.Context, token string) (*models.User, error)
	// SetToken overwrites the stored token; nil clears it.
	SetToken(ctx context.Context, userID string, token *string) error
}
