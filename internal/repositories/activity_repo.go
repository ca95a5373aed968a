package repositories

import (
	"context"

	"tracker/internal/models"
)

// ActivityRepository defines the interface for activity data access.
// Ownership is not checked here; callers scope by user ID or compare
// Activity.UserID themselves.
type ActivityRepository interface {
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id string) (*models.Activity, error)
	ListByUser(ctx context.Context, userID string, filter models.ActivityFilter) ([]models.Activity, error)
	// Update writes every mutable column. UserID and CreatedAt are never changed.
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id string) error
	StatsByUser(ctx context.Context, userID string) (*models.ActivityStats, error)
}

// sortColumn returns the column a filter sorts on and whether it is descending.
func sortColumn(f models.ActivityFilter) (string, bool) {
	col := f.SortBy
	switch col {
	case models.SortByDate, models.SortByDuration, models.SortByFeeling, models.SortByTitle, models.SortByCreatedAt:
	default:
		col = models.SortByDate
	}
	return col, f.SortOrder != "asc"
}
