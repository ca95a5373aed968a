package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"tracker/internal/common"
	"tracker/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GORMActivityRepository is a GORM implementation of ActivityRepository.
type GORMActivityRepository struct {
	db *gorm.DB
}

// NewGORMActivityRepository creates a new instance of GORMActivityRepository.
func NewGORMActivityRepository(db *gorm.DB) *GORMActivityRepository {
	return &GORMActivityRepository{
		db: db,
	}
}

// Create inserts a new activity.
func (r *GORMActivityRepository) Create(ctx context.Context, activity *models.Activity) error {
	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(activity).Error; err != nil {
		return fmt.Errorf("failed to create activity: %w", err)
	}
	return nil
}

// GetByID retrieves a single activity by its ID.
func (r *GORMActivityRepository) GetByID(ctx context.Context, id string) (*models.Activity, error) {
	var activity models.Activity
	if err := r.db.WithContext(ctx).First(&activity, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get activity by ID %s: %w", id, err)
	}
	return &activity, nil
}

// likeEscaper makes search text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListByUser returns the user's activities matching filter.
func (r *GORMActivityRepository) ListByUser(ctx context.Context, userID string, f models.ActivityFilter) ([]models.Activity, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)

	if f.Search != "" {
		like := "%" + likeEscaper.Replace(strings.ToLower(f.Search)) + "%"
		q = q.Where(`(LOWER(title) LIKE ? ESCAPE '\' OR LOWER(notes) LIKE ? ESCAPE '\')`, like, like)
	}
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if f.SubCategory != "" {
		q = q.Where("sub_category = ?", f.SubCategory)
	}
	if f.StartDate != "" {
		q = q.Where("date >= ?", f.StartDate)
	}
	if f.EndDate != "" {
		q = q.Where("date <= ?", f.EndDate)
	}
	if f.MinFeeling > 0 {
		q = q.Where("feeling >= ?", f.MinFeeling)
	}
	if f.MaxFeeling > 0 {
		q = q.Where("feeling <= ?", f.MaxFeeling)
	}
	if f.MinDuration > 0 {
		q = q.Where("duration >= ?", f.MinDuration)
	}
	if f.MaxDuration > 0 {
		q = q.Where("duration <= ?", f.MaxDuration)
	}

	col, desc := sortColumn(f)
	q = q.Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: desc}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "created_at"}, Desc: true})

	activities := []models.Activity{}
	if err := q.Find(&activities).Error; err != nil {
		return nil, fmt.Errorf("failed to list activities for user %s: %w", userID, err)
	}
	return activities, nil
}

// Update writes the mutable columns of activity.
func (r *GORMActivityRepository) Update(ctx context.Context, activity *models.Activity) error {
	activity.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Where("id = ?", activity.ID).
		Select("title", "category", "sub_category", "duration", "date", "feeling", "notes", "status", "updated_at").
		Updates(activity)
	if res.Error != nil {
		return fmt.Errorf("failed to update activity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// Delete deletes an activity by its ID.
func (r *GORMActivityRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Activity{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete activity: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// StatsByUser aggregates the user's activities overall and per category.
func (r *GORMActivityRepository) StatsByUser(ctx context.Context, userID string) (*models.ActivityStats, error) {
	var totals struct {
		TotalActivities int64
		TotalDuration   int64
		AverageFeeling  float64
	}
	err := r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("COUNT(*) AS total_activities, COALESCE(SUM(duration), 0) AS total_duration, COALESCE(AVG(feeling), 0) AS average_feeling").
		Where("user_id = ?", userID).
		Scan(&totals).Error
	if err != nil {
		return nil, fmt.Errorf("failed to compute totals for user %s: %w", userID, err)
	}

	byCategory := []models.CategoryStats{}
	err = r.db.WithContext(ctx).
		Model(&models.Activity{}).
		Select("category, COUNT(*) AS count, COALESCE(SUM(duration), 0) AS total_duration, COALESCE(AVG(feeling), 0) AS average_feeling").
		Where("user_id = ?", userID).
		Group("category").
		Order("category").
		Scan(&byCategory).Error
	if err != nil {
		return nil, fmt.Errorf("failed to group activities for user %s: %w", userID, err)
	}

	return &models.ActivityStats{
		TotalActivities: totals.TotalActivities,
		TotalDuration:   totals.TotalDuration,
		AverageFeeling:  totals.AverageFeeling,
		ByCategory:      byCategory,
	}, nil
}
