package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"tracker/internal/common"
	"tracker/internal/models"
	"tracker/internal/repositories"

	"github.com/go-playground/validator/v10"
)

// CreateActivityRequest is the body of POST /activities. There is no
// user_id field: the owner always comes from the authenticated identity.
type CreateActivityRequest struct {
	Title       string  `json:"title" validate:"required,max=255"`
	Category    string  `json:"category" validate:"required,category"`
	SubCategory string  `json:"sub_category" validate:"max=50"`
	Duration    FlexInt `json:"duration" validate:"required,min=1,max=1440"`
	Date        string  `json:"date" validate:"required,datetime=2006-01-02"`
	Feeling     FlexInt `json:"feeling" validate:"required,min=1,max=10"`
	Notes       string  `json:"notes" validate:"max=2000"`
	Status      string  `json:"status" validate:"omitempty,oneof=pending in_progress completed"`
}

// UpdateActivityRequest is the body of PUT /activities/:id. Nil fields are
// left unchanged.
type UpdateActivityRequest struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=255"`
	Category    *string  `json:"category" validate:"omitnil,category"`
	SubCategory *string  `json:"sub_category" validate:"omitnil,max=50"`
	Duration    *FlexInt `json:"duration" validate:"omitnil,min=1,max=1440"`
	Date        *string  `json:"date" validate:"omitnil,datetime=2006-01-02"`
	Feeling     *FlexInt `json:"feeling" validate:"omitnil,min=1,max=10"`
	Notes       *string  `json:"notes" validate:"omitnil,max=2000"`
	Status      *string  `json:"status" validate:"omitnil,oneof=pending in_progress completed"`
}

// ActivityService handles activity CRUD and statistics. Every operation
// takes the authenticated user's id and only ever touches that user's rows.
type ActivityService struct {
	repo     repositories.ActivityRepository
	validate *validator.Validate
	events   EventPublisher
}

// NewActivityService creates a new ActivityService. publisher may be nil.
func NewActivityService(repo repositories.ActivityRepository, publisher EventPublisher) *ActivityService {
	return &ActivityService{
		repo:     repo,
		validate: newValidator(),
		events:   publisher,
	}
}

// ListActivities returns the user's activities matching filter.
func (s *ActivityService) ListActivities(ctx context.Context, userID string, filter models.ActivityFilter) ([]models.Activity, error) {
	filter = normalizeFilter(filter)
	if err := validateStruct(s.validate, filter); err != nil {
		return nil, err
	}
	var verr common.ValidationError
	if filter.StartDate != "" && filter.EndDate != "" && filter.StartDate > filter.EndDate {
		verr.Add("end_date", "The end date must be a date after or equal to start date.")
	}
	if filter.MaxFeeling > 0 && filter.MinFeeling > filter.MaxFeeling {
		verr.Add("max_feeling", "The max feeling must be at least the min feeling.")
	}
	if filter.MaxDuration > 0 && filter.MinDuration > filter.MaxDuration {
		verr.Add("max_duration", "The max duration must be at least the min duration.")
	}
	if !verr.Empty() {
		return nil, &verr
	}
	return s.repo.ListByUser(ctx, userID, filter)
}

// CreateActivity validates req and stores it as a new activity owned by userID.
func (s *ActivityService) CreateActivity(ctx context.Context, userID string, req CreateActivityRequest) (*models.Activity, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}
	if req.SubCategory != "" && !models.IsSubCategory(req.Category, req.SubCategory) {
		return nil, common.NewValidationError("sub_category", "The selected sub category is invalid.")
	}
	if req.Status == "" {
		req.Status = models.StatusCompleted
	}

	activity := &models.Activity{
		UserID:      userID,
		Title:       req.Title,
		Category:    req.Category,
		SubCategory: req.SubCategory,
		Duration:    int(req.Duration),
		Date:        req.Date,
		Feeling:     int(req.Feeling),
		Notes:       req.Notes,
		Status:      req.Status,
	}
	if err := s.repo.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	publishEvent(s.events, Event{Event: EventActivityCreated, UserID: userID, ActivityID: activity.ID})
	return activity, nil
}

// GetActivity returns the activity if userID owns it.
func (s *ActivityService) GetActivity(ctx context.Context, userID, id string) (*models.Activity, error) {
	return s.authorize(ctx, userID, id)
}

// UpdateActivity applies the supplied fields of req to an activity userID owns.
// Ownership is checked before the body is validated.
func (s *ActivityService) UpdateActivity(ctx context.Context, userID, id string, req UpdateActivityRequest) (*models.Activity, error) {
	activity, err := s.authorize(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		req.Title = &t
	}
	if err := validateStruct(s.validate, req); err != nil {
		return nil, err
	}

	apply(&activity.Title, req.Title)
	apply(&activity.Category, req.Category)
	apply(&activity.SubCategory, req.SubCategory)
	applyInt(&activity.Duration, req.Duration)
	apply(&activity.Date, req.Date)
	applyInt(&activity.Feeling, req.Feeling)
	apply(&activity.Notes, req.Notes)
	apply(&activity.Status, req.Status)

	if activity.SubCategory != "" && !models.IsSubCategory(activity.Category, activity.SubCategory) {
		return nil, common.NewValidationError("sub_category", "The selected sub category is invalid.")
	}

	if err := s.repo.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity %s: %w", id, err)
	}

	publishEvent(s.events, Event{Event: EventActivityUpdated, UserID: userID, ActivityID: id})
	return activity, nil
}

// DeleteActivity removes an activity userID owns.
func (s *ActivityService) DeleteActivity(ctx context.Context, userID, id string) error {
	if _, err := s.authorize(ctx, userID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete activity %s: %w", id, err)
	}

	publishEvent(s.events, Event{Event: EventActivityDeleted, UserID: userID, ActivityID: id})
	return nil
}

// Stats summarises the user's activities. Averages are rounded to two decimals.
func (s *ActivityService) Stats(ctx context.Context, userID string) (*models.ActivityStats, error) {
	stats, err := s.repo.StatsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to compute stats: %w", err)
	}
	stats.AverageFeeling = round2(stats.AverageFeeling)
	for i := range stats.ByCategory {
		stats.ByCategory[i].AverageFeeling = round2(stats.ByCategory[i].AverageFeeling)
	}
	return stats, nil
}

// authorize loads the activity and checks that userID owns it:
// common.ErrNotFound if it does not exist, common.ErrForbidden if someone
// else owns it.
func (s *ActivityService) authorize(ctx context.Context, userID, id string) (*models.Activity, error) {
	activity, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load activity %s: %w", id, err)
	}
	if activity.UserID != userID {
		return nil, common.ErrForbidden
	}
	return activity, nil
}

func normalizeFilter(f models.ActivityFilter) models.ActivityFilter {
	f.Search = strings.TrimSpace(f.Search)
	if strings.EqualFold(f.Category, "all") {
		f.Category = ""
	}
	if strings.EqualFold(f.SubCategory, "all") {
		f.SubCategory = ""
	}
	if f.SortBy == "" {
		f.SortBy = models.SortByDate
	}
	f.SortOrder = strings.ToLower(f.SortOrder)
	if f.SortOrder == "" {
		f.SortOrder = "desc"
	}
	return f
}

func apply[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func applyInt(dst *int, src *FlexInt) {
	if src != nil {
		*dst = int(*src)
	}
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
