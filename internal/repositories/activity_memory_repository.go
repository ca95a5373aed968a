package repositories

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"tracker/internal/common"
	"tracker/internal/models"

	"github.com/google/uuid"
)

// MemoryActivityRepository is an in-memory implementation of ActivityRepository.
type MemoryActivityRepository struct {
	activities map[string]models.Activity
	mu         sync.RWMutex
}

// NewMemoryActivityRepository creates a new instance of MemoryActivityRepository.
func NewMemoryActivityRepository() *MemoryActivityRepository {
	return &MemoryActivityRepository{
		activities: make(map[string]models.Activity),
	}
}

// Create adds a new activity.
func (r *MemoryActivityRepository) Create(_ context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if activity.ID == "" {
		activity.ID = uuid.New().String()
	}
	now := time.Now()
	activity.CreatedAt = now
	activity.UpdatedAt = now
	r.activities[activity.ID] = *activity
	return nil
}

// GetByID returns an activity by its ID.
func (r *MemoryActivityRepository) GetByID(_ context.Context, id string) (*models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	activity, ok := r.activities[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &activity, nil
}

// ListByUser returns the user's activities matching filter.
func (r *MemoryActivityRepository) ListByUser(_ context.Context, userID string, f models.ActivityFilter) ([]models.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	list := []models.Activity{}
	for _, a := range r.activities {
		if a.UserID == userID && matches(a, f) {
			list = append(list, a)
		}
	}

	col, desc := sortColumn(f)
	sort.SliceStable(list, func(i, j int) bool {
		c := compareBy(list[i], list[j], col)
		if c == 0 {
			return list[i].CreatedAt.After(list[j].CreatedAt)
		}
		if desc {
			return c > 0
		}
		return c < 0
	})
	return list, nil
}

// Update replaces the mutable fields of a stored activity.
func (r *MemoryActivityRepository) Update(_ context.Context, activity *models.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.activities[activity.ID]
	if !ok {
		return common.ErrNotFound
	}
	stored.Title = activity.Title
	stored.Category = activity.Category
	stored.SubCategory = activity.SubCategory
	stored.Duration = activity.Duration
	stored.Date = activity.Date
	stored.Feeling = activity.Feeling
	stored.Notes = activity.Notes
	stored.Status = activity.Status
	stored.UpdatedAt = time.Now()
	r.activities[activity.ID] = stored
	*activity = stored
	return nil
}

// Delete removes an activity by its ID.
func (r *MemoryActivityRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.activities[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.activities, id)
	return nil
}

// StatsByUser aggregates the user's activities overall and per category.
func (r *MemoryActivityRepository) StatsByUser(_ context.Context, userID string) (*models.ActivityStats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := &models.ActivityStats{ByCategory: []models.CategoryStats{}}
	groups := make(map[string]*models.CategoryStats)
	feelingSum := make(map[string]int64)
	var totalFeeling int64

	for _, a := range r.activities {
		if a.UserID != userID {
			continue
		}
		stats.TotalActivities++
		stats.TotalDuration += int64(a.Duration)
		totalFeeling += int64(a.Feeling)

		g, ok := groups[a.Category]
		if !ok {
			g = &models.CategoryStats{Category: a.Category}
			groups[a.Category] = g
		}
		g.Count++
		g.TotalDuration += int64(a.Duration)
		feelingSum[a.Category] += int64(a.Feeling)
	}

	if stats.TotalActivities > 0 {
		stats.AverageFeeling = float64(totalFeeling) / float64(stats.TotalActivities)
	}
	for name, g := range groups {
		g.AverageFeeling = float64(feelingSum[name]) / float64(g.Count)
		stats.ByCategory = append(stats.ByCategory, *g)
	}
	sort.Slice(stats.ByCategory, func(i, j int) bool {
		return stats.ByCategory[i].Category < stats.ByCategory[j].Category
	})
	return stats, nil
}

func matches(a models.Activity, f models.ActivityFilter) bool {
	if f.Search != "" {
		s := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(a.Title), s) && !strings.Contains(strings.ToLower(a.Notes), s) {
			return false
		}
	}
	switch {
	case f.Category != "" && a.Category != f.Category:
		return false
	case f.SubCategory != "" && a.SubCategory != f.SubCategory:
		return false
	case f.StartDate != "" && a.Date < f.StartDate:
		return false
	case f.EndDate != "" && a.Date > f.EndDate:
		return false
	case f.MinFeeling > 0 && a.Feeling < f.MinFeeling:
		return false
	case f.MaxFeeling > 0 && a.Feeling > f.MaxFeeling:
		return false
	case f.MinDuration > 0 && a.Duration < f.MinDuration:
		return false
	case f.MaxDuration > 0 && a.Duration > f.MaxDuration:
		return false
	}
	return true
}

// compareBy returns -1, 0 or 1 comparing a and b on col.
func compareBy(a, b models.Activity, col string) int {
	switch col {
	case models.SortByDuration:
		return compareInt(a.Duration, b.Duration)
	case models.SortByFeeling:
		return compareInt(a.Feeling, b.Feeling)
	case models.SortByTitle:
		return strings.Compare(a.Title, b.Title)
	case models.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return strings.Compare(a.Date, b.Date)
	}
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
