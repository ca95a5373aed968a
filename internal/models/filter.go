package models

// ActivityFilter narrows a listing. Zero values mean "no constraint".
// The owning user is not part of the filter; repositories take it separately.
type ActivityFilter struct {
	Search      string `query:"search" validate:"max=255"`
	Category    string `query:"category" validate:"omitempty,category"`
	SubCategory string `query:"sub_category" validate:"max=50"`
	StartDate   string `query:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate     string `query:"end_date" validate:"omitempty,datetime=2006-01-02"`
	MinFeeling  int    `query:"min_feeling" validate:"min=0,max=10"`
	MaxFeeling  int    `query:"max_feeling" validate:"min=0,max=10"`
	MinDuration int    `query:"min_duration" validate:"min=0"`
	MaxDuration int    `query:"max_duration" validate:"min=0"`
	SortBy      string `query:"sort_by" validate:"omitempty,oneof=date duration feeling title created_at"`
	SortOrder   string `query:"sort_order" validate:"omitempty,oneof=asc desc"`
}

// Sortable columns for ActivityFilter.SortBy.
const (
	SortByDate      = "date"
	SortByDuration  = "duration"
	SortByFeeling   = "feeling"
	SortByTitle     = "title"
	SortByCreatedAt = "created_at"
)

// CategoryStats aggregates a user's activities within one category.
type CategoryStats struct {
	Category       string  `json:"category"`
	Count          int64   `json:"count"`
	TotalDuration  int64   `json:"total_duration"`
	AverageFeeling float64 `json:"average_feeling"`
}

// ActivityStats is the per-user summary served by the stats endpoint.
type ActivityStats struct {
	TotalActivities int64           `json:"total_activities"`
	TotalDuration   int64           `json:"total_duration"`
	AverageFeeling  float64         `json:"average_feeling"`
	ByCategory      []CategoryStats `json:"by_category"`
}
