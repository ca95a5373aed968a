package models

import "time"

// Activity is a single tracked entry. UserID is stamped from the
// authenticated identity at creation and never changes afterwards.
type Activity struct {
	ID          string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID      string    `json:"user_id" gorm:"type:varchar(36);not null;index"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null"`
	Category    string    `json:"category" gorm:"type:varchar(50);not null;index"`
	SubCategory string    `json:"sub_category" gorm:"type:varchar(50)"`
	Duration    int       `json:"duration" gorm:"not null"`
	Date        string    `json:"date" gorm:"type:varchar(10);not null;index"` // YYYY-MM-DD
	Feeling     int       `json:"feeling" gorm:"not null"`
	Notes       string    `json:"notes" gorm:"type:text"`
	Status      string    `json:"status" gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Activity statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// Categories maps every category to the sub-categories allowed under it.
var Categories = map[string][]string{
	"Self-care":    {"Yoga", "Gym", "Meditation", "Spa", "Hobby", "Walk", "Other"},
	"Productivity": {"Study", "Cleaning", "Laundry", "Reading", "Cooking", "Other"},
	"Reward":       {"Watching TV", "Hangout with friends", "Shopping", "Enjoying dessert", "Vacation", "Other"},
}

// IsCategory reports whether name is a known category.
func IsCategory(name string) bool {
	_, ok := Categories[name]
	return ok
}

// IsSubCategory reports whether sub belongs to category.
func IsSubCategory(category, sub string) bool {
	for _, s := range Categories[category] {
		if s == sub {
			return true
		}
	}
	return false
}
