package models

import "time"

// User is an account that owns activities. Password holds the bcrypt hash and
// APIToken the current bearer token; neither is ever serialised to JSON.
type User struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	Name      string    `json:"name" gorm:"type:varchar(255);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"`
	APIToken  *string   `json:"-" gorm:"uniqueIndex;type:varchar(64)"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HasToken reports whether the user is currently logged in.
func (u *User) HasToken() bool {
	return u.APIToken != nil && *u.APIToken != ""
}
