package models

import "time"

// Post is a blog entry authored by a user.
type Post struct {
	ID        int64     `json:"id"`
	UUID      string    `json:"uuid"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Vote      int       `json:"vote"`
	ImageURL  *string   `json:"image_url,omitempty"`
	UserID    int64     `json:"-"`
	Author    *User     `json:"user,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
