package dto

import "github.com/hongminglow/all-in-blog/internal/models"

type CreatePostRequest struct {
	Title    string  `json:"title"`
	Content  string  `json:"content"`
	ImageURL *string `json:"imageURL,omitempty"`
}

type PostResult struct {
	OK    *bool              `json:"ok,omitempty"`
	Error models.FieldErrors `json:"error,omitempty"`
}

// PostCreated is the success value of createPost.
func PostCreated() PostResult {
	ok := true
	return PostResult{OK: &ok}
}
