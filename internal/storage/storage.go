package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/hongminglow/all-in-blog/internal/models"
)

// ErrNotFound indicates a record does not exist.
var ErrNotFound = errors.New("record not found")

// ErrAlreadyExists indicates a uniqueness conflict.
var ErrAlreadyExists = errors.New("record already exists")

// UniqueViolation names the unique constraint a write collided with.
// It matches ErrAlreadyExists under errors.Is.
type UniqueViolation struct {
	Field string
}

func (e *UniqueViolation) Error() string {
	return fmt.Sprintf("%s already exists", e.Field)
}

func (e *UniqueViolation) Is(target error) bool {
	return target == ErrAlreadyExists
}

// UserStore captures persistence operations needed for accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	FindByID(ctx context.Context, id int64) (models.User, error)
	FindByEmail(ctx context.Context, email string) (models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}

// PostStore captures persistence operations needed for posts.
type PostStore interface {
	CreatePost(ctx context.Context, post models.Post) (models.Post, error)
	ListPosts(ctx context.Context, limit int) ([]models.Post, error)
}
