package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/hongminglow/all-in-blog/internal/auth"
	"github.com/hongminglow/all-in-blog/internal/models"
	"github.com/hongminglow/all-in-blog/internal/models/dto"
	"github.com/hongminglow/all-in-blog/internal/storage"
)

// MaxPostLimit is both the default and the ceiling for ListPosts.
const MaxPostLimit = 50

// Posts publishes and lists blog posts.
type Posts struct {
	store  storage.PostStore
	logger *zap.Logger
}

// NewPosts returns a Posts service backed by store.
func NewPosts(store storage.PostStore, logger *zap.Logger) *Posts {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Posts{store: store, logger: logger.Named("posts")}
}

// CreatePost publishes a post authored by id. It fails with
// auth.ErrUnauthenticated before touching the store when id is nil.
func (p *Posts) CreatePost(ctx context.Context, id *auth.Identity, req dto.CreatePostRequest) (dto.PostResult, error) {
	author, err := auth.Require(id)
	if err != nil {
		return dto.PostResult{}, err
	}

	if errs := models.ValidatePost(req.Title, req.Content, req.ImageURL); !errs.Empty() {
		return dto.PostResult{Error: errs}, nil
	}

	imageURL := req.ImageURL
	if imageURL != nil && strings.TrimSpace(*imageURL) == "" {
		imageURL = nil
	}
	_, err = p.store.CreatePost(ctx, models.Post{
		Title:    strings.TrimSpace(req.Title),
		Content:  req.Content,
		ImageURL: imageURL,
		UserID:   author.UserID,
	})
	if err != nil {
		var conflict *storage.UniqueViolation
		if errors.As(err, &conflict) {
			return dto.PostResult{Error: models.FieldErrors{conflict.Field: conflict.Field + " already exist"}}, nil
		}
		p.logger.Error("create post failed", zap.Int64("user_id", author.UserID), zap.Error(err))
		return dto.PostResult{Error: models.FieldErrors{ServerField: MsgServerError}}, nil
	}
	return dto.PostCreated(), nil
}

// ListPosts returns the newest posts first. A nil or non-positive limit means
// MaxPostLimit, and larger limits are capped to it.
func (p *Posts) ListPosts(ctx context.Context, limit *int) ([]models.Post, error) {
	posts, err := p.store.ListPosts(ctx, PostLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	if posts == nil {
		posts = []models.Post{}
	}
	return posts, nil
}

// PostLimit clamps a requested page size to 1..MaxPostLimit, treating nil or
// out-of-range values as MaxPostLimit.
func PostLimit(limit *int) int {
	if limit == nil || *limit < 1 || *limit > MaxPostLimit {
		return MaxPostLimit
	}
	return *limit
}
