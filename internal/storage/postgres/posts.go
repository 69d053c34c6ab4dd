package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hongminglow/all-in-blog/internal/models"
)

// CreatePost inserts a post owned by post.UserID.
func (s *Store) CreatePost(ctx context.Context, post models.Post) (models.Post, error) {
	if post.UUID == "" {
		post.UUID = uuid.NewString()
	}
	const query = `
		INSERT INTO posts (uuid, title, content, image_url, user_id)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, uuid, title, content, vote, image_url, user_id, created_at, updated_at`
	var created models.Post
	err := s.pool.QueryRow(ctx, query, post.UUID, post.Title, post.Content, post.ImageURL, post.UserID).
		Scan(&created.ID, &created.UUID, &created.Title, &created.Content, &created.Vote, &created.ImageURL, &created.UserID, &created.CreatedAt, &created.UpdatedAt)
	if err != nil {
		if uerr := uniqueViolation(err); uerr != nil {
			return models.Post{}, uerr
		}
		return models.Post{}, fmt.Errorf("insert post: %w", err)
	}
	return created, nil
}

// ListPosts returns up to limit posts, newest first, with their authors.
func (s *Store) ListPosts(ctx context.Context, limit int) ([]models.Post, error) {
	const query = `
		SELECT p.id, p.uuid, p.title, p.content, p.vote, p.image_url, p.user_id, p.created_at, p.updated_at,
			u.id, u.uuid, u.username, u.email, u.role, u.created_at, u.updated_at
		FROM posts p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT $1`
	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := make([]models.Post, 0, limit)
	for rows.Next() {
		var p models.Post
		var author models.User
		var role string
		if err := rows.Scan(
			&p.ID, &p.UUID, &p.Title, &p.Content, &p.Vote, &p.ImageURL, &p.UserID, &p.CreatedAt, &p.UpdatedAt,
			&author.ID, &author.UUID, &author.Username, &author.Email, &role, &author.CreatedAt, &author.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		author.Role = models.Role(role)
		p.Author = &author
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}
