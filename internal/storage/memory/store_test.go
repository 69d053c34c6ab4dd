package memory

import (
	"context"
	"testing"

	"github.com/hongminglow/all-in-blog/internal/models"
	"github.com/hongminglow/all-in-blog/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_UniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()

	first, err := s.CreateUser(ctx, models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "h"})
	require.NoError(t, err)
	assert.NotEmpty(t, first.UUID)
	assert.Equal(t, models.RoleUser, first.Role)

	_, err = s.CreateUser(ctx, models.User{Username: "alice2", Email: "alice@x.com", PasswordHash: "h"})
	var uv *storage.UniqueViolation
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "email", uv.Field)

	_, err = s.CreateUser(ctx, models.User{Username: "alice", Email: "other@x.com", PasswordHash: "h"})
	require.ErrorAs(t, err, &uv)
	assert.Equal(t, "username", uv.Field)

	_, err = s.FindByEmail(ctx, "alice2@x.com")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestStore_ListPostsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := New()
	user, err := s.CreateUser(ctx, models.User{Username: "alice", Email: "alice@x.com"})
	require.NoError(t, err)

	for _, title := range []string{"first post", "second post", "third post"} {
		_, err := s.CreatePost(ctx, models.Post{Title: title, Content: "body", UserID: user.ID})
		require.NoError(t, err)
	}
	_, err = s.CreatePost(ctx, models.Post{Title: "first post", Content: "again", UserID: user.ID})
	assert.ErrorIs(t, err, storage.ErrAlreadyExists)

	posts, err := s.ListPosts(ctx, 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "third post", posts[0].Title)
	assert.Equal(t, "second post", posts[1].Title)
	require.NotNil(t, posts[0].Author)
	assert.Equal(t, "alice", posts[0].Author.Username)
}

func TestStore_UpdatePassword(t *testing.T) {
	ctx := context.Background()
	s := New()
	user, err := s.CreateUser(ctx, models.User{Username: "alice", Email: "alice@x.com", PasswordHash: "old"})
	require.NoError(t, err)

	require.NoError(t, s.UpdatePassword(ctx, user.ID, "new"))
	got, err := s.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "new", got.PasswordHash)

	assert.ErrorIs(t, s.UpdatePassword(ctx, 404, "x"), storage.ErrNotFound)
}
