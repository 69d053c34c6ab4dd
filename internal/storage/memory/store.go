// Package memory keeps users and posts in process memory. It enforces the
// same unique constraints as the Postgres schema and backs the service,
// handler and router tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hongminglow/all-in-blog/internal/models"
	"github.com/hongminglow/all-in-blog/internal/storage"
)

var (
	_ storage.UserStore = (*Store)(nil)
	_ storage.PostStore = (*Store)(nil)
)

// Store is a mutex-guarded in-memory implementation of the storage interfaces.
type Store struct {
	mu     sync.RWMutex
	now    func() time.Time
	users  []models.User
	posts  []models.Post
	nextID int64
}

// New returns an empty store.
func New() *Store {
	return &Store{now: time.Now}
}

func (s *Store) CreateUser(_ context.Context, user models.User) (models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user.UUID == "" {
		user.UUID = uuid.NewString()
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	for _, u := range s.users {
		switch {
		case u.Username == user.Username:
			return models.User{}, &storage.UniqueViolation{Field: "username"}
		case u.Email == user.Email:
			return models.User{}, &storage.UniqueViolation{Field: "email"}
		case u.UUID == user.UUID:
			return models.User{}, &storage.UniqueViolation{Field: "uuid"}
		}
	}

	s.nextID++
	user.ID = s.nextID
	user.CreatedAt = s.now()
	user.UpdatedAt = user.CreatedAt
	s.users = append(s.users, user)
	return user, nil
}

func (s *Store) FindByID(_ context.Context, id int64) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.ID == id })
}

func (s *Store) FindByEmail(_ context.Context, email string) (models.User, error) {
	return s.findUser(func(u models.User) bool { return u.Email == email })
}

func (s *Store) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.users {
		if s.users[i].ID == id {
			s.users[i].PasswordHash = passwordHash
			s.users[i].UpdatedAt = s.now()
			return nil
		}
	}
	return storage.ErrNotFound
}

func (s *Store) CreatePost(_ context.Context, post models.Post) (models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if post.UUID == "" {
		post.UUID = uuid.NewString()
	}
	for _, p := range s.posts {
		if p.Title == post.Title {
			return models.Post{}, &storage.UniqueViolation{Field: "title"}
		}
		if p.UUID == post.UUID {
			return models.Post{}, &storage.UniqueViolation{Field: "uuid"}
		}
	}

	s.nextID++
	post.ID = s.nextID
	post.CreatedAt = s.now()
	post.UpdatedAt = post.CreatedAt
	post.Author = nil
	s.posts = append(s.posts, post)
	return post, nil
}

func (s *Store) ListPosts(_ context.Context, limit int) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	posts := make([]models.Post, len(s.posts))
	copy(posts, s.posts)
	sort.SliceStable(posts, func(i, j int) bool {
		if posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
			return posts[i].ID > posts[j].ID
		}
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	if limit >= 0 && len(posts) > limit {
		posts = posts[:limit]
	}
	for i := range posts {
		for _, u := range s.users {
			if u.ID == posts[i].UserID {
				author := u
				posts[i].Author = &author
				break
			}
		}
	}
	return posts, nil
}

func (s *Store) findUser(match func(models.User) bool) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if match(u) {
			return u, nil
		}
	}
	return models.User{}, storage.ErrNotFound
}
