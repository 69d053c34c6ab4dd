package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Reset token configuration.
const (
	ResetKeyPrefix     = "forgetpassword-"
	DefaultResetExpiry = 24 * time.Hour
)

// ResetTokenStore issues single-use password-reset tokens backed by Redis.
type ResetTokenStore struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewResetTokenStore creates a store whose tokens live for ttl.
func NewResetTokenStore(client redis.Cmdable, ttl time.Duration) *ResetTokenStore {
	if ttl <= 0 {
		ttl = DefaultResetExpiry
	}
	return &ResetTokenStore{client: client, ttl: ttl}
}

// Issue stores a fresh token for userID and returns it.
func (s *ResetTokenStore) Issue(ctx context.Context, userID int64) (string, error) {
	token := uuid.NewString()
	if err := s.client.Set(ctx, resetKey(token), strconv.FormatInt(userID, 10), s.ttl).Err(); err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	return token, nil
}

// Redeem consumes token with a single GETDEL, so concurrent redemptions of
// the same token succeed at most once. Absent or expired tokens yield ok=false.
func (s *ResetTokenStore) Redeem(ctx context.Context, token string) (int64, bool, error) {
	if token == "" {
		return 0, false, nil
	}
	raw, err := s.client.GetDel(ctx, resetKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, false, nil
		}
		return 0, false, fmt.Errorf("redeem reset token: %w", err)
	}
	userID, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("redeem reset token: malformed user id %q", raw)
	}
	return userID, true, nil
}

func resetKey(token string) string {
	return ResetKeyPrefix + token
}
