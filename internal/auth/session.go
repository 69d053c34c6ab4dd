package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Session token configuration.
const (
	SessionTokenBytes = 32 // 32 bytes = 64 hex chars
	SessionKeyPrefix  = "sess:"
	DefaultSessionTTL = 365 * 24 * time.Hour
)

// SessionOptions tunes session lifetime and cookie attributes.
type SessionOptions struct {
	TTL    time.Duration
	Secure bool
}

// SessionManager maps opaque session tokens to identities. All state lives
// in Redis; reads never extend a session's TTL.
type SessionManager struct {
	client redis.Cmdable
	signer *CookieSigner
	ttl    time.Duration
	secure bool
}

// NewSessionManager creates a manager writing to client.
func NewSessionManager(client redis.Cmdable, signer *CookieSigner, opts SessionOptions) *SessionManager {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionManager{
		client: client,
		signer: signer,
		ttl:    ttl,
		secure: opts.Secure,
	}
}

// TTL returns the lifetime given to new sessions.
func (m *SessionManager) TTL() time.Duration {
	return m.ttl
}

// Create stores id under a fresh random token and returns the token.
func (m *SessionManager) Create(ctx context.Context, id Identity) (string, error) {
	if id.UserID == 0 {
		return "", errors.New("create session: empty identity")
	}
	token, err := randomToken(SessionTokenBytes)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	payload, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("marshal session: %w", err)
	}

	ok, err := m.client.SetNX(ctx, sessionKey(token), payload, m.ttl).Result()
	if err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if !ok {
		return "", errors.New("store session: token collision")
	}
	return token, nil
}

// Resolve looks up the identity stored under token. A missing or expired
// session yields ok=false with a nil error.
func (m *SessionManager) Resolve(ctx context.Context, token string) (Identity, bool, error) {
	if token == "" {
		return Identity{}, false, nil
	}
	data, err := m.client.Get(ctx, sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, false, nil
		}
		return Identity{}, false, fmt.Errorf("get session: %w", err)
	}

	var id Identity
	if err := json.Unmarshal(data, &id); err != nil {
		return Identity{}, false, fmt.Errorf("unmarshal session: %w", err)
	}
	return id, true, nil
}

// Destroy deletes the session and reports whether it existed.
func (m *SessionManager) Destroy(ctx context.Context, token string) (bool, error) {
	if token == "" {
		return false, nil
	}
	n, err := m.client.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return n > 0, nil
}

func sessionKey(token string) string {
	return SessionKeyPrefix + token
}

func randomToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
