package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	redislib "github.com/redis/go-redis/v9"

	"github.com/syed-hamad/Retail-POS-sub001/pkg/config"
	redisclient "github.com/syed-hamad/Retail-POS-sub001/pkg/redis"
)

// ErrSessionNotFound signals a revoked or expired access id.
var ErrSessionNotFound = errors.New("session not found")

type sessionStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
}

type sessionKeyer interface {
	SessionKey(accessID string) string
}

// Manager stores one session record per issued access token id.
type Manager struct {
	store sessionStore
	keyer sessionKeyer
	ttl   time.Duration
}

// Checker exposes the read-only surface needed by middleware.
type Checker interface {
	Lookup(ctx context.Context, accessID string) (Session, error)
}

// NewManager constructs a session manager backed by Redis.
func NewManager(client *redisclient.Client, cfg config.JWTConfig) (*Manager, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is required")
	}
	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("session ttl must be positive")
	}
	if cfg.SessionTTL < cfg.AccessTokenTTL {
		return nil, fmt.Errorf("session ttl (%s) must cover the access token ttl (%s)", cfg.SessionTTL, cfg.AccessTokenTTL)
	}
	return &Manager{store: client, keyer: client, ttl: cfg.SessionTTL}, nil
}

// Create stores the session under the access token id.
func (m *Manager) Create(ctx context.Context, accessID string, sess Session) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	if sess.SellerID == "" || sess.UserID == "" {
		return fmt.Errorf("session requires seller and user ids")
	}
	if !sess.Role.IsValid() {
		return fmt.Errorf("invalid staff role %q", sess.Role)
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encoding session: %w", err)
	}
	return m.store.Set(ctx, m.keyer.SessionKey(accessID), string(payload), m.ttl)
}

// Lookup returns the stored session for the access id, or ErrSessionNotFound.
func (m *Manager) Lookup(ctx context.Context, accessID string) (Session, error) {
	if strings.TrimSpace(accessID) == "" {
		return Session{}, ErrSessionNotFound
	}
	raw, err := m.store.Get(ctx, m.keyer.SessionKey(accessID))
	if err != nil {
		if errors.Is(err, redislib.Nil) {
			return Session{}, ErrSessionNotFound
		}
		return Session{}, err
	}
	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		return Session{}, fmt.Errorf("decoding session: %w", err)
	}
	return sess, nil
}

// Revoke deletes the session tied to the access id. Revoking an absent
// session is not an error.
func (m *Manager) Revoke(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return fmt.Errorf("access id is required")
	}
	return m.store.Del(ctx, m.keyer.SessionKey(accessID))
}
