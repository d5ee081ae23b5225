package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nimasrn/water-billing/internal/model"
	"github.com/nimasrn/water-billing/pkg/redis"
)

const sessionKeyPrefix = "session:"

// SessionStore keeps bearer sessions in redis, the key expiry is the
// session lifetime.
type SessionStore struct {
	redis redis.RedisAdapter
	ttl   time.Duration
	now   func() time.Time
}

func NewSessionStore(r redis.RedisAdapter, ttl time.Duration) *SessionStore {
	return &SessionStore{
		redis: r,
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *SessionStore) TTL() time.Duration {
	return s.ttl
}

// Create opens a session for u and returns it with its token.
func (s *SessionStore) Create(ctx context.Context, u *model.User) (*model.Session, error) {
	token := strings.ReplaceAll(uuid.NewString()+uuid.NewString(), "-", "")
	sess := &model.Session{
		Token:     token,
		UserID:    u.ID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		ExpiresAt: s.now().Add(s.ttl),
	}

	payload, err := json.Marshal(sess)
	if err != nil {
		return nil, err
	}
	if err := s.redis.Set(ctx, sessionKeyPrefix+token, payload, s.ttl); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	return sess, nil
}

// Get resolves a token. Unknown and expired tokens give ErrSessionExpired.
func (s *SessionStore) Get(ctx context.Context, token string) (*model.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, model.ErrSessionExpired
	}

	payload, err := s.redis.Get(ctx, sessionKeyPrefix+token)
	if err != nil {
		if errors.Is(err, redis.NilError) {
			return nil, model.ErrSessionExpired
		}
		return nil, fmt.Errorf("load session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(payload, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if !sess.ExpiresAt.After(s.now()) {
		return nil, model.ErrSessionExpired
	}
	sess.Token = token
	return &sess, nil
}

func (s *SessionStore) Delete(ctx context.Context, token string) error {
	return s.redis.Del(ctx, sessionKeyPrefix+token)
}
