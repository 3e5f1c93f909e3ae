package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// ErrNoSession is returned by [Store.Load] when no session is persisted for
// the given ID.
var ErrNoSession = errors.New("no session")

// ErrSessionCorrupt is returned when a persisted record exists but cannot be
// restored. The record has already been wiped when this is returned.
var ErrSessionCorrupt = errors.New("session record corrupt")

// ErrSessionInvalid is returned by [Store.Save] for a structurally unusable
// session (empty token, empty email, or unknown role).
var ErrSessionInvalid = errors.New("session structurally invalid")

// ErrRedisUnavailable is returned when the backing store cannot be reached.
// Callers must treat it as "not yet known", never as "unauthenticated".
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store persists one [Session] per portal session ID.
//
// Store instances are intended to be configured during initialization and
// then treated as immutable.
type Store struct {
	redis  redis.UniversalClient
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewStore creates a session store. An empty prefix defaults to "hs"; a
// non-positive ttl defaults to 24 hours.
func NewStore(client redis.UniversalClient, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = "hs"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{
		redis:  client,
		prefix: prefix,
		ttl:    ttl,
		now:    time.Now,
	}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + ":" + sessionID
}

// Load restores the session persisted under sessionID.
//
// A missing key yields [ErrNoSession]. A record that cannot be decoded, fails
// structural validation, or carries a JWT whose expiry has passed is wiped
// and yields [ErrSessionCorrupt]; callers treat that as unauthenticated.
// Backend failures yield [ErrRedisUnavailable] and leave the record alone.
func (s *Store) Load(ctx context.Context, sessionID string) (*Session, error) {
	if sessionID == "" {
		return nil, ErrNoSession
	}

	data, err := s.redis.Get(ctx, s.key(sessionID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	sess, err := Decode(data)
	if err != nil {
		_, _ = s.redis.Del(ctx, s.key(sessionID)).Result()
		return nil, fmt.Errorf("%w: %v", ErrSessionCorrupt, err)
	}
	if !sess.Valid() {
		_, _ = s.redis.Del(ctx, s.key(sessionID)).Result()
		return nil, fmt.Errorf("%w: missing role or email", ErrSessionCorrupt)
	}
	if s.tokenExpired(sess) {
		_, _ = s.redis.Del(ctx, s.key(sessionID)).Result()
		return nil, fmt.Errorf("%w: credential expired", ErrSessionCorrupt)
	}

	return sess, nil
}

// Save persists sess under sessionID. Token and identity are validated
// together and written as one record; a failed write leaves no partial state.
func (s *Store) Save(ctx context.Context, sessionID string, sess *Session) error {
	if sessionID == "" {
		return ErrSessionInvalid
	}
	if !sess.Valid() {
		return ErrSessionInvalid
	}

	if sess.CreatedAt == 0 {
		sess.CreatedAt = s.now().Unix()
	}
	if sess.ExpiresAt == 0 {
		sess.ExpiresAt = s.now().Add(s.ttl).Unix()
	}

	encoded, err := Encode(sess)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSessionInvalid, err)
	}

	ttl := time.Until(time.Unix(sess.ExpiresAt, 0))
	if ttl <= 0 {
		return ErrSessionInvalid
	}
	if err := s.redis.Set(ctx, s.key(sessionID), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Clear removes the persisted pair. It reports whether a record existed and
// is safe to call repeatedly.
func (s *Store) Clear(ctx context.Context, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	n, err := s.redis.Del(ctx, s.key(sessionID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// tokenExpired checks the best-effort JWT expiry lookahead. The upstream
// token is contractually opaque, so any parse failure means "not expired".
func (s *Store) tokenExpired(sess *Session) bool {
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(sess.Token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(s.now())
}
