package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// ErrSessionNotFound is returned when a token is unknown, revoked, or expired.
	ErrSessionNotFound = errors.New("session not found")

	// ErrContention is returned when an optimistic transaction keeps losing races.
	ErrContention = errors.New("session: too much contention")
)

const (
	lookupKeyPrefix = "session_id:"
	indexKeyPrefix  = "user_sessions:"

	// maxTxRetries bounds WATCH/MULTI/EXEC retries on conflicting writes
	maxTxRetries = 5
)

// DefaultTTL is the sliding session lifetime when none is configured
const DefaultTTL = 24 * time.Hour

// Record is a session token bound to a user with a sliding expiry.
type Record struct {
	Token     string    `json:"-"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// TokenStore owns the lifecycle of session tokens.
//
// Every method is atomic on its own: a cancelled call never leaves the
// per-user index and the token lookup entry half updated.
type TokenStore interface {
	// Issue creates a new token for the user with expiry now + TTL.
	Issue(ctx context.Context, userID int64) (Record, error)

	// LookupUser resolves a token to its owner. It does not filter by expiry;
	// found is false when the lookup entry no longer exists.
	LookupUser(ctx context.Context, token string) (userID int64, found bool, err error)

	// Refresh slides the token expiry to now + TTL. It returns ErrSessionNotFound
	// when the token is no longer indexed under the user or is already expired.
	Refresh(ctx context.Context, userID int64, token string) (Record, error)

	// Revoke removes a single token. Revoking an absent token is not an error.
	Revoke(ctx context.Context, userID int64, token string) error

	// RevokeAllForUser removes every token indexed under the user and returns how many.
	RevokeAllForUser(ctx context.Context, userID int64) (int, error)

	// SweepExpired reconciles the per-user index with reality and returns the removed tokens.
	SweepExpired(ctx context.Context, userID int64) ([]string, error)

	// Sessions lists the user's live tokens ordered by expiry.
	Sessions(ctx context.Context, userID int64) ([]Record, error)
}

// Option configures a RedisStore
type Option func(*RedisStore)

// WithClock overrides the time source used for expiry bookkeeping
func WithClock(now func() time.Time) Option {
	return func(s *RedisStore) {
		if now != nil {
			s.now = now
		}
	}
}

// WithOperationTimeout bounds every store call so a Redis outage fails fast
func WithOperationTimeout(timeout time.Duration) Option {
	return func(s *RedisStore) {
		s.timeout = timeout
	}
}

// RedisStore implements TokenStore on Redis.
//
// Layout:
//
//	session_id:<token>      STRING  user id, native TTL
//	user_sessions:<userID>  ZSET    member=token, score=expires_at (unix ms)
//
// The sorted-set score is authoritative for expiry; the string TTL lets Redis
// evict abandoned tokens on its own.
type RedisStore struct {
	client  *redis.Client
	ttl     time.Duration
	timeout time.Duration
	now     func() time.Time
}

var _ TokenStore = (*RedisStore)(nil)

// NewRedisStore creates a Redis-backed token store
func NewRedisStore(client *redis.Client, ttl time.Duration, opts ...Option) (*RedisStore, error) {
	if client == nil {
		return nil, fmt.Errorf("session: redis client is required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("session: ttl must be positive, got %s", ttl)
	}

	s := &RedisStore{
		client: client,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the sliding session lifetime
func (s *RedisStore) TTL() time.Duration {
	return s.ttl
}

func lookupKey(token string) string {
	return lookupKeyPrefix + token
}

func indexKey(userID int64) string {
	return indexKeyPrefix + strconv.FormatInt(userID, 10)
}

func scoreOf(t time.Time) float64 {
	return float64(t.UnixMilli())
}

func expiryOf(score float64) time.Time {
	return time.UnixMilli(int64(score))
}

func (s *RedisStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

// watch runs fn in an optimistic transaction, retrying when a watched key changes
func (s *RedisStore) watch(ctx context.Context, fn func(*redis.Tx) error, keys ...string) error {
	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, fn, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return ErrContention
}

// Issue implements TokenStore
func (s *RedisStore) Issue(ctx context.Context, userID int64) (Record, error) {
	token, err := GenerateToken()
	if err != nil {
		return Record{}, err
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	rec := Record{
		Token:     token,
		UserID:    userID,
		ExpiresAt: s.now().Add(s.ttl),
	}

	// SET overwrites and ZADD updates the score, so a colliding token value is replaced
	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.writeRecord(ctx, pipe, rec)
		return nil
	})
	if err != nil {
		return Record{}, fmt.Errorf("session: issue failed: %w", err)
	}

	return rec, nil
}

func (s *RedisStore) writeRecord(ctx context.Context, pipe redis.Pipeliner, rec Record) {
	idx := indexKey(rec.UserID)
	pipe.Set(ctx, lookupKey(rec.Token), rec.UserID, s.ttl)
	pipe.ZAdd(ctx, idx, &redis.Z{Score: scoreOf(rec.ExpiresAt), Member: rec.Token})
	// the index never needs to outlive its newest token
	pipe.Expire(ctx, idx, s.ttl)
}

// LookupUser implements TokenStore
func (s *RedisStore) LookupUser(ctx context.Context, token string) (int64, bool, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	userID, err := s.client.Get(ctx, lookupKey(token)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("session: lookup failed: %w", err)
	}
	return userID, true, nil
}

// Refresh implements TokenStore
func (s *RedisStore) Refresh(ctx context.Context, userID int64, token string) (Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	idx, key := indexKey(userID), lookupKey(token)

	var rec Record
	err := s.watch(ctx, func(tx *redis.Tx) error {
		score, err := tx.ZScore(ctx, idx, token).Result()
		if errors.Is(err, redis.Nil) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		now := s.now()
		if !expiryOf(score).After(now) {
			return ErrSessionNotFound
		}

		owner, err := tx.Get(ctx, key).Int64()
		if errors.Is(err, redis.Nil) || (err == nil && owner != userID) {
			return ErrSessionNotFound
		}
		if err != nil {
			return err
		}

		// scores have millisecond resolution; a refresh must still move expiry forward
		expiresAt := now.Add(s.ttl)
		if scoreOf(expiresAt) <= score {
			expiresAt = expiryOf(score + 1).In(now.Location())
		}
		rec = Record{Token: token, UserID: userID, ExpiresAt: expiresAt}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			s.writeRecord(ctx, pipe, rec)
			return nil
		})
		return err
	}, key, idx)

	if err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return Record{}, err
		}
		return Record{}, fmt.Errorf("session: refresh failed: %w", err)
	}
	return rec, nil
}

// Revoke implements TokenStore
func (s *RedisStore) Revoke(ctx context.Context, userID int64, token string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.ZRem(ctx, indexKey(userID), token)
		pipe.Del(ctx, lookupKey(token))
		return nil
	})
	if err != nil {
		return fmt.Errorf("session: revoke failed: %w", err)
	}
	return nil
}

// RevokeAllForUser implements TokenStore
func (s *RedisStore) RevokeAllForUser(ctx context.Context, userID int64) (int, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	idx := indexKey(userID)

	var revoked int
	err := s.watch(ctx, func(tx *redis.Tx) error {
		tokens, err := tx.ZRange(ctx, idx, 0, -1).Result()
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, token := range tokens {
				pipe.Del(ctx, lookupKey(token))
			}
			pipe.Del(ctx, idx)
			return nil
		})
		if err == nil {
			revoked = len(tokens)
		}
		return err
	}, idx)

	if err != nil {
		return 0, fmt.Errorf("session: revoke all failed: %w", err)
	}
	return revoked, nil
}

// SweepExpired implements TokenStore
func (s *RedisStore) SweepExpired(ctx context.Context, userID int64) ([]string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	idx := indexKey(userID)

	var removed []string
	err := s.watch(ctx, func(tx *redis.Tx) error {
		removed = nil
		bound := strconv.FormatInt(s.now().UnixMilli(), 10)

		expired, err := tx.ZRangeByScore(ctx, idx, &redis.ZRangeBy{Min: "-inf", Max: bound}).Result()
		if err != nil {
			return err
		}
		live, err := tx.ZRangeByScore(ctx, idx, &redis.ZRangeBy{Min: "(" + bound, Max: "+inf"}).Result()
		if err != nil {
			return err
		}

		// index entries whose lookup key Redis already evicted
		exists := make([]*redis.IntCmd, len(live))
		if len(live) > 0 {
			_, err = tx.Pipelined(ctx, func(pipe redis.Pipeliner) error {
				for i, token := range live {
					exists[i] = pipe.Exists(ctx, lookupKey(token))
				}
				return nil
			})
			if err != nil {
				return err
			}
		}

		removed = append(removed, expired...)
		for i, token := range live {
			if exists[i].Val() == 0 {
				removed = append(removed, token)
			}
		}
		if len(removed) == 0 {
			return nil
		}

		members := make([]interface{}, len(removed))
		for i, token := range removed {
			members[i] = token
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.ZRem(ctx, idx, members...)
			for _, token := range expired {
				pipe.Del(ctx, lookupKey(token))
			}
			return nil
		})
		return err
	}, idx)

	if err != nil {
		return nil, fmt.Errorf("session: sweep failed: %w", err)
	}
	return removed, nil
}

// Sessions implements TokenStore
func (s *RedisStore) Sessions(ctx context.Context, userID int64) ([]Record, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	bound := "(" + strconv.FormatInt(s.now().UnixMilli(), 10)
	entries, err := s.client.ZRangeByScoreWithScores(ctx, indexKey(userID), &redis.ZRangeBy{
		Min: bound,
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("session: list failed: %w", err)
	}

	records := make([]Record, 0, len(entries))
	for _, z := range entries {
		token, ok := z.Member.(string)
		if !ok {
			continue
		}
		records = append(records, Record{
			Token:     token,
			UserID:    userID,
			ExpiresAt: expiryOf(z.Score),
		})
	}
	return records, nil
}
