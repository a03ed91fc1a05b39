package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coderi421/ormsample/internal/errs"
	"github.com/coderi421/ormsample/state"
	redis "github.com/redis/go-redis/v9"
)

// StoreOption is a function type for configuring a Store.
type StoreOption func(store *Store)

type Store struct {
	prefix     string // redis 中 key 的前缀
	client     redis.Cmdable
	expiration time.Duration // 过期时间
}

// NewStore creates a Store backed by client. Every session is a redis hash.
func NewStore(client redis.Cmdable, opts ...StoreOption) *Store {
	res := &Store{
		client:     client,
		prefix:     "ormsample",
		expiration: time.Minute * 15,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func WithPrefix(prefix string) StoreOption {
	return func(store *Store) {
		store.prefix = prefix
	}
}

func WithExpiration(expiration time.Duration) StoreOption {
	return func(store *Store) {
		store.expiration = expiration
	}
}

func (s *Store) key(id string) string {
	return fmt.Sprintf("%s_%s", s.prefix, id)
}

// Generate creates the hash of session id. The hash holds the run ID under
// "_run_id" so that an empty session still exists in redis.
func (s *Store) Generate(ctx context.Context, id string) (state.Session, error) {
	// exists 返回的是整数，lua 里 0 也是 true，所以要和 1 比较
	const lua = `
if redis.call("exists", KEYS[1]) == 1
then
	return -1
else
	redis.call("hset", KEYS[1], ARGV[1], ARGV[2])
	return redis.call("pexpire", KEYS[1], ARGV[3])
end
`
	key := s.key(id)
	res, err := s.client.Eval(ctx, lua, []string{key}, "_run_id", id, s.expiration.Milliseconds()).Int()
	if err != nil {
		return nil, err
	}
	if res < 0 {
		return nil, errs.ErrSessionExists
	}
	return &redisSession{
		key:    key,
		id:     id,
		client: s.client,
	}, nil
}

func (s *Store) Refresh(ctx context.Context, id string) error {
	affected, err := s.client.Expire(ctx, s.key(id), s.expiration).Result()
	if err != nil {
		return err
	}
	if !affected {
		return errs.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	_, err := s.client.Del(ctx, s.key(id)).Result()
	return err
}

func (s *Store) Get(ctx context.Context, id string) (state.Session, error) {
	key := s.key(id)
	i, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if i == 0 {
		return nil, errs.ErrSessionNotFound
	}
	return &redisSession{
		key:    key,
		id:     id,
		client: s.client,
	}, nil
}

type redisSession struct {
	key    string
	id     string
	client redis.Cmdable
}

func (r *redisSession) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", errs.NewErrKeyNotFound(key)
	}
	return val, err
}

// Set writes key only when the session still exists.
func (r *redisSession) Set(ctx context.Context, key string, val string) error {
	const lua = `
if redis.call("exists", KEYS[1]) == 1
then
	return redis.call("hset", KEYS[1], ARGV[1], ARGV[2])
else
	return -1
end
`
	res, err := r.client.Eval(ctx, lua, []string{r.key}, key, val).Int()
	if err != nil {
		return err
	}
	if res < 0 {
		return errs.ErrSessionNotFound
	}
	return nil
}

func (r *redisSession) ID() string {
	return r.id
}
