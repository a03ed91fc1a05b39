package memory

import (
	"context"
	"sync"
	"time"

	"github.com/coderi421/ormsample/internal/errs"
	"github.com/coderi421/ormsample/state"
	cache "github.com/patrickmn/go-cache"
)

type Store struct {
	// 如果难以确保同一个 id 不会被多个 goroutine 来操作，就加上这个
	mutex sync.RWMutex
	c     *cache.Cache
	// 利用一个内存缓存来帮助我们管理过期时间
	expiration time.Duration
}

// NewStore creates a Store whose sessions expire after expiration
// without a Refresh.
func NewStore(expiration time.Duration) *Store {
	return &Store{
		c:          cache.New(expiration, time.Second),
		expiration: expiration,
	}
}

// Generate creates an empty session for id.
func (s *Store) Generate(ctx context.Context, id string) (state.Session, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess := &memorySession{
		id:   id,
		data: make(map[string]string, 2),
	}
	// Add 在 key 已经存在时返回 error
	if err := s.c.Add(id, sess, s.expiration); err != nil {
		return nil, errs.ErrSessionExists
	}
	return sess, nil
}

// Refresh resets the expiration of the session.
func (s *Store) Refresh(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, ok := s.c.Get(id)
	if !ok {
		return errs.ErrSessionNotFound
	}
	s.c.Set(id, sess, s.expiration)
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.c.Delete(id)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (state.Session, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sess, ok := s.c.Get(id)
	if !ok {
		return nil, errs.ErrSessionNotFound
	}
	return sess.(*memorySession), nil
}

type memorySession struct {
	mutex sync.RWMutex
	id    string
	data  map[string]string
}

func (m *memorySession) Get(ctx context.Context, key string) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return "", errs.NewErrKeyNotFound(key)
	}
	return val, nil
}

func (m *memorySession) Set(ctx context.Context, key string, val string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[key] = val
	return nil
}

func (m *memorySession) ID() string {
	return m.id
}
