package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/group-shedule/schedule-site/internal/model"
	"github.com/group-shedule/schedule-site/pkg/redis"
)

// Store 会话状态存储
type Store interface {
	// Load 读取会话，不存在时返回新状态
	Load(ctx context.Context, id string) (*State, error)
	// Save 写回会话并刷新有效期
	Save(ctx context.Context, id string, st *State) error
	// Delete 删除会话
	Delete(ctx context.Context, id string) error
	// Lock 串行化同一会话的请求，返回解锁函数
	Lock(id string) func()
}

// ── 同会话串行锁 ──

type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*refMutex)}
}

func (k *keyedMutex) Lock(id string) func() {
	k.mu.Lock()
	m, ok := k.locks[id]
	if !ok {
		m = &refMutex{}
		k.locks[id] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}

// ── 内存实现 ──

type memoryItem struct {
	data      []byte
	expiresAt time.Time
}

// memorySweepInterval 两次过期清理之间的最短间隔
const memorySweepInterval = time.Minute

// MemoryStore 进程内会话存储（Redis 不可用时降级使用）
// 过期会话在 Save 时按间隔批量清理，未带 Cookie 的一次性访问不会常驻内存
type MemoryStore struct {
	*keyedMutex
	mu        sync.Mutex
	items     map[string]memoryItem
	ttl       time.Duration
	now       func() time.Time
	nextSweep time.Time
}

// NewMemoryStore 创建内存会话存储
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		keyedMutex: newKeyedMutex(),
		items:      make(map[string]memoryItem),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (s *MemoryStore) Load(_ context.Context, id string) (*State, error) {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok && s.ttl > 0 && s.now().After(item.expiresAt) {
		delete(s.items, id)
		ok = false
	}
	s.mu.Unlock()
	if !ok {
		return New(), nil
	}
	return decode(item.data)
}

func (s *MemoryStore) Save(_ context.Context, id string, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	now := s.now()
	s.mu.Lock()
	if s.ttl > 0 && !now.Before(s.nextSweep) {
		s.sweepLocked(now)
	}
	s.items[id] = memoryItem{data: data, expiresAt: now.Add(s.ttl)}
	s.mu.Unlock()
	return nil
}

// sweepLocked 删除全部过期会话，调用方需持有 s.mu
func (s *MemoryStore) sweepLocked(now time.Time) {
	for id, item := range s.items {
		if now.After(item.expiresAt) {
			delete(s.items, id)
		}
	}
	s.nextSweep = now.Add(memorySweepInterval)
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.items, id)
	s.mu.Unlock()
	return nil
}

// ── Redis 实现 ──

// RedisStore 基于 Redis 的会话存储
// 锁只在本进程内生效，多实例部署时同一会话的并发写以后写者为准
type RedisStore struct {
	*keyedMutex
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore 创建 Redis 会话存储
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{keyedMutex: newKeyedMutex(), rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	data, err := s.rdb.GetSession(ctx, id)
	if errors.Is(err, redis.ErrNotFound) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return decode(data)
}

func (s *RedisStore) Save(ctx context.Context, id string, st *State) error {
	data, err := json.Marshal(st)
	if err != nil {
		return err
	}
	return s.rdb.SaveSession(ctx, id, data, s.ttl)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.rdb.DeleteSession(ctx, id)
}

func decode(data []byte) (*State, error) {
	st := New()
	if err := json.Unmarshal(data, st); err != nil {
		// 损坏的快照直接丢弃，从空状态开始
		return New(), nil
	}
	if st.Entries == nil {
		st.Entries = []model.ScheduleEntry{}
	}
	return st, nil
}
