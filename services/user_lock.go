package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// UserLocker 按用户串行化评分写入
type UserLocker interface {
	Lock(ctx context.Context, userID string) (unlock func(), err error)
}

// 仅当 value 与持有者一致时删除
var releaseScript = redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`)

// RedisUserLocker 基于 SETNX 的分布式锁，多实例部署时使用
type RedisUserLocker struct {
	client *redis.Client
	ttl    time.Duration
	wait   time.Duration
	poll   time.Duration
}

func NewRedisUserLocker(client *redis.Client) *RedisUserLocker {
	return &RedisUserLocker{
		client: client,
		ttl:    30 * time.Second,
		wait:   15 * time.Second,
		poll:   100 * time.Millisecond,
	}
}

func (l *RedisUserLocker) Lock(ctx context.Context, userID string) (func(), error) {
	key := "wellness:lock:" + userID
	token := uuid.New().String()
	deadline := time.Now().Add(l.wait)

	for {
		ok, err := l.client.SetNX(ctx, key, token, l.ttl).Result()
		if err != nil {
			return nil, fmt.Errorf("acquire lock: %w", err)
		}
		if ok {
			return func() {
				// 使用独立 context，请求取消后也要释放
				releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
				defer cancel()
				_ = releaseScript.Run(releaseCtx, l.client, []string{key}, token).Err()
			}, nil
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("acquire lock for %s: timed out", userID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(l.poll):
		}
	}
}

// LocalUserLocker 单进程锁，未配置 Redis 时使用
type LocalUserLocker struct {
	mu    sync.Mutex
	locks map[string]*userMutex
}

// userMutex refs 包含持有者和等待者，归零时从 map 删除
type userMutex struct {
	mu   sync.Mutex
	refs int
}

func NewLocalUserLocker() *LocalUserLocker {
	return &LocalUserLocker{locks: make(map[string]*userMutex)}
}

func (l *LocalUserLocker) Lock(_ context.Context, userID string) (func(), error) {
	l.mu.Lock()
	m, ok := l.locks[userID]
	if !ok {
		m = &userMutex{}
		l.locks[userID] = m
	}
	m.refs++
	l.mu.Unlock()

	m.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Unlock()
			l.mu.Lock()
			m.refs--
			if m.refs == 0 {
				delete(l.locks, userID)
			}
			l.mu.Unlock()
		})
	}, nil
}

