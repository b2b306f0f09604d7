package rbac

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Snapshot 某个用户在某一时刻的角色和有效权限
// 序列化格式见 snapshotRecord
type Snapshot struct {
	UserID      uuid.UUID
	Roles       RoleSet
	Permissions PermissionSet
	LoadedAt    time.Time
}

// EmptySnapshot 没有任何角色的快照
func EmptySnapshot(userID uuid.UUID) Snapshot {
	return Snapshot{
		UserID:      userID,
		Roles:       RoleSet{},
		Permissions: PermissionSet{},
		LoadedAt:    time.Now(),
	}
}

// Can 快照中是否有指定权限
func (s Snapshot) Can(name PermissionName) bool {
	return s.Permissions.HasName(name)
}

type snapshotRecord struct {
	UserID      uuid.UUID    `json:"user_id"`
	Roles       []Role       `json:"roles"`
	Permissions []Permission `json:"permissions"`
	LoadedAt    time.Time    `json:"loaded_at"`
}

func (s Snapshot) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshotRecord{
		UserID:      s.UserID,
		Roles:       s.Roles.Slice(),
		Permissions: s.Permissions.Slice(),
		LoadedAt:    s.LoadedAt,
	})
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	var rec snapshotRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return err
	}
	s.UserID = rec.UserID
	s.Roles = NewRoleSet(rec.Roles...)
	s.Permissions = NewPermissionSet(rec.Permissions...)
	s.LoadedAt = rec.LoadedAt
	return nil
}

// SnapshotCache 按用户缓存权限快照，带过期时间
type SnapshotCache interface {
	Get(ctx context.Context, userID uuid.UUID) (Snapshot, bool, error)
	Set(ctx context.Context, snap Snapshot, ttl time.Duration) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

type memoryEntry struct {
	snap      Snapshot
	expiresAt time.Time
}

// MemorySnapshotCache 进程内缓存
type MemorySnapshotCache struct {
	mu      sync.Mutex
	entries map[uuid.UUID]memoryEntry
	now     func() time.Time
}

// NewMemorySnapshotCache 创建进程内缓存
func NewMemorySnapshotCache() *MemorySnapshotCache {
	return &MemorySnapshotCache{
		entries: make(map[uuid.UUID]memoryEntry),
		now:     time.Now,
	}
}

func (c *MemorySnapshotCache) Get(_ context.Context, userID uuid.UUID) (Snapshot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[userID]
	if !ok {
		return Snapshot{}, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, userID)
		return Snapshot{}, false, nil
	}
	return entry.snap, true, nil
}

func (c *MemorySnapshotCache) Set(_ context.Context, snap Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[snap.UserID] = memoryEntry{snap: snap, expiresAt: c.now().Add(ttl)}
	return nil
}

func (c *MemorySnapshotCache) Invalidate(_ context.Context, userID uuid.UUID) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
	return nil
}

const redisKeyPrefix = "edustream:rbac:snapshot:"

// RedisSnapshotCache 基于 Redis 的缓存，多实例共享
type RedisSnapshotCache struct {
	client redis.Cmdable
	prefix string
}

// NewRedisSnapshotCache 创建 Redis 缓存
func NewRedisSnapshotCache(client redis.Cmdable) *RedisSnapshotCache {
	return &RedisSnapshotCache{client: client, prefix: redisKeyPrefix}
}

func (c *RedisSnapshotCache) key(userID uuid.UUID) string {
	return c.prefix + userID.String()
}

func (c *RedisSnapshotCache) Get(ctx context.Context, userID uuid.UUID) (Snapshot, bool, error) {
	data, err := c.client.Get(ctx, c.key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("decode snapshot: %w", err)
	}
	return snap, true, nil
}

func (c *RedisSnapshotCache) Set(ctx context.Context, snap Snapshot, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, c.key(snap.UserID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set snapshot: %w", err)
	}
	return nil
}

func (c *RedisSnapshotCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(userID)).Err(); err != nil {
		return fmt.Errorf("redis del snapshot: %w", err)
	}
	return nil
}
