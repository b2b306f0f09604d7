// Package rbac 角色与权限解析
// 用户可以同时拥有多个角色，有效权限是这些角色所关联权限的并集。
// 所有检查在出错时一律返回 false（fail closed），同时把存储故障和"没有权限"区分开。
//
// Resolver 是无状态的按请求检查，HTTP 接口和 policyctl 使用它。
// Session 给长连接的调用方使用（前端或 websocket 网关），
// 它跟随登录身份变化自动重新加载，并丢弃过期的加载结果。
package rbac

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	DefaultCacheTTL     = 5 * time.Minute
	DefaultIndexRefresh = 10 * time.Minute
)

// 权限检查结果，用于指标统计
const (
	OutcomeAllowed    = "allowed"
	OutcomeDenied     = "denied"
	OutcomeUnverified = "unverified"
	OutcomeInvalid    = "invalid"

	// OtherPermissionLabel 未知权限在指标里的标签
	OtherPermissionLabel = "other"
)

// CheckObserver 权限检查的观察者
type CheckObserver interface {
	ObservePermissionCheck(permission string, outcome string)
}

// SnapshotSource 能按用户解析出权限快照的组件
type SnapshotSource interface {
	Resolve(ctx context.Context, userID uuid.UUID) (Snapshot, error)
}

// Resolver 角色权限解析器
// 只读取角色存储，不做重试；存储故障以 ErrStoreUnavailable 返回给调用方
type Resolver struct {
	store        RoleStore
	cache        SnapshotCache
	cacheTTL     time.Duration
	indexRefresh time.Duration
	logger       zerolog.Logger
	observer     CheckObserver
	now          func() time.Time

	mu    sync.Mutex
	index *RolePermissionIndex
}

// Option 配置 Resolver
type Option func(*Resolver)

// WithSnapshotCache 设置快照缓存
func WithSnapshotCache(cache SnapshotCache) Option {
	return func(r *Resolver) {
		r.cache = cache
	}
}

// WithCacheTTL 设置快照缓存时间，<=0 表示不缓存
func WithCacheTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		r.cacheTTL = ttl
	}
}

// WithIndexRefresh 设置角色权限索引的刷新间隔，<=0 表示只构建一次
func WithIndexRefresh(d time.Duration) Option {
	return func(r *Resolver) {
		r.indexRefresh = d
	}
}

// WithLogger 设置日志
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// WithObserver 设置权限检查观察者
func WithObserver(observer CheckObserver) Option {
	return func(r *Resolver) {
		r.observer = observer
	}
}

// NewResolver 创建解析器
func NewResolver(store RoleStore, opts ...Option) *Resolver {
	r := &Resolver{
		store:        store,
		cache:        NewMemorySnapshotCache(),
		cacheTTL:     DefaultCacheTTL,
		indexRefresh: DefaultIndexRefresh,
		logger:       zerolog.Nop(),
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// LoadRoles 读取用户的角色
// 用户没有角色（如访客）时返回空集合而不是错误
func (r *Resolver) LoadRoles(ctx context.Context, userID uuid.UUID) (RoleSet, error) {
	if userID == uuid.Nil {
		return RoleSet{}, nil
	}

	roles, err := r.store.RolesForUser(ctx, userID)
	if err != nil {
		r.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("load roles failed")
		return nil, fmt.Errorf("%w: load roles for %s: %w", ErrStoreUnavailable, userID, err)
	}

	set := RoleSet{}
	for _, role := range roles {
		if !set.Add(role) {
			r.logger.Warn().Str("user_id", userID.String()).Str("role", string(role)).Msg("ignoring unknown role")
		}
	}
	return set, nil
}

// ComputeEffectivePermissions 计算角色集合的有效权限
// 空角色集合直接返回空集合，不访问存储
func (r *Resolver) ComputeEffectivePermissions(ctx context.Context, roles RoleSet) (PermissionSet, error) {
	if roles.IsEmpty() {
		return PermissionSet{}, nil
	}

	idx, err := r.currentIndex(ctx)
	if err != nil {
		return nil, err
	}
	return idx.EffectivePermissions(roles), nil
}

// Resolve 返回用户的权限快照，优先读取缓存
func (r *Resolver) Resolve(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	if userID == uuid.Nil {
		return EmptySnapshot(userID), nil
	}

	if snap, ok := r.cachedSnapshot(ctx, userID); ok {
		return snap, nil
	}

	roles, err := r.LoadRoles(ctx, userID)
	if err != nil {
		return Snapshot{}, err
	}
	perms, err := r.ComputeEffectivePermissions(ctx, roles)
	if err != nil {
		return Snapshot{}, err
	}

	snap := Snapshot{
		UserID:      userID,
		Roles:       roles,
		Permissions: perms,
		LoadedAt:    r.now(),
	}
	if r.cache != nil {
		if err := r.cache.Set(ctx, snap, r.cacheTTL); err != nil {
			r.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("cache snapshot failed")
		}
	}
	return snap, nil
}

// Check 检查用户是否拥有某个权限
// 存储故障返回 ErrStoreUnavailable，调用方可以据此区分"拒绝"和"无法确认"
func (r *Resolver) Check(ctx context.Context, userID uuid.UUID, permission string) (bool, error) {
	name, err := NewPermissionName(permission)
	if err != nil {
		r.observe("", OutcomeInvalid)
		return false, err
	}

	snap, err := r.Resolve(ctx, userID)
	if err != nil {
		r.observe(r.metricLabel(name), OutcomeUnverified)
		return false, err
	}

	allowed := snap.Can(name)
	if allowed {
		r.observe(r.metricLabel(name), OutcomeAllowed)
	} else {
		r.observe(r.metricLabel(name), OutcomeDenied)
	}
	return allowed, nil
}

// HasPermission 同 Check，但任何错误都视为没有权限
func (r *Resolver) HasPermission(ctx context.Context, userID uuid.UUID, permission string) bool {
	allowed, err := r.Check(ctx, userID, permission)
	return err == nil && allowed
}

// Invalidate 用户角色变化后清除其缓存
func (r *Resolver) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if r.cache == nil {
		return nil
	}
	return r.cache.Invalidate(ctx, userID)
}

// InvalidateIndex 角色与权限的映射变化后强制下次重建索引
func (r *Resolver) InvalidateIndex() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.index = nil
}

func (r *Resolver) cachedSnapshot(ctx context.Context, userID uuid.UUID) (Snapshot, bool) {
	if r.cache == nil || r.cacheTTL <= 0 {
		return Snapshot{}, false
	}
	snap, ok, err := r.cache.Get(ctx, userID)
	if err != nil {
		// 缓存不可用时直接读存储
		r.logger.Warn().Err(err).Str("user_id", userID.String()).Msg("read snapshot cache failed")
		return Snapshot{}, false
	}
	return snap, ok
}

func (r *Resolver) currentIndex(ctx context.Context) (*RolePermissionIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.index != nil && (r.indexRefresh <= 0 || r.now().Sub(r.index.BuiltAt) < r.indexRefresh) {
		return r.index, nil
	}

	idx, err := BuildIndex(ctx, r.store)
	if err != nil {
		r.logger.Warn().Err(err).Msg("build role permission index failed")
		return nil, fmt.Errorf("%w: build role permission index: %w", ErrStoreUnavailable, err)
	}
	idx.BuiltAt = r.now()
	r.index = idx
	r.logger.Debug().Msg("role permission index rebuilt")
	return idx, nil
}

// metricLabel 只有内置权限或索引里存在的权限才作为指标标签，其余归为 other
// 权限名来自请求参数，直接做标签会让序列数无限增长
func (r *Resolver) metricLabel(name PermissionName) string {
	if name.IsBuiltin() {
		return name.String()
	}
	r.mu.Lock()
	idx := r.index
	r.mu.Unlock()
	if idx.Has(name) {
		return name.String()
	}
	return OtherPermissionLabel
}

func (r *Resolver) observe(permission, outcome string) {
	if r.observer != nil {
		r.observer.ObservePermissionCheck(permission, outcome)
	}
}
