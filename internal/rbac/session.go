package rbac

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// State 会话的权限解析状态
type State int

const (
	// StateUnresolved 尚未加载（刚登录、正在加载或已登出）
	StateUnresolved State = iota
	// StateResolved 已加载角色和权限
	StateResolved
	// StateFailed 加载失败，等待调用方重试
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUnresolved:
		return "unresolved"
	case StateResolved:
		return "resolved"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Identity 当前登录身份，UserID 为 uuid.Nil 表示匿名
type Identity struct {
	UserID uuid.UUID
}

// Anonymous 匿名身份
func Anonymous() Identity {
	return Identity{}
}

// UserIdentity 已登录用户的身份
func UserIdentity(userID uuid.UUID) Identity {
	return Identity{UserID: userID}
}

// IsAnonymous 是否匿名
func (i Identity) IsAnonymous() bool {
	return i.UserID == uuid.Nil
}

// Session 单个会话的权限状态机
// 由持有登录状态的一方驱动，身份变化时调用 SetIdentity，或把身份流交给 Watch
//
//	Unresolved --加载成功--> Resolved
//	Unresolved --加载失败--> Failed
//	任意状态 --身份变化--> Unresolved（重新加载）
//
// 只在身份真正变化时加载一次。每次变化都会递增 generation 并取消上一次未完成的加载，
// 旧 generation 的结果直接丢弃，不会覆盖新状态。
type Session struct {
	source SnapshotSource
	logger zerolog.Logger

	mu          sync.RWMutex
	identity    Identity
	hasIdentity bool
	generation  uint64
	state       State
	snapshot    Snapshot
	lastErr     error
	cancel      context.CancelFunc
}

// SessionOption 配置 Session
type SessionOption func(*Session)

// WithSessionLogger 设置会话日志
func WithSessionLogger(logger zerolog.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession 创建会话，初始状态为 Unresolved
func NewSession(source SnapshotSource, opts ...SessionOption) *Session {
	s := &Session{
		source: source,
		logger: zerolog.Nop(),
		state:  StateUnresolved,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Watch 订阅身份变化，直到 ctx 结束或 channel 关闭
func (s *Session) Watch(ctx context.Context, identities <-chan Identity) {
	defer s.Close()
	for {
		select {
		case <-ctx.Done():
			return
		case id, ok := <-identities:
			if !ok {
				return
			}
			s.SetIdentity(ctx, id)
		}
	}
}

// SetIdentity 处理一次身份变化
// 返回的 channel 在本次加载结束（应用或被丢弃）时关闭；身份未变化时返回已关闭的 channel
func (s *Session) SetIdentity(ctx context.Context, id Identity) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasIdentity && s.identity == id {
		return closedChan()
	}
	s.identity = id
	s.hasIdentity = true
	return s.startLoadLocked(ctx)
}

// Refresh 为当前身份重新加载，一般用于加载失败后的重试
func (s *Session) Refresh(ctx context.Context) <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.hasIdentity {
		return closedChan()
	}
	return s.startLoadLocked(ctx)
}

func (s *Session) startLoadLocked(ctx context.Context) <-chan struct{} {
	s.generation++
	gen := s.generation
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	// 切换身份时立即清空旧快照，避免新身份沿用旧用户的权限
	s.state = StateUnresolved
	s.snapshot = EmptySnapshot(s.identity.UserID)
	s.lastErr = nil

	if s.identity.IsAnonymous() {
		return closedChan()
	}

	loadCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	done := make(chan struct{})
	go s.load(loadCtx, gen, s.identity, done)
	return done
}

func (s *Session) load(ctx context.Context, gen uint64, id Identity, done chan struct{}) {
	defer close(done)

	snap, err := s.source.Resolve(ctx, id.UserID)

	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		s.logger.Debug().
			Str("user_id", id.UserID.String()).
			Uint64("generation", gen).
			Uint64("current", s.generation).
			Msg("discarding stale permission load")
		return
	}

	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}

	if err != nil {
		s.state = StateFailed
		s.lastErr = err
		s.logger.Warn().Err(err).Str("user_id", id.UserID.String()).Msg("permission load failed")
		return
	}

	s.state = StateResolved
	s.snapshot = snap
}

// Close 取消进行中的加载
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// State 当前状态
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Identity 当前身份
func (s *Session) Identity() Identity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.identity
}

// Snapshot 当前快照，只有 Resolved 状态下的快照才有意义
func (s *Session) Snapshot() (Snapshot, State) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot, s.state
}

// Check 检查当前会话是否拥有某个权限
// 匿名身份直接返回 false；加载中返回 ErrUnresolved；加载失败返回上次的错误
func (s *Session) Check(permission string) (bool, error) {
	name, err := NewPermissionName(permission)
	if err != nil {
		return false, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	switch {
	case s.state == StateResolved:
		return s.snapshot.Can(name), nil
	case s.state == StateFailed:
		return false, s.lastErr
	case s.hasIdentity && s.identity.IsAnonymous():
		return false, nil
	default:
		return false, ErrUnresolved
	}
}

// HasPermission 同 Check，任何错误都返回 false
func (s *Session) HasPermission(permission string) bool {
	allowed, err := s.Check(permission)
	return err == nil && allowed
}

func closedChan() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
