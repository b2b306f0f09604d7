package rbac

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type loadResult struct {
	snap Snapshot
	err  error
}

// gatedSource 每次 Resolve 都阻塞，直到测试为该用户放行
type gatedSource struct {
	mu      sync.Mutex
	gates   map[uuid.UUID]chan loadResult
	calls   map[uuid.UUID]int
	started chan uuid.UUID
}

func newGatedSource() *gatedSource {
	return &gatedSource{
		gates:   make(map[uuid.UUID]chan loadResult),
		calls:   make(map[uuid.UUID]int),
		started: make(chan uuid.UUID, 16),
	}
}

func (g *gatedSource) gate(userID uuid.UUID) chan loadResult {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.gates[userID]
	if !ok {
		ch = make(chan loadResult, 1)
		g.gates[userID] = ch
	}
	return ch
}

func (g *gatedSource) Resolve(ctx context.Context, userID uuid.UUID) (Snapshot, error) {
	g.mu.Lock()
	g.calls[userID]++
	g.mu.Unlock()
	g.started <- userID

	// 即使 ctx 已取消也等待放行，模拟不响应取消的慢存储
	res := <-g.gate(userID)
	return res.snap, res.err
}

func (g *gatedSource) callCount(userID uuid.UUID) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls[userID]
}

func (g *gatedSource) release(userID uuid.UUID, snap Snapshot, err error) {
	g.gate(userID) <- loadResult{snap: snap, err: err}
}

func snapshotWith(userID uuid.UUID, perms ...Permission) Snapshot {
	return Snapshot{
		UserID:      userID,
		Roles:       NewRoleSet(RoleTeacher),
		Permissions: NewPermissionSet(perms...),
		LoadedAt:    time.Now(),
	}
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("load did not finish")
	}
}

func TestSession_InitialStateIsUnresolved(t *testing.T) {
	s := NewSession(newGatedSource())

	assert.Equal(t, StateUnresolved, s.State())
	allowed, err := s.Check("upload_video")
	assert.False(t, allowed)
	assert.ErrorIs(t, err, ErrUnresolved)
	assert.False(t, s.HasPermission("upload_video"))
}

func TestSession_ResolvesOnSignIn(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource()
	s := NewSession(src)
	user := uuid.New()

	done := s.SetIdentity(ctx, UserIdentity(user))
	<-src.started

	// 加载中
	_, err := s.Check("upload_video")
	assert.ErrorIs(t, err, ErrUnresolved)

	src.release(user, snapshotWith(user, permUpload), nil)
	waitDone(t, done)

	assert.Equal(t, StateResolved, s.State())
	assert.True(t, s.HasPermission("upload_video"))
	allowed, err := s.Check("moderate_content")
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestSession_RepeatedIdentityLoadsOnce(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource()
	s := NewSession(src)
	user := uuid.New()

	done := s.SetIdentity(ctx, UserIdentity(user))
	<-src.started
	src.release(user, snapshotWith(user, permUpload), nil)
	waitDone(t, done)

	for i := 0; i < 5; i++ {
		waitDone(t, s.SetIdentity(ctx, UserIdentity(user)))
	}
	assert.Equal(t, 1, src.callCount(user))
	assert.Equal(t, StateResolved, s.State())
}

func TestSession_FailedLoadFailsClosed(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource()
	s := NewSession(src)
	user := uuid.New()

	done := s.SetIdentity(ctx, UserIdentity(user))
	<-src.started
	src.release(user, Snapshot{}, ErrStoreUnavailable)
	waitDone(t, done)

	assert.Equal(t, StateFailed, s.State())
	allowed, err := s.Check("upload_video")
	assert.False(t, allowed)
	assert.ErrorIs(t, err, ErrStoreUnavailable)
	assert.True(t, IsUnverified(err))
	assert.False(t, s.HasPermission("upload_video"))

	// 调用方重试
	done = s.Refresh(ctx)
	<-src.started
	src.release(user, snapshotWith(user, permUpload), nil)
	waitDone(t, done)
	assert.Equal(t, StateResolved, s.State())
	assert.True(t, s.HasPermission("upload_video"))
}

func TestSession_SignOutClearsPermissions(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource()
	s := NewSession(src)
	user := uuid.New()

	done := s.SetIdentity(ctx, UserIdentity(user))
	<-src.started
	src.release(user, snapshotWith(user, permUpload), nil)
	waitDone(t, done)
	require.True(t, s.HasPermission("upload_video"))

	waitDone(t, s.SetIdentity(ctx, Anonymous()))

	assert.Equal(t, StateUnresolved, s.State())
	assert.True(t, s.Identity().IsAnonymous())
	allowed, err := s.Check("upload_video")
	require.NoError(t, err)
	assert.False(t, allowed)
	snap, _ := s.Snapshot()
	assert.Equal(t, 0, snap.Permissions.Len())
	assert.Equal(t, 0, src.callCount(uuid.Nil), "sign-out must not query the store")
}

func TestSession_StaleLoadIsDiscarded(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource()
	s := NewSession(src)
	userA := uuid.New()
	userB := uuid.New()

	doneA := s.SetIdentity(ctx, UserIdentity(userA))
	<-src.started
	doneB := s.SetIdentity(ctx, UserIdentity(userB))
	<-src.started

	// B 先完成
	src.release(userB, snapshotWith(userB, permView), nil)
	waitDone(t, doneB)
	require.Equal(t, StateResolved, s.State())

	// A 的结果晚到，必须丢弃
	src.release(userA, snapshotWith(userA, permUpload, permModerate), nil)
	waitDone(t, doneA)

	snap, state := s.Snapshot()
	assert.Equal(t, StateResolved, state)
	assert.Equal(t, userB, snap.UserID)
	assert.Equal(t, userB, s.Identity().UserID)
	assert.True(t, s.HasPermission("view_content"))
	assert.False(t, s.HasPermission("upload_video"))
	assert.False(t, s.HasPermission("moderate_content"))
}

func TestSession_StaleFailureIsDiscarded(t *testing.T) {
	ctx := context.Background()
	src := newGatedSource()
	s := NewSession(src)
	userA := uuid.New()
	userB := uuid.New()

	doneA := s.SetIdentity(ctx, UserIdentity(userA))
	<-src.started
	doneB := s.SetIdentity(ctx, UserIdentity(userB))
	<-src.started

	src.release(userA, Snapshot{}, ErrStoreUnavailable)
	waitDone(t, doneA)
	assert.Equal(t, StateUnresolved, s.State(), "stale failure must not move the session to failed")

	src.release(userB, snapshotWith(userB, permView), nil)
	waitDone(t, doneB)
	assert.Equal(t, StateResolved, s.State())
}

func TestSession_SwitchCancelsInFlightLoad(t *testing.T) {
	ctx := context.Background()
	userA := uuid.New()
	blocking := &ctxBlockingSource{entered: make(chan struct{}, 1)}
	s := NewSession(blocking)

	doneA := s.SetIdentity(ctx, UserIdentity(userA))
	<-blocking.entered
	waitDone(t, s.SetIdentity(ctx, Anonymous()))

	// 旧加载的 ctx 被取消，goroutine 结束
	waitDone(t, doneA)
	assert.ErrorIs(t, blocking.err(), context.Canceled)
	assert.Equal(t, StateUnresolved, s.State())
}

// ctxBlockingSource 阻塞直到 ctx 被取消
type ctxBlockingSource struct {
	entered chan struct{}
	mu      sync.Mutex
	lastErr error
}

func (b *ctxBlockingSource) Resolve(ctx context.Context, _ uuid.UUID) (Snapshot, error) {
	b.entered <- struct{}{}
	<-ctx.Done()
	b.mu.Lock()
	b.lastErr = ctx.Err()
	b.mu.Unlock()
	return Snapshot{}, ctx.Err()
}

func (b *ctxBlockingSource) err() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lastErr
}

func TestSession_WatchWithResolver(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := NewMemoryStore()
	store.Grant(RoleTeacher, permUpload, permArticle)
	store.Grant(RoleAdmin, permModerate)
	teacher := uuid.New()
	admin := uuid.New()
	store.AssignRoles(teacher, RoleTeacher)
	store.AssignRoles(admin, RoleAdmin)

	s := NewSession(NewResolver(store))
	identities := make(chan Identity)
	watchDone := make(chan struct{})
	go func() {
		s.Watch(ctx, identities)
		close(watchDone)
	}()

	identities <- UserIdentity(teacher)
	require.Eventually(t, func() bool { return s.HasPermission("upload_video") }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, s.HasPermission("moderate_content"))

	identities <- UserIdentity(admin)
	require.Eventually(t, func() bool { return s.HasPermission("moderate_content") }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, s.HasPermission("upload_video"))

	identities <- Anonymous()
	require.Eventually(t, func() bool { return s.Identity().IsAnonymous() }, 2*time.Second, 5*time.Millisecond)
	assert.False(t, s.HasPermission("moderate_content"))

	close(identities)
	waitDone(t, watchDone)
}

func TestSession_InvalidPermissionName(t *testing.T) {
	s := NewSession(newGatedSource())
	_, err := s.Check("Upload Video")
	assert.ErrorIs(t, err, ErrInvalidPermission)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "unresolved", StateUnresolved.String())
	assert.Equal(t, "resolved", StateResolved.String())
	assert.Equal(t, "failed", StateFailed.String())
	assert.Equal(t, "unknown", State(42).String())
}
