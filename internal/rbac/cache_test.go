package rbac_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"terminal-terrace/edustream/internal/rbac"
	"terminal-terrace/edustream/internal/testutils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot() rbac.Snapshot {
	desc := "upload lesson videos"
	return rbac.Snapshot{
		UserID: uuid.New(),
		Roles:  rbac.NewRoleSet(rbac.RoleTeacher, rbac.RoleParent),
		Permissions: rbac.NewPermissionSet(
			rbac.Permission{ID: "p1", Name: rbac.PermUploadVideo, Description: &desc},
			rbac.Permission{ID: "p2", Name: rbac.PermViewContent},
		),
		LoadedAt: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC),
	}
}

func TestSnapshot_JSON(t *testing.T) {
	snap := sampleSnapshot()

	data, err := json.Marshal(snap)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"roles":["teacher","parent"]`)
	assert.Contains(t, string(data), `"upload_video"`)

	var decoded rbac.Snapshot
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.Equal(t, snap.UserID, decoded.UserID)
	assert.True(t, decoded.LoadedAt.Equal(snap.LoadedAt))
	assert.ElementsMatch(t, snap.Roles.Slice(), decoded.Roles.Slice())
	assert.Equal(t, snap.Permissions.Slice(), decoded.Permissions.Slice())
	assert.True(t, decoded.Can(rbac.PermUploadVideo))
	assert.False(t, decoded.Can(rbac.PermModerateContent))
}

func TestSnapshot_UnknownRolesDroppedOnDecode(t *testing.T) {
	raw := `{"user_id":"` + uuid.NewString() + `","roles":["teacher","superuser"],"permissions":[],"loaded_at":"2025-03-01T08:00:00Z"}`

	var decoded rbac.Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &decoded))
	assert.Equal(t, []rbac.Role{rbac.RoleTeacher}, decoded.Roles.Slice())
	assert.Equal(t, 0, decoded.Permissions.Len())
}

func TestMemorySnapshotCache(t *testing.T) {
	ctx := context.Background()
	cache := rbac.NewMemorySnapshotCache()
	snap := sampleSnapshot()

	_, ok, err := cache.Get(ctx, snap.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	// ttl <= 0 不写入
	require.NoError(t, cache.Set(ctx, snap, 0))
	_, ok, _ = cache.Get(ctx, snap.UserID)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, snap, time.Minute))
	got, ok, err := cache.Get(ctx, snap.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, snap.UserID, got.UserID)

	require.NoError(t, cache.Invalidate(ctx, snap.UserID))
	_, ok, _ = cache.Get(ctx, snap.UserID)
	assert.False(t, ok)
}

func TestRedisSnapshotCache(t *testing.T) {
	client := testutils.SetupTestRedis(t)
	if client == nil {
		t.Skip("redis not available")
	}
	ctx := context.Background()
	cache := rbac.NewRedisSnapshotCache(client)
	snap := sampleSnapshot()

	_, ok, err := cache.Get(ctx, snap.UserID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, cache.Set(ctx, snap, time.Minute))
	got, ok, err := cache.Get(ctx, snap.UserID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, got.Can(rbac.PermUploadVideo))
	assert.Equal(t, snap.Permissions.Slice(), got.Permissions.Slice())

	ttl, err := client.TTL(ctx, "edustream:rbac:snapshot:"+snap.UserID.String()).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	require.NoError(t, cache.Invalidate(ctx, snap.UserID))
	_, ok, err = cache.Get(ctx, snap.UserID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestResolver_WithRedisCache(t *testing.T) {
	client := testutils.SetupTestRedis(t)
	if client == nil {
		t.Skip("redis not available")
	}
	ctx := context.Background()

	store := rbac.NewMemoryStore()
	store.Grant(rbac.RoleTeacher, rbac.Permission{ID: "1", Name: rbac.PermUploadVideo})
	userID := uuid.New()
	store.AssignRoles(userID, rbac.RoleTeacher)

	r := rbac.NewResolver(store, rbac.WithSnapshotCache(rbac.NewRedisSnapshotCache(client)))
	allowed, err := r.Check(ctx, userID, "upload_video")
	require.NoError(t, err)
	assert.True(t, allowed)

	// 缓存命中后存储故障不影响结果
	store.FailWith(assert.AnError)
	allowed, err = r.Check(ctx, userID, "upload_video")
	require.NoError(t, err)
	assert.True(t, allowed)

	require.NoError(t, r.Invalidate(ctx, userID))
	_, err = r.Check(ctx, userID, "upload_video")
	assert.True(t, rbac.IsUnverified(err))
}
