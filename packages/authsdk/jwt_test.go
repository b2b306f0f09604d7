package authsdk

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key"

func TestGenerateAndParseToken(t *testing.T) {
	user := UserContext{UserID: uuid.New(), Username: "teacher1", Email: "t1@example.com"}

	token, err := GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)

	parsed, err := ParseToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, user, *parsed)
	assert.False(t, parsed.IsAnonymous())
}

func TestParseTokenErrors(t *testing.T) {
	user := UserContext{UserID: uuid.New()}
	valid, err := GenerateToken(user, testSecret, time.Hour)
	require.NoError(t, err)
	expired, err := GenerateToken(user, testSecret, -time.Minute)
	require.NoError(t, err)

	noUser := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: "not-a-uuid",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	badUser, err := noUser.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name    string
		token   string
		secret  string
		wantErr error
	}{
		{"空令牌", "", testSecret, ErrNoToken},
		{"签名密钥错误", valid, "other-secret", ErrInvalidToken},
		{"未配置密钥", valid, "", ErrInvalidToken},
		{"令牌过期", expired, testSecret, ErrExpiredToken},
		{"格式错误", "not.a.jwt", testSecret, ErrInvalidToken},
		{"用户ID不是UUID", badUser, testSecret, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user, err := ParseToken(tt.token, tt.secret)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, user)
		})
	}
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	_, err := GenerateToken(UserContext{UserID: uuid.New()}, "", time.Hour)
	assert.Error(t, err)
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := context.Background()
	assert.True(t, UserFromContext(ctx).IsAnonymous())

	user := &UserContext{UserID: uuid.New()}
	ctx = WithUser(ctx, user)
	assert.Same(t, user, UserFromContext(ctx))

	var nilUser *UserContext
	assert.True(t, nilUser.IsAnonymous())
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr error
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", nil},
		{"abc.def.ghi", "abc.def.ghi", nil},
		{"", "", ErrNoToken},
		{"Bearer ", "", ErrNoToken},
		{"Basic dXNlcjpwYXNz", "", ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, err := ExtractBearerToken(tt.header)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
