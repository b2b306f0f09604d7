package authsdk

import (
	"context"
	"strings"
)

type userKey struct{}

// WithUser 把用户信息放进 context
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userKey{}, user)
}

// UserFromContext 取出 context 中的用户信息
// 没有用户时返回空的 UserContext（UserID 为 uuid.Nil），不会返回 nil
func UserFromContext(ctx context.Context) *UserContext {
	if user, ok := ctx.Value(userKey{}).(*UserContext); ok && user != nil {
		return user
	}
	return &UserContext{}
}

// ExtractBearerToken 从 Authorization 头中提取 token
// 支持 "Bearer <token>"，也接受不带前缀的裸 token
func ExtractBearerToken(header string) (string, error) {
	header = strings.TrimSpace(header)
	if header == "" || header == "Bearer" {
		return "", ErrNoToken
	}
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		token = strings.TrimSpace(token)
		if token == "" {
			return "", ErrNoToken
		}
		return token, nil
	}
	if strings.Contains(header, " ") {
		return "", ErrInvalidToken
	}
	return header, nil
}
