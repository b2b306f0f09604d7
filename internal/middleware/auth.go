package middleware

import (
	"errors"

	"terminal-terrace/edustream/internal/dto"
	"terminal-terrace/edustream/packages/authsdk"
	"terminal-terrace/edustream/packages/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	accessTokenCookie = "access_token"
	userContextKey    = "user"
	userIDKey         = "user_id"
)

// parseToken 从 cookie 或 Authorization header 中解析 token
func parseToken(c *gin.Context, secret string) (*authsdk.UserContext, error) {
	// 优先从 cookie 中获取 access_token
	tokenString, err := c.Cookie(accessTokenCookie)
	if err != nil || tokenString == "" {
		tokenString, err = authsdk.ExtractBearerToken(c.GetHeader("Authorization"))
		if err != nil {
			return nil, err
		}
	}
	return authsdk.ParseToken(tokenString, secret)
}

func setUser(c *gin.Context, user *authsdk.UserContext) {
	c.Set(userContextKey, user)
	c.Set(userIDKey, user.UserID)
	c.Request = c.Request.WithContext(authsdk.WithUser(c.Request.Context(), user))
}

// JWTAuth JWT 认证中间件（必需认证）
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, err := parseToken(c, secret)
		if err != nil {
			dto.AbortWithError(c, response.NewBusinessError(
				response.WithErrorCode(response.Unauthorized),
				response.WithErrorMessage(authMessage(err)),
				response.WithError(err),
			))
			return
		}

		setUser(c, user)
		c.Next()
	}
}

// OptionalJWTAuth 可选的 JWT 认证中间件（不强制要求认证，但如果有token则解析）
func OptionalJWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, err := parseToken(c, secret); err == nil {
			setUser(c, user)
		}
		c.Next()
	}
}

// CurrentUser 取出当前用户，未登录时返回匿名用户
func CurrentUser(c *gin.Context) *authsdk.UserContext {
	if v, ok := c.Get(userContextKey); ok {
		if user, ok := v.(*authsdk.UserContext); ok {
			return user
		}
	}
	return &authsdk.UserContext{}
}

// CurrentUserID 当前用户 ID，未登录时为 uuid.Nil
func CurrentUserID(c *gin.Context) uuid.UUID {
	return CurrentUser(c).UserID
}

func authMessage(err error) string {
	switch {
	case errors.Is(err, authsdk.ErrNoToken):
		return "未提供认证令牌"
	case errors.Is(err, authsdk.ErrExpiredToken):
		return "认证令牌已过期"
	default:
		return "无效的认证令牌"
	}
}
