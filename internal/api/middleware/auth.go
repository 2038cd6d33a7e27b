package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/d60-Lab/twitter-core/pkg/response"
)

// ContextUserID gin 上下文中保存当前用户 id 的键
const ContextUserID = "user_id"

var errNoToken = errors.New("missing bearer token")

// Auth 要求合法的 HS256 token，sub 即用户 id
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseToken(c, secret)
		if err != nil {
			response.Unauthorized(c, "invalid or missing token")
			c.Abort()
			return
		}
		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// OptionalAuth 有 token 时解析，没有时作为匿名访问；token 非法仍拒绝
func OptionalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := parseToken(c, secret)
		switch {
		case errors.Is(err, errNoToken):
		case err != nil:
			response.Unauthorized(c, "invalid token")
			c.Abort()
			return
		default:
			c.Set(ContextUserID, userID)
		}
		c.Next()
	}
}

// UserID 取当前用户 id；匿名时为空串
func UserID(c *gin.Context) string {
	return c.GetString(ContextUserID)
}

func parseToken(c *gin.Context, secret string) (string, error) {
	raw := bearer(c)
	if raw == "" {
		return "", errNoToken
	}
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errors.New("token without subject")
	}
	return claims.Subject, nil
}

// bearer 读取 Authorization 头；浏览器 websocket 无法带头，允许 ?token= 兜底
func bearer(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if parts := strings.SplitN(h, " ", 2); len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return strings.TrimSpace(parts[1])
	}
	return c.Query("token")
}
