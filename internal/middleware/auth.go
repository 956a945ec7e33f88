package middleware

import (
	"sqlprep_backend/internal/config"
	"sqlprep_backend/internal/util"
	"strings"

	"github.com/gin-gonic/gin"
)

// AuthMiddleware 会话校验：优先读 token Cookie（浏览器端），
// 其次兼容 Authorization: Bearer 头（脚本/调试用）。
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, _ := c.Cookie(util.SessionCookie)

		if tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader != "" {
				tokenString = strings.TrimPrefix(authHeader, "Bearer ")
			}
		}

		if tokenString == "" {
			util.Unauthorized(c, "Not authenticated")
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			util.Unauthorized(c, "Invalid token")
			c.Abort()
			return
		}

		c.Set("user", claims)
		c.Next()
	}
}
