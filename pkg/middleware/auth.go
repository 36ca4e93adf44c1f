package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"stream-compiler-service/pkg/config"
	"stream-compiler-service/pkg/errno"
	"stream-compiler-service/pkg/restapi"
)

// AuthMiddleware 校验Bearer token，把user_uuid写入上下文。
// jwt.secret为空时直接放行（内网部署）。
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		cfg := config.GetGlobalConfig()
		if cfg == nil || cfg.JWT.Secret == "" {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			restapi.Failed(c, errno.ErrUnauthorized)
			c.Abort()
			return
		}

		tokenString := strings.TrimPrefix(header, "Bearer ")
		claims := jwt.MapClaims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWT.Secret), nil
		})
		if err != nil || !token.Valid {
			restapi.Failed(c, errno.ErrUnauthorized)
			c.Abort()
			return
		}

		if sub, ok := claims["sub"].(string); ok && sub != "" {
			c.Set("user_uuid", sub)
		}
		c.Next()
	}
}
