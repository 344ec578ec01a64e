package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"paiban/pkg/jwt"
	"paiban/pkg/redis"
	"paiban/pkg/response"
)

// JWTAuth JWT 认证中间件
// 从 Authorization: Bearer <token> 中提取并验证 Access Token；
// rdb 不为 nil 时同时检查 Token 黑名单
func JWTAuth(jwtMgr *jwt.Manager, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Unauthorized(c, 10002, "缺少认证头")
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(c, 10002, "认证头格式无效")
			c.Abort()
			return
		}

		claims, err := jwtMgr.ParseToken(parts[1])
		if err != nil {
			response.Unauthorized(c, 10002, "Token 无效或已过期")
			c.Abort()
			return
		}

		if claims.TokenType != "access" {
			response.Unauthorized(c, 10002, "Token 类型无效")
			c.Abort()
			return
		}

		if rdb != nil && claims.ID != "" {
			// Redis 出错时放行：黑名单是尽力而为的撤销手段
			if blocked, err := rdb.IsBlacklisted(c.Request.Context(), claims.ID); err == nil && blocked {
				response.Unauthorized(c, 10002, "Token 已被撤销")
				c.Abort()
				return
			}
		}

		// 将调用者信息注入上下文；令牌标识与过期时间供注销撤销使用
		c.Set("user_id", claims.UserID)
		c.Set("role", claims.Role)
		c.Set("organization_id", claims.OrganizationID)
		c.Set("token_id", claims.ID)
		if claims.ExpiresAt != nil {
			c.Set("token_exp", claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RoleAuth 角色权限中间件
// 检查当前用户是否具有指定角色之一
func RoleAuth(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Unauthorized(c, 10002, "未认证")
			c.Abort()
			return
		}

		userRole := role.(string)
		for _, r := range allowedRoles {
			if userRole == r {
				c.Next()
				return
			}
		}

		response.Forbidden(c, 10003, "无权限访问")
		c.Abort()
	}
}
