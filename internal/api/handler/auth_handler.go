package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	"paiban/pkg/redis"
	"paiban/pkg/response"
)

// AuthHandler 会话注销处理器
// 令牌由外部认证服务签发；本服务通过 Redis 黑名单撤销已发放的访问令牌
type AuthHandler struct {
	rdb *redis.Client
}

// NewAuthHandler 创建 AuthHandler；rdb 为 nil 时注销退化为无操作
func NewAuthHandler(rdb *redis.Client) *AuthHandler {
	return &AuthHandler{rdb: rdb}
}

// Logout 注销当前访问令牌
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if h.rdb == nil {
		response.OK(c, nil)
		return
	}

	jti := c.GetString("token_id")
	expAt, hasExp := c.Get("token_exp")
	if jti == "" || !hasExp {
		response.OK(c, nil)
		return
	}

	exp, ok := expAt.(time.Time)
	if !ok {
		response.OK(c, nil)
		return
	}

	if err := h.rdb.BlacklistToken(c.Request.Context(), jti, time.Until(exp)); err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, nil)
}
