package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"paiban/internal/dto"
	"paiban/internal/service"
	"paiban/pkg/response"
)

// IntakeHandler 公开预约入口 HTTP 处理器
// 未认证表单提交：组织从路径取，限流由中间件承担
type IntakeHandler struct {
	bookingSvc service.BookingService
}

// NewIntakeHandler 创建 IntakeHandler
func NewIntakeHandler(bookingSvc service.BookingService) *IntakeHandler {
	return &IntakeHandler{bookingSvc: bookingSvc}
}

// Create 公开入口创建预约（仅能产生 open/pending 记录）
// POST /api/v1/public/organizations/:org_id/bookings
func (h *IntakeHandler) Create(c *gin.Context) {
	orgID := c.Param("org_id")
	if orgID == "" {
		response.BadRequest(c, 12401, "组织ID不能为空")
		return
	}

	var req dto.IntakeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12401, "参数校验失败")
		return
	}

	booking, err := h.bookingSvc.CreateIntake(c.Request.Context(), orgID, &req)
	if err != nil {
		h.handleIntakeError(c, err)
		return
	}

	response.Created(c, booking)
}

// handleIntakeError 公开入口错误 → HTTP 响应
// 对外不暴露内部细节，错误信息保持与认证接口一致的粒度
func (h *IntakeHandler) handleIntakeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12102, "员工不存在")
	case errors.Is(err, service.ErrInvalidInterval):
		response.BadRequest(c, 12103, "时段非法：须为同日内时刻且开始早于结束")
	case errors.Is(err, service.ErrBookingConflict):
		response.Conflict(c, 12104, "该时段与目标资源的既有排班冲突")
	default:
		response.InternalError(c)
	}
}
