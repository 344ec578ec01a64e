package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"paiban/internal/dto"
	"paiban/internal/service"
	pkgerrors "paiban/pkg/errors"
	"paiban/pkg/response"
)

// BookingHandler 预约模块 HTTP 处理器
type BookingHandler struct {
	bookingSvc service.BookingService
}

// NewBookingHandler 创建 BookingHandler
func NewBookingHandler(bookingSvc service.BookingService) *BookingHandler {
	return &BookingHandler{bookingSvc: bookingSvc}
}

// Create 创建预约
// POST /api/v1/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req dto.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Create(c.Request.Context(), orgID, callerID, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.Created(c, booking)
}

// List 查询预约列表
// GET /api/v1/bookings
func (h *BookingHandler) List(c *gin.Context) {
	var req dto.ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	list, total, err := h.bookingSvc.List(c.Request.Context(), orgID, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OKPage(c, list, total, req.GetPage(), req.GetPageSize())
}

// Get 获取单条预约
// GET /api/v1/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Get(c.Request.Context(), orgID, id)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// Edit 修改预约
// PATCH /api/v1/bookings/:id
func (h *BookingHandler) Edit(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	var req dto.EditBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Edit(c.Request.Context(), orgID, id, callerID, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// Claim 认领未指派预约（认领人即当前用户）
// POST /api/v1/bookings/:id/claim
func (h *BookingHandler) Claim(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Claim(c.Request.Context(), orgID, id, callerID)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// Reassign 改派到新资源（拖拽路径）
// POST /api/v1/bookings/:id/reassign
func (h *BookingHandler) Reassign(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	var req dto.ReassignBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 12001, "参数校验失败")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Reassign(c.Request.Context(), orgID, id, callerID, &req)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// RequestSwap 被指派人发起换班
// POST /api/v1/bookings/:id/swap-request
func (h *BookingHandler) RequestSwap(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.RequestSwap(c.Request.Context(), orgID, id, callerID)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// Approve 批准
// POST /api/v1/bookings/:id/approve
func (h *BookingHandler) Approve(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Approve(c.Request.Context(), orgID, id, callerID)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// Decline 拒绝（终态）
// POST /api/v1/bookings/:id/decline
func (h *BookingHandler) Decline(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	booking, err := h.bookingSvc.Decline(c.Request.Context(), orgID, id, callerID)
	if err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, booking)
}

// Delete 删除预约
// DELETE /api/v1/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12001, "预约ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	callerID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	if err := h.bookingSvc.Delete(c.Request.Context(), orgID, id, callerID); err != nil {
		h.handleBookingError(c, err)
		return
	}

	response.OK(c, nil)
}

// handleBookingError 预约模块错误 → HTTP 响应
func (h *BookingHandler) handleBookingError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrBookingNotFound):
		response.NotFound(c, 12101, "预约记录不存在")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12102, "员工不存在")
	case errors.Is(err, service.ErrInvalidInterval):
		response.BadRequest(c, 12103, "时段非法：须为同日内时刻且开始早于结束")
	case errors.Is(err, service.ErrBookingConflict):
		response.Conflict(c, 12104, "该时段与目标资源的既有排班冲突")
	case errors.Is(err, service.ErrInvalidTransition):
		response.BadRequest(c, 12105, "当前状态不允许此操作")
	case errors.Is(err, service.ErrNotAssignee):
		response.Forbidden(c, 12106, "仅当前被指派人可发起换班")
	case errors.Is(err, service.ErrBookingUnassigned):
		response.BadRequest(c, 12107, "预约未指派资源")
	case errors.Is(err, pkgerrors.ErrOptimisticLock):
		response.Conflict(c, 12108, "数据已被其他操作修改，请刷新后重试")
	default:
		response.InternalError(c)
	}
}
