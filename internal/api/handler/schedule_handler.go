package handler

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"paiban/internal/model"
	"paiban/internal/service"
	"paiban/pkg/response"
)

// ScheduleHandler 排班视图与导出 HTTP 处理器
type ScheduleHandler struct {
	viewSvc   service.ScheduleViewService
	exportSvc service.ExportService
}

// NewScheduleHandler 创建 ScheduleHandler
func NewScheduleHandler(viewSvc service.ScheduleViewService, exportSvc service.ExportService) *ScheduleHandler {
	return &ScheduleHandler{viewSvc: viewSvc, exportSvc: exportSvc}
}

// GetDay 单日排班视图
// GET /api/v1/schedule/day?date=2026-09-01
func (h *ScheduleHandler) GetDay(c *gin.Context) {
	date, ok := parseDateQuery(c, "date")
	if !ok {
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	day, err := h.viewSvc.GetDaySchedule(c.Request.Context(), orgID, date)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, day)
}

// GetRange 日期区间排班视图
// GET /api/v1/schedule/range?from=2026-09-01&to=2026-09-07
func (h *ScheduleHandler) GetRange(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	rangeView, err := h.viewSvc.GetRangeSchedule(c.Request.Context(), orgID, from, to)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	response.OK(c, rangeView)
}

// ExportXLSX 导出区间排班为 Excel
// GET /api/v1/schedule/export?from=2026-09-01&to=2026-09-30
func (h *ScheduleHandler) ExportXLSX(c *gin.Context) {
	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	buf, filename, err := h.exportSvc.ExportScheduleXLSX(c.Request.Context(), orgID, from, to)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename*=UTF-8''%s`, url.PathEscape(filename)))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// ExportICS 导出员工排班为 iCalendar 订阅内容
// GET /api/v1/schedule/ics/:employee_id?from=2026-09-01&to=2026-09-30
func (h *ScheduleHandler) ExportICS(c *gin.Context) {
	employeeID := c.Param("employee_id")
	if employeeID == "" {
		response.BadRequest(c, 12201, "员工ID不能为空")
		return
	}

	from, ok := parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := parseDateQuery(c, "to")
	if !ok {
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}
	role, ok := MustGetRole(c)
	if !ok {
		return
	}

	// 普通员工只能导出自己的日历；排班管理角色可导出任意员工
	if role != "admin" && role != "scheduler" && employeeID != userID {
		response.Forbidden(c, 10003, "无权导出他人日历")
		return
	}

	content, err := h.exportSvc.ExportEmployeeICS(c.Request.Context(), orgID, employeeID, from, to)
	if err != nil {
		h.handleScheduleError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="schedule.ics"`)
	c.Data(200, "text/calendar; charset=utf-8", []byte(content))
}

// parseDateQuery 解析必填日期查询参数，失败时写入 400 响应
func parseDateQuery(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		response.BadRequest(c, 12201, name+"不能为空")
		return time.Time{}, false
	}
	date, err := time.Parse(model.DateLayout, raw)
	if err != nil {
		response.BadRequest(c, 12201, name+"格式非法，应为 yyyy-mm-dd")
		return time.Time{}, false
	}
	return date, true
}

// handleScheduleError 排班视图与导出错误 → HTTP 响应
func (h *ScheduleHandler) handleScheduleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidDateRange):
		response.BadRequest(c, 12202, "日期区间非法：起始日期须不晚于结束日期")
	case errors.Is(err, service.ErrExportNoBookings):
		response.NotFound(c, 12203, "该区间暂无排班记录")
	case errors.Is(err, service.ErrEmployeeNotFound):
		response.NotFound(c, 12102, "员工不存在")
	default:
		response.InternalError(c)
	}
}
