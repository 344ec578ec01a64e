package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"paiban/internal/service"
	"paiban/pkg/response"
)

// EmployeeHandler 员工花名册 HTTP 处理器（只读）
type EmployeeHandler struct {
	employeeSvc service.EmployeeService
}

// NewEmployeeHandler 创建 EmployeeHandler
func NewEmployeeHandler(employeeSvc service.EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{employeeSvc: employeeSvc}
}

// List 组织花名册
// GET /api/v1/employees
func (h *EmployeeHandler) List(c *gin.Context) {
	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	list, err := h.employeeSvc.List(c.Request.Context(), orgID)
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": list})
}

// Get 员工详情
// GET /api/v1/employees/:id
func (h *EmployeeHandler) Get(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 12301, "员工ID不能为空")
		return
	}

	orgID, ok := MustGetOrganizationID(c)
	if !ok {
		return
	}

	employee, err := h.employeeSvc.Get(c.Request.Context(), orgID, id)
	if err != nil {
		if errors.Is(err, service.ErrEmployeeNotFound) {
			response.NotFound(c, 12102, "员工不存在")
			return
		}
		response.InternalError(c)
		return
	}

	response.OK(c, employee)
}
