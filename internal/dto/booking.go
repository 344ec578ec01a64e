package dto

// ── 预约模块 DTO ──

// CreateBookingRequest 创建预约请求
// organization_id 取自调用者令牌，不从请求体读取
type CreateBookingRequest struct {
	Title      string  `json:"title"       binding:"required,min=1,max=200"`
	Type       string  `json:"type"        binding:"required,oneof=shift appointment time_off strategy"`
	Date       string  `json:"date"        binding:"required,datetime=2006-01-02"`
	StartTime  string  `json:"start_time"  binding:"required,datetime=15:04"`
	EndTime    string  `json:"end_time"    binding:"required,datetime=15:04"`
	ResourceID *string `json:"resource_id" binding:"omitempty,uuid"`
	Notes      string  `json:"notes"       binding:"omitempty,max=1000"`
}

// EditBookingRequest 修改预约请求（部分更新，nil 字段保持不变）
type EditBookingRequest struct {
	Title     *string `json:"title"      binding:"omitempty,min=1,max=200"`
	Date      *string `json:"date"       binding:"omitempty,datetime=2006-01-02"`
	StartTime *string `json:"start_time" binding:"omitempty,datetime=15:04"`
	EndTime   *string `json:"end_time"   binding:"omitempty,datetime=15:04"`
	Notes     *string `json:"notes"      binding:"omitempty,max=1000"`
}

// ReassignBookingRequest 改派（拖拽重指派）请求
type ReassignBookingRequest struct {
	ResourceID string `json:"resource_id" binding:"required,uuid"`
}

// ListBookingsRequest 预约列表查询参数
type ListBookingsRequest struct {
	From       string  `form:"from"        binding:"omitempty,datetime=2006-01-02"`
	To         string  `form:"to"          binding:"omitempty,datetime=2006-01-02"`
	ResourceID *string `form:"resource_id" binding:"omitempty,uuid"`
	Status     string  `form:"status"      binding:"omitempty,oneof=open pending approved declined swap_requested"`
	PaginationRequest
}

// IntakeBookingRequest 公开预约入口请求（内外部表单提交）
// 仅能产生 open / pending 记录；非时间字段不做业务校验
type IntakeBookingRequest struct {
	Title      string  `json:"title"       binding:"required,min=1,max=200"`
	Type       string  `json:"type"        binding:"required,oneof=shift appointment time_off strategy"`
	Date       string  `json:"date"        binding:"required,datetime=2006-01-02"`
	StartTime  string  `json:"start_time"  binding:"required,datetime=15:04"`
	EndTime    string  `json:"end_time"    binding:"required,datetime=15:04"`
	ResourceID *string `json:"resource_id" binding:"omitempty,uuid"`
	Notes      string  `json:"notes"       binding:"omitempty,max=1000"`
}

// ── 响应 ──

// BookingResponse 预约记录响应
type BookingResponse struct {
	ID             string            `json:"id"`
	OrganizationID string            `json:"organization_id"`
	Title          string            `json:"title"`
	Type           string            `json:"type"`
	Date           string            `json:"date"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time"`
	Status         string            `json:"status"`
	Resource       *EmployeeResponse `json:"resource,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      string            `json:"created_at"`
	UpdatedAt      string            `json:"updated_at"`
}
