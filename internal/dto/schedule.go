package dto

// ── 排班视图 DTO ──

// ResourceLane 单个资源（员工）的当日泳道
type ResourceLane struct {
	Resource EmployeeResponse  `json:"resource"`
	Bookings []BookingResponse `json:"bookings"`
}

// DayScheduleResponse 单日排班视图
// Open 为未指派泳道：可被认领的 open 记录
type DayScheduleResponse struct {
	Date  string            `json:"date"`
	Lanes []ResourceLane    `json:"lanes"`
	Open  []BookingResponse `json:"open"`
}

// RangeScheduleResponse 日期区间排班视图
type RangeScheduleResponse struct {
	From string                `json:"from"`
	To   string                `json:"to"`
	Days []DayScheduleResponse `json:"days"`
}

// ChangeNotice 推送给前端的变更提示（收到后应重新拉取对应日期）
type ChangeNotice struct {
	Type string `json:"type"` // schedule.changed
	Op   string `json:"op"`   // insert | update | delete
	Date string `json:"date"`
}
