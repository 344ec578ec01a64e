package model

import (
	"time"

	"gorm.io/gorm"
)

// BookingStatus 预约状态（封闭集合，所有状态判断统一走本类型的方法与状态机表）
type BookingStatus string

const (
	// StatusOpen 未指派，可被认领
	StatusOpen BookingStatus = "open"
	// StatusPending 待审批（请假申请、换班后的待确认指派从此进入）
	StatusPending BookingStatus = "pending"
	// StatusApproved 已生效，占用资源日历并参与冲突检测
	StatusApproved BookingStatus = "approved"
	// StatusDeclined 已拒绝，终态，不再参与冲突检测
	StatusDeclined BookingStatus = "declined"
	// StatusSwapRequested 被指派人发起换班，解决前仍占用日历
	StatusSwapRequested BookingStatus = "swap_requested"
)

// Valid 判断是否为合法状态值
func (s BookingStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusPending, StatusApproved, StatusDeclined, StatusSwapRequested:
		return true
	}
	return false
}

// Occupies 该状态是否占用资源日历（参与冲突检测）
// open 尚未绑定资源、declined 为终态，均不占用
func (s BookingStatus) Occupies() bool {
	switch s {
	case StatusPending, StatusApproved, StatusSwapRequested:
		return true
	}
	return false
}

// Terminal 是否为终态（终态不允许任何后续状态迁移）
func (s BookingStatus) Terminal() bool { return s == StatusDeclined }

// BookingType 预约类型
type BookingType string

const (
	TypeShift       BookingType = "shift"       // 排班
	TypeAppointment BookingType = "appointment" // 预约
	TypeTimeOff     BookingType = "time_off"    // 请假
	TypeStrategy    BookingType = "strategy"    // 战略时段
)

// Valid 判断是否为合法类型值
func (t BookingType) Valid() bool {
	switch t {
	case TypeShift, TypeAppointment, TypeTimeOff, TypeStrategy:
		return true
	}
	return false
}

// Booking 预约/排班记录表 — 对应 bookings
//
// start_time/end_time 为当日时刻（HH:MM），同日内有效且 start < end；
// 跨日排班需拆分为两条记录。冲突判定采用半开区间（首尾相接不算冲突），
// 最终一致性由数据库排它约束 bookings_no_overlap 保证。
type Booking struct {
	BookingID      string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"booking_id"`
	OrganizationID string        `gorm:"type:uuid;not null;index:idx_bookings_org_date" json:"organization_id"`
	Title          string        `gorm:"type:varchar(200);not null"                     json:"title"`
	Type           BookingType   `gorm:"type:varchar(20);not null"                      json:"type"`
	Date           time.Time     `gorm:"type:date;not null;index:idx_bookings_org_date" json:"date"`
	StartTime      string        `gorm:"type:time;not null"                             json:"start_time"`
	EndTime        string        `gorm:"type:time;not null"                             json:"end_time"`
	Status         BookingStatus `gorm:"type:varchar(20);not null;default:'open'"       json:"status"`
	ResourceID     *string       `gorm:"type:uuid;index"                                json:"resource_id,omitempty"`
	Notes          string        `gorm:"type:varchar(1000)"                             json:"notes,omitempty"`
	VersionedModel

	// 关联
	Resource *Employee `gorm:"foreignKey:ResourceID;references:EmployeeID" json:"resource,omitempty"`
}

// TableName 指定表名
func (Booking) TableName() string { return "bookings" }

// AfterFind 读取钩子：TIME 列的文本输出为 HH:MM:SS，统一裁剪回 HH:MM，
// 保证从库加载的记录与请求入参可直接按字典序比较
func (b *Booking) AfterFind(*gorm.DB) error {
	b.StartTime = NormalizeClock(b.StartTime)
	b.EndTime = NormalizeClock(b.EndTime)
	return nil
}

// DateKey 返回 yyyy-mm-dd 形式的日期键（快照索引与同日比较统一用它）
func (b *Booking) DateKey() string { return b.Date.Format(DateLayout) }

// AssignedTo 是否绑定到指定资源
func (b *Booking) AssignedTo(resourceID string) bool {
	return b.ResourceID != nil && *b.ResourceID == resourceID
}
