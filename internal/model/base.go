package model

import (
	"time"

	"gorm.io/gorm"
)

// BaseModel 通用审计字段（所有业务模型嵌入）
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:uuid"                          json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:uuid"                          json:"updated_by,omitempty"`
}

// SoftDeleteModel 支持软删除的审计字段
type SoftDeleteModel struct {
	BaseModel
	DeletedAt gorm.DeletedAt `gorm:"index"    json:"deleted_at,omitempty"`
	DeletedBy *string        `gorm:"type:uuid" json:"deleted_by,omitempty"`
}

// VersionedModel 支持乐观锁的软删除模型
type VersionedModel struct {
	SoftDeleteModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// DateLayout 日历日期的统一格式（date 列按日比较，不含时区语义）
const DateLayout = "2006-01-02"

// TimeLayout 当日时刻的统一格式（HH:MM，定宽字符串可直接按字典序比较）
const TimeLayout = "15:04"

// NormalizeClock 将时刻字符串归一化为 TimeLayout。
// Postgres TIME 列的文本输出带秒段（HH:MM:SS），比较与展示前须裁剪；
// 无法识别的输入原样返回，由后续校验拒绝
func NormalizeClock(s string) string {
	if t, err := time.Parse("15:04:05", s); err == nil {
		return t.Format(TimeLayout)
	}
	return s
}
