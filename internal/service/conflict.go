package service

import (
	"time"

	"paiban/internal/model"
)

// HasConflict 冲突检测（纯函数）
//
// 在给定快照内判断候选区间 [startTime, endTime) 是否与 resourceID 在
// date 当日的占用记录重叠。快照由调用方提供，本函数不做任何 I/O，
// 可对同一快照反复调用。
//
//   - resourceID 为空（未指派候选）恒不冲突
//   - excludeID 用于排除记录自身（编辑 / 改派场景）
//   - open / declined 状态不占用日历，跳过
//   - 半开区间判定：首尾相接（09:00-10:00 与 10:00-11:00）不算冲突
//
// 注意：这只是面向交互的乐观预检；权威保证在存储层
// （bookings_no_overlap 排它约束 + 事务内复查）。
func HasConflict(snapshot []model.Booking, resourceID string, date time.Time, startTime, endTime string, excludeID string) bool {
	if resourceID == "" {
		return false
	}

	dateKey := date.Format(model.DateLayout)
	candStart := model.NormalizeClock(startTime)
	candEnd := model.NormalizeClock(endTime)
	for i := range snapshot {
		b := &snapshot[i]
		if b.BookingID == excludeID {
			continue
		}
		if !b.Status.Occupies() {
			continue
		}
		if !b.AssignedTo(resourceID) {
			continue
		}
		if b.DateKey() != dateKey {
			continue
		}
		if overlaps(candStart, candEnd, model.NormalizeClock(b.StartTime), model.NormalizeClock(b.EndTime)) {
			return true
		}
	}
	return false
}

// overlaps 半开区间重叠：aStart < bEnd && aEnd > bStart
// 入参须已归一化为 HH:MM，定宽字符串直接按字典序比较
func overlaps(aStart, aEnd, bStart, bEnd string) bool {
	return aStart < bEnd && aEnd > bStart
}

// validInterval 校验当日时刻区间：格式合法且 start < end
// 带秒段的存量值（TIME 列文本输出）先归一化再校验
func validInterval(startTime, endTime string) bool {
	start := model.NormalizeClock(startTime)
	end := model.NormalizeClock(endTime)
	if _, err := time.Parse(model.TimeLayout, start); err != nil {
		return false
	}
	if _, err := time.Parse(model.TimeLayout, end); err != nil {
		return false
	}
	return start < end
}
