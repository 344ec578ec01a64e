package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"paiban/internal/dto"
	"paiban/internal/model"
	"paiban/internal/repository"
)

// ── 排班视图业务错误 ──

var ErrInvalidDateRange = errors.New("日期区间非法：起始日期须不晚于结束日期")

// ScheduleViewService 排班视图接口：把预约记录组装成前端日历所需的泳道结构
type ScheduleViewService interface {
	// 单日视图（员工泳道 + 未指派泳道）
	GetDaySchedule(ctx context.Context, orgID string, date time.Time) (*dto.DayScheduleResponse, error)
	// 日期区间视图
	GetRangeSchedule(ctx context.Context, orgID string, from, to time.Time) (*dto.RangeScheduleResponse, error)
}

type scheduleViewService struct {
	repo   *repository.Repository
	sync   *SyncService
	logger *zap.Logger
}

// NewScheduleViewService 创建 ScheduleViewService 实例
// 单日视图走 SyncService 的对账快照，区间视图直接查库
func NewScheduleViewService(repo *repository.Repository, syncSvc *SyncService, logger *zap.Logger) ScheduleViewService {
	return &scheduleViewService{repo: repo, sync: syncSvc, logger: logger}
}

func (s *scheduleViewService) GetDaySchedule(ctx context.Context, orgID string, date time.Time) (*dto.DayScheduleResponse, error) {
	employees, err := s.repo.Employee.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logger.Error("查询组织花名册失败", zap.Error(err))
		return nil, err
	}

	bookings, err := s.sync.DayBookings(ctx, orgID, date)
	if err != nil {
		s.logger.Error("读取当日排班快照失败", zap.Error(err))
		return nil, err
	}

	return buildDaySchedule(date, employees, bookings), nil
}

func (s *scheduleViewService) GetRangeSchedule(ctx context.Context, orgID string, from, to time.Time) (*dto.RangeScheduleResponse, error) {
	if from.After(to) {
		return nil, ErrInvalidDateRange
	}

	employees, err := s.repo.Employee.ListByOrganization(ctx, orgID)
	if err != nil {
		s.logger.Error("查询组织花名册失败", zap.Error(err))
		return nil, err
	}

	bookings, err := s.repo.Booking.ListByOrgAndDateRange(ctx, orgID, from, to)
	if err != nil {
		s.logger.Error("查询区间排班失败", zap.Error(err))
		return nil, err
	}

	// 按日期键分桶后逐日组装
	byDay := make(map[string][]model.Booking)
	for i := range bookings {
		key := bookings[i].DateKey()
		byDay[key] = append(byDay[key], bookings[i])
	}

	resp := &dto.RangeScheduleResponse{
		From: from.Format(model.DateLayout),
		To:   to.Format(model.DateLayout),
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		resp.Days = append(resp.Days, *buildDaySchedule(day, employees, byDay[day.Format(model.DateLayout)]))
	}
	return resp, nil
}

// buildDaySchedule 组装单日泳道：每位员工一条泳道，未指派记录归入 open 泳道
// 已拒绝记录不进入视图
func buildDaySchedule(date time.Time, employees []model.Employee, bookings []model.Booking) *dto.DayScheduleResponse {
	laneIndex := make(map[string]int, len(employees))
	lanes := make([]dto.ResourceLane, 0, len(employees))
	for i := range employees {
		laneIndex[employees[i].EmployeeID] = len(lanes)
		lanes = append(lanes, dto.ResourceLane{
			Resource: *toEmployeeResponse(&employees[i]),
			Bookings: []dto.BookingResponse{},
		})
	}

	open := []dto.BookingResponse{}
	for i := range bookings {
		b := &bookings[i]
		if b.Status == model.StatusDeclined {
			continue
		}
		if b.ResourceID == nil {
			open = append(open, *toBookingResponse(b))
			continue
		}
		if idx, ok := laneIndex[*b.ResourceID]; ok {
			lanes[idx].Bookings = append(lanes[idx].Bookings, *toBookingResponse(b))
		}
	}

	return &dto.DayScheduleResponse{
		Date:  date.Format(model.DateLayout),
		Lanes: lanes,
		Open:  open,
	}
}
