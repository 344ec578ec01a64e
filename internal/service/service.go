package service

import (
	"go.uber.org/zap"

	"paiban/config"
	"paiban/internal/repository"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Booking      BookingService
	Employee     EmployeeService
	ScheduleView ScheduleViewService
	Export       ExportService
	Sync         *SyncService
}

// NewService 创建 Service 聚合
// publisher / feed / notifier / broadcaster 允许为降级实现（对应外设不可用时）
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	publisher ChangePublisher,
	feed ChangeFeed,
	notifier Notifier,
	broadcaster Broadcaster,
	logger *zap.Logger,
) *Service {
	syncSvc := NewSyncService(repo, feed, broadcaster, logger)
	return &Service{
		Booking:      NewBookingService(repo, publisher, notifier, syncSvc, &cfg.Schedule, logger),
		Employee:     NewEmployeeService(repo, logger),
		ScheduleView: NewScheduleViewService(repo, syncSvc, logger),
		Export:       NewExportService(repo, logger),
		Sync:         syncSvc,
	}
}
