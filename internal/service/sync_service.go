package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"paiban/internal/dto"
	"paiban/internal/model"
	"paiban/internal/repository"
)

// Broadcaster 变更提示推送端口（WebSocket 集线器实现）
type Broadcaster interface {
	BroadcastToOrg(orgID string, notice dto.ChangeNotice)
}

// SyncService 实时同步：消费变更流，对受影响的组织+日期做全量对账，
// 再向前端推送变更提示
//
// 对账策略是整日重拉替换，而非按事件增量打补丁：事件只标记「哪一天脏了」，
// 数据一律以重拉结果为准，天然容忍乱序、重复与丢失的事件。
type SyncService struct {
	repo        *repository.Repository
	feed        ChangeFeed
	broadcaster Broadcaster
	logger      *zap.Logger

	mu        sync.RWMutex
	snapshots map[string][]model.Booking // key: orgID|date
}

// NewSyncService 创建 SyncService 实例；broadcaster 可为 nil（仅维护快照）
func NewSyncService(repo *repository.Repository, feed ChangeFeed, broadcaster Broadcaster, logger *zap.Logger) *SyncService {
	return &SyncService{
		repo:        repo,
		feed:        feed,
		broadcaster: broadcaster,
		logger:      logger,
		snapshots:   make(map[string][]model.Booking),
	}
}

func snapshotKey(orgID string, date time.Time) string {
	return orgID + "|" + date.Format(model.DateLayout)
}

// Run 消费变更流直到 ctx 取消；应在独立 goroutine 中运行
func (s *SyncService) Run(ctx context.Context) error {
	events, err := s.feed.Events(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("实时同步已启动")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-events:
			if !ok {
				s.logger.Info("变更流已关闭，实时同步退出")
				return nil
			}
			s.handleEvent(ctx, event)
		}
	}
}

func (s *SyncService) handleEvent(ctx context.Context, event ChangeEvent) {
	orgID := event.Record.OrganizationID
	date := event.Record.Date

	if err := s.Reconcile(ctx, orgID, date); err != nil {
		// 对账失败时丢弃缓存快照：宁可下次读穿透，也不提供过期数据
		s.logger.Error("对账失败，丢弃当日快照",
			zap.String("organization_id", orgID),
			zap.String("date", date.Format(model.DateLayout)),
			zap.Error(err))
		s.mu.Lock()
		delete(s.snapshots, snapshotKey(orgID, date))
		s.mu.Unlock()
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.BroadcastToOrg(orgID, dto.ChangeNotice{
			Type: "schedule.changed",
			Op:   event.Op,
			Date: date.Format(model.DateLayout),
		})
	}
}

// Reconcile 对指定组织+日期做全量对账：重拉当日全部记录并整体替换快照
func (s *SyncService) Reconcile(ctx context.Context, orgID string, date time.Time) error {
	bookings, err := s.repo.Booking.ListByOrgAndDateRange(ctx, orgID, date, date)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshots[snapshotKey(orgID, date)] = bookings
	s.mu.Unlock()
	return nil
}

// DayBookings 读取组织某日的快照；未缓存时对账一次后返回
func (s *SyncService) DayBookings(ctx context.Context, orgID string, date time.Time) ([]model.Booking, error) {
	key := snapshotKey(orgID, date)

	s.mu.RLock()
	cached, ok := s.snapshots[key]
	s.mu.RUnlock()
	if ok {
		return cached, nil
	}

	if err := s.Reconcile(ctx, orgID, date); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshots[key], nil
}
