package service

import (
	"context"

	"go.uber.org/zap"

	"paiban/internal/model"
	"paiban/pkg/mq"
)

// ── 通知分发 ──

// Notifier 审批结果通知端口
// 投递失败只记日志，绝不回滚已提交的状态变更
type Notifier interface {
	BookingApproved(ctx context.Context, booking *model.Booking)
	BookingDeclined(ctx context.Context, booking *model.Booking)
}

// bookingNotice 通知消息负载
type bookingNotice struct {
	BookingID      string `json:"booking_id"`
	OrganizationID string `json:"organization_id"`
	Title          string `json:"title"`
	Type           string `json:"type"`
	Date           string `json:"date"`
	StartTime      string `json:"start_time"`
	EndTime        string `json:"end_time"`
	ResourceID     string `json:"resource_id,omitempty"`
	Result         string `json:"result"` // approved | declined
}

// mqNotifier 基于 RabbitMQ topic 交换器的通知分发器
type mqNotifier struct {
	pub    *mq.Publisher
	logger *zap.Logger
}

// NewMQNotifier 创建消息队列通知分发器
func NewMQNotifier(pub *mq.Publisher, logger *zap.Logger) Notifier {
	return &mqNotifier{pub: pub, logger: logger}
}

func (n *mqNotifier) BookingApproved(ctx context.Context, booking *model.Booking) {
	n.publish(ctx, "booking.approved", booking, "approved")
}

func (n *mqNotifier) BookingDeclined(ctx context.Context, booking *model.Booking) {
	n.publish(ctx, "booking.declined", booking, "declined")
}

func (n *mqNotifier) publish(ctx context.Context, key string, booking *model.Booking, result string) {
	notice := bookingNotice{
		BookingID:      booking.BookingID,
		OrganizationID: booking.OrganizationID,
		Title:          booking.Title,
		Type:           string(booking.Type),
		Date:           booking.Date.Format(model.DateLayout),
		StartTime:      booking.StartTime,
		EndTime:        booking.EndTime,
		Result:         result,
	}
	if booking.ResourceID != nil {
		notice.ResourceID = *booking.ResourceID
	}
	if err := n.pub.PublishJSON(ctx, key, notice); err != nil {
		n.logger.Error("通知投递失败",
			zap.String("routing_key", key),
			zap.String("booking_id", booking.BookingID),
			zap.Error(err))
	}
}

// NopNotifier 空实现：消息队列不可用时降级使用
type NopNotifier struct{}

func (NopNotifier) BookingApproved(ctx context.Context, booking *model.Booking) {}
func (NopNotifier) BookingDeclined(ctx context.Context, booking *model.Booking) {}
