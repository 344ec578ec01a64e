package service

import (
	"context"
	"encoding/json"

	"go.uber.org/zap"

	"paiban/internal/model"
	"paiban/pkg/redis"
)

// ── 变更流端口 ──

// 变更流操作类型
const (
	OpInsert = "insert"
	OpUpdate = "update"
	OpDelete = "delete"
)

// ChangeEvent 组织范围变更流上的一条事件
type ChangeEvent struct {
	Op     string        `json:"op"` // insert | update | delete
	Record model.Booking `json:"record"`
}

// ChangePublisher 写入成功后发布变更事件（本地写同样上流，触发各副本对账）
type ChangePublisher interface {
	PublishChange(ctx context.Context, event ChangeEvent) error
}

// ChangeFeed 订阅变更流
type ChangeFeed interface {
	Events(ctx context.Context) (<-chan ChangeEvent, error)
}

// ── Redis Pub/Sub 实现 ──

// redisChangeBus 基于 Redis Pub/Sub 的变更总线（发布与订阅两端）
type redisChangeBus struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// NewRedisChangeBus 创建变更总线；返回值同时实现 ChangePublisher 与 ChangeFeed
func NewRedisChangeBus(rdb *redis.Client, logger *zap.Logger) *redisChangeBus {
	return &redisChangeBus{rdb: rdb, logger: logger}
}

func (b *redisChangeBus) PublishChange(ctx context.Context, event ChangeEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return b.rdb.PublishChange(ctx, event.Record.OrganizationID, payload)
}

func (b *redisChangeBus) Events(ctx context.Context) (<-chan ChangeEvent, error) {
	raw := b.rdb.SubscribeChanges(ctx)
	out := make(chan ChangeEvent, 64)

	go func() {
		defer close(out)
		for msg := range raw {
			var event ChangeEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				// 坏消息跳过即可：下一次对账会修复任何遗漏
				b.logger.Warn("变更流消息解析失败", zap.String("channel", msg.Channel), zap.Error(err))
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
