package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"paiban/config"
)

// Client Redis 客户端封装
// 承担三类职责：排班变更流（Pub/Sub）、Token 黑名单、公开入口限流计数
type Client struct {
	rdb    *goredis.Client
	logger *zap.Logger
}

// NewClient 创建 Redis 连接并执行 Ping 健康检查
func NewClient(cfg *config.RedisConfig, logger *zap.Logger) (*Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("Redis 连接失败: %w", err)
	}

	logger.Info("Redis 连接成功", zap.String("addr", cfg.Addr))

	return &Client{rdb: rdb, logger: logger}, nil
}

// ── 排班变更流 ──

const changeChannelPrefix = "schedule:changes:"

// ChangeChannel 组织维度的变更流频道名
func ChangeChannel(orgID string) string { return changeChannelPrefix + orgID }

// PublishChange 向组织频道发布一条变更消息（JSON 负载）
func (c *Client) PublishChange(ctx context.Context, orgID string, payload []byte) error {
	return c.rdb.Publish(ctx, ChangeChannel(orgID), payload).Err()
}

// FeedMessage 订阅到的原始变更消息
type FeedMessage struct {
	Channel string
	Payload []byte
}

// SubscribeChanges 订阅全部组织的变更流（模式订阅）
// 返回的通道在 ctx 取消后关闭；调用方负责反序列化负载
func (c *Client) SubscribeChanges(ctx context.Context) <-chan FeedMessage {
	sub := c.rdb.PSubscribe(ctx, changeChannelPrefix+"*")
	out := make(chan FeedMessage, 64)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- FeedMessage{Channel: msg.Channel, Payload: []byte(msg.Payload)}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// ── Token 黑名单 ──

const blacklistPrefix = "token:blacklist:"

// BlacklistToken 将 JWT ID 加入黑名单，TTL 与 Token 剩余有效期一致
func (c *Client) BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil // Token 已过期，无需加入黑名单
	}
	return c.rdb.Set(ctx, blacklistPrefix+jti, "1", ttl).Err()
}

// IsBlacklisted 检查 JWT ID 是否在黑名单中
func (c *Client) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	n, err := c.rdb.Exists(ctx, blacklistPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// ── 限流计数 ──

// CheckRateLimit 固定窗口限流：窗口内计数超过 limit 返回 false
func (c *Client) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	n, err := c.rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, err
	}
	if n == 1 {
		if err := c.rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, err
		}
	}
	return n <= int64(limit), nil
}

// Close 关闭 Redis 连接
func (c *Client) Close() error {
	return c.rdb.Close()
}
