package queue

import (
	"fmt"
	"strings"

	"github.com/bookvine/internal/config"
	"github.com/bookvine/internal/constants"

	"github.com/hibiken/asynq"
)

// Client asynq 生产端封装。队列未启用时所有投递降级为 no-op，
// 调用方无需关心部署形态。
type Client struct {
	client *asynq.Client
	queue  string
}

// NewClient 创建队列客户端
func NewClient(cfg *config.QueueConfig) (*Client, error) {
	c := &Client{queue: constants.QueueDefault}
	if cfg == nil || !cfg.Enabled {
		return c, nil
	}
	c.client = asynq.NewClient(redisOpt(cfg))
	return c, nil
}

// Enabled 判断队列是否可用
func (c *Client) Enabled() bool {
	return c != nil && c.client != nil
}

// Close 关闭客户端连接
func (c *Client) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// EnqueueOrderStatusEmail 投递订单状态邮件任务
func (c *Client) EnqueueOrderStatusEmail(payload OrderStatusEmailPayload, opts ...asynq.Option) error {
	task, err := NewOrderStatusEmailTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, opts)
}

// EnqueueOrderCreateFulfillment 投递订单履约创建任务
func (c *Client) EnqueueOrderCreateFulfillment(payload OrderCreateFulfillmentPayload, opts ...asynq.Option) error {
	task, err := NewOrderCreateFulfillmentTask(payload)
	if err != nil {
		return err
	}
	return c.enqueue(task, opts)
}

func (c *Client) enqueue(task *asynq.Task, opts []asynq.Option) error {
	if !c.Enabled() {
		return nil
	}
	_, err := c.client.Enqueue(task, append([]asynq.Option{asynq.Queue(c.queue)}, opts...)...)
	return err
}

// BuildServerConfig 消费端的连接与并发配置
func BuildServerConfig(cfg *config.QueueConfig) (asynq.RedisClientOpt, asynq.Config) {
	serverCfg := asynq.Config{
		Concurrency: 10,
		Queues:      map[string]int{constants.QueueDefault: 1},
	}
	if cfg != nil {
		if cfg.Concurrency > 0 {
			serverCfg.Concurrency = cfg.Concurrency
		}
		if len(cfg.Queues) > 0 {
			serverCfg.Queues = cfg.Queues
		}
	}
	return redisOpt(cfg), serverCfg
}

func redisOpt(cfg *config.QueueConfig) asynq.RedisClientOpt {
	opt := asynq.RedisClientOpt{Addr: "127.0.0.1:6379"}
	if cfg == nil {
		return opt
	}
	host := strings.TrimSpace(cfg.Host)
	if host == "" {
		host = "127.0.0.1"
	}
	port := cfg.Port
	if port <= 0 {
		port = 6379
	}
	opt.Addr = fmt.Sprintf("%s:%d", host, port)
	opt.Password = cfg.Password
	opt.DB = cfg.DB
	return opt
}
