package dispatch

import (
	"context"
	"encoding/json"
	"log"
	"time"
	"unicode/utf8"

	"go-crmhub/internal/domain/model"
	"go-crmhub/internal/mq/kafka"
	"go-crmhub/internal/repository/postgres"

	kafkaGo "github.com/segmentio/kafka-go"
	"gorm.io/gorm"
)

// Consumer 消费 dispatch topic，把模板群发的投递事件落成 crm_message_log。
// 访问日志 topic 复用同一消费组时落 crm_user_action。

type Config struct {
	Brokers       []string
	DispatchTopic string
	AccessTopic   string
	GroupID       string
}

type Consumer struct {
	cfg   Config
	inner *kafka.Consumer
	DB    *gorm.DB
}

// DispatchEvent 与 TemplateService.Send 产出的消息体对应
type DispatchEvent struct {
	Type       string `json:"type"`
	TenantID   int64  `json:"tenant_id"`
	TemplateID int64  `json:"template_id"`
	ContactID  int64  `json:"contact_id"`
	Channel    string `json:"channel"`
	Recipient  string `json:"recipient"`
	Body       string `json:"body"`
	TS         int64  `json:"ts"`
}

// AccessEvent 与 observability.AccessLogKafka 的消息体对应
type AccessEvent struct {
	Type      string `json:"type"`
	TenantID  int64  `json:"tenant_id"`
	UserID    int64  `json:"user_id"`
	Path      string `json:"path"`
	Method    string `json:"method"`
	Status    int    `json:"status"`
	LatencyMs int64  `json:"latency_ms"`
	IP        string `json:"ip"`
	TS        int64  `json:"ts"`
	Body      string `json:"body"`
}

func NewConsumer(cfg Config, db *gorm.DB) *Consumer {
	topics := []string{cfg.DispatchTopic}
	if cfg.AccessTopic != "" {
		topics = append(topics, cfg.AccessTopic)
	}
	inner := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: cfg.Brokers,
		GroupID: cfg.GroupID,
		Topics:  topics,
	})
	return &Consumer{cfg: cfg, inner: inner, DB: db}
}

func (c *Consumer) Run(ctx context.Context) error {
	return c.inner.Start(ctx, func(msgCtx context.Context, m kafkaGo.Message) error {
		switch m.Topic {
		case c.cfg.DispatchTopic:
			return c.handleDispatch(msgCtx, m.Value)
		case c.cfg.AccessTopic:
			return c.handleAccess(msgCtx, m.Value)
		}
		return nil
	})
}

func (c *Consumer) handleDispatch(ctx context.Context, value []byte) error {
	var e DispatchEvent
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("dispatch consumer unmarshal err: %v", err)
		return nil // poison message, skip
	}
	ts := e.TS
	if ts == 0 {
		ts = time.Now().Unix()
	}
	rec := model.MessageLog{
		TenantID:   e.TenantID,
		TemplateID: e.TemplateID,
		ContactID:  e.ContactID,
		Channel:    e.Channel,
		Recipient:  e.Recipient,
		Body:       truncate(e.Body, 4000),
		Status:     1,
		AddTime:    ts,
	}
	return c.DB.WithContext(ctx).Create(&rec).Error
}

func (c *Consumer) handleAccess(ctx context.Context, value []byte) error {
	var e AccessEvent
	if err := json.Unmarshal(value, &e); err != nil {
		log.Printf("access consumer unmarshal err: %v", err)
		return nil
	}
	ts := e.TS
	if ts == 0 {
		ts = time.Now().Unix()
	}
	rec := model.UserAction{
		TenantID:  e.TenantID,
		UID:       e.UserID,
		URL:       e.Path,
		Method:    e.Method,
		Status:    e.Status,
		LatencyMs: e.LatencyMs,
		IP:        e.IP,
		Data:      truncate(e.Body, 2000),
		AddTime:   ts,
	}
	return c.DB.WithContext(ctx).Create(&rec).Error
}

func (c *Consumer) Close() error { return c.inner.Close() }

// AutoMigrate 供独立部署的 worker 初始化表结构
func AutoMigrate(db *gorm.DB) error {
	return postgres.AutoMigrateModels(db, &model.MessageLog{}, &model.UserAction{})
}

// truncate 按字节上限截断，回退到 rune 边界避免写入半个多字节字符
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
