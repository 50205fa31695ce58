package observability

import (
	"encoding/json"
	"time"

	"go-crmhub/internal/logging"
	"go-crmhub/internal/mq/kafka"

	"github.com/gin-gonic/gin"
)

func accessEntry(c *gin.Context, start time.Time) map[string]interface{} {
	path := c.FullPath()
	if path == "" {
		path = c.Request.URL.Path
	}
	entry := map[string]interface{}{
		"type":       "http_access",
		"path":       path,
		"method":     c.Request.Method,
		"status":     c.Writer.Status(),
		"latency_ms": time.Since(start).Milliseconds(),
		"ip":         c.ClientIP(),
		"ts":         time.Now().Unix(),
	}
	if v, ok := c.Get(TraceIDKey); ok {
		entry["trace_id"] = v
	}
	if uid, ok := c.Get("user_id"); ok {
		entry["user_id"] = uid
	}
	if tid, ok := c.Get("tenant_id"); ok {
		entry["tenant_id"] = tid
	}
	return entry
}

// AccessLogKafka 将访问信息发送到 Kafka，由 dispatch 消费者落审计表 (同步发送)。
func AccessLogKafka(l *logging.Logger, p *kafka.Producer) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if p == nil {
			return
		}
		entry := accessEntry(c, start)
		b, _ := json.Marshal(entry)
		if traceID, ok := entry["trace_id"].(string); ok && traceID != "" {
			_ = p.SendWithHeaders(c.Request.Context(), nil, b, map[string]string{"trace_id": traceID})
		} else {
			_ = p.Send(c.Request.Context(), nil, b)
		}
	}
}

// AccessLogKafkaAsync 异步批量发送版本，按配置启用。
func AccessLogKafkaAsync(l *logging.Logger, sender *kafka.AccessAsyncSender) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if sender == nil {
			return
		}
		entry := accessEntry(c, start)
		b, _ := json.Marshal(entry)
		var headers map[string]string
		if traceID, ok := entry["trace_id"].(string); ok && traceID != "" {
			headers = map[string]string{"trace_id": traceID}
		}
		sender.Enqueue(kafka.AsyncMessage{Ctx: c.Request.Context(), Value: b, Headers: headers, EnqueueAt: time.Now()})
	}
}
