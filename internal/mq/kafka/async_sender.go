package kafka

import (
	"context"
	"sync"
	"time"

	"go-crmhub/internal/logging"
	"go-crmhub/internal/metrics"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// AsyncMessage 入队的待发送消息
type AsyncMessage struct {
	Ctx       context.Context
	Key       []byte
	Value     []byte
	Headers   map[string]string
	EnqueueAt time.Time
}

// AccessAsyncSender 有界异步发送 + 批量聚合：worker 从 channel 取消息，
// 达到 maxBatch 或等待超过 maxWait 即 flush。队列满直接丢
// (metrics http_access_kafka_enqueue_total result="dropped")。
// 批量写失败降级为逐条重发。
type AccessAsyncSender struct {
	producer *Producer
	logger   *logging.Logger
	queue    chan AsyncMessage
	workers  int
	wg       sync.WaitGroup
	stopCh   chan struct{}

	maxBatch int
	maxWait  time.Duration
}

func NewAccessAsyncSender(p *Producer, l *logging.Logger, queueSize, workers, maxBatch int, maxWait time.Duration) *AccessAsyncSender {
	if queueSize <= 0 {
		queueSize = 10000
	}
	if workers <= 0 {
		workers = 1
	}
	if maxBatch <= 0 {
		maxBatch = 50
	}
	if maxWait <= 0 {
		maxWait = 20 * time.Millisecond
	}
	return &AccessAsyncSender{
		producer: p,
		logger:   l,
		queue:    make(chan AsyncMessage, queueSize),
		workers:  workers,
		stopCh:   make(chan struct{}),
		maxBatch: maxBatch,
		maxWait:  maxWait,
	}
}

func (s *AccessAsyncSender) Start() {
	for i := 0; i < s.workers; i++ {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			batch := make([]AsyncMessage, 0, s.maxBatch)
			var timer *time.Timer
			var timerCh <-chan time.Time
			flush := func() {
				if len(batch) == 0 {
					return
				}
				flushNow := time.Now()
				var totalDelay, maxDelay time.Duration
				for _, bm := range batch {
					if !bm.EnqueueAt.IsZero() {
						d := flushNow.Sub(bm.EnqueueAt)
						totalDelay += d
						if d > maxDelay {
							maxDelay = d
						}
					}
				}
				avgDelay := float64(totalDelay.Microseconds()) / 1e6 / float64(len(batch))
				metrics.HTTPAccessKafkaQueueDelayAvg.Observe(avgDelay)
				metrics.HTTPAccessKafkaQueueDelayMax.Observe(float64(maxDelay.Microseconds()) / 1e6)

				msgs := make([]kafkaGo.Message, 0, len(batch))
				spans := make([]trace.Span, 0, len(batch))
				for _, m := range batch {
					ctxSpan, span := s.producer.startSpan(m.Ctx)
					var hs []kafkaGo.Header
					if len(m.Headers) > 0 {
						hs = make([]kafkaGo.Header, 0, len(m.Headers))
						for k, v := range m.Headers {
							hs = append(hs, kafkaGo.Header{Key: k, Value: []byte(v)})
						}
					}
					hs = s.producer.injectHeaders(ctxSpan, hs)
					msgs = append(msgs, kafkaGo.Message{Key: m.Key, Value: m.Value, Time: time.Now(), Headers: hs})
					spans = append(spans, span)
				}
				writeCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
				err := s.producer.Writer.WriteMessages(writeCtx, msgs...)
				cancel()
				if err != nil {
					for _, sp := range spans {
						sp.SetStatus(codes.Error, err.Error())
						sp.RecordError(err)
						sp.End()
					}
					if s.logger != nil {
						s.logger.Warn("access_log_batch_write_failed", zap.Error(err), zap.Int("batch", len(batch)))
					}
					// 逐条回退，不再建新 span
					for _, msg := range batch {
						if len(msg.Headers) > 0 {
							_ = s.producer.SendWithHeaders(msg.Ctx, msg.Key, msg.Value, msg.Headers)
						} else {
							_ = s.producer.Send(msg.Ctx, msg.Key, msg.Value)
						}
					}
				} else {
					for _, sp := range spans {
						sp.End()
					}
				}
				batch = batch[:0]
				if timer != nil {
					if !timer.Stop() {
						select {
						case <-timer.C:
						default:
						}
					}
					timerCh = nil
				}
			}
			for {
				select {
				case <-s.stopCh:
					flush()
					return
				case msg := <-s.queue:
					batch = append(batch, msg)
					if len(batch) == 1 {
						if timer == nil {
							timer = time.NewTimer(s.maxWait)
						} else {
							if !timer.Stop() {
								select {
								case <-timer.C:
								default:
								}
							}
							timer.Reset(s.maxWait)
						}
						timerCh = timer.C
					}
					if len(batch) >= s.maxBatch {
						flush()
					}
				case <-timerCh:
					flush()
				}
			}
		}()
	}
}

// Enqueue 非阻塞放入，满则丢弃
func (s *AccessAsyncSender) Enqueue(m AsyncMessage) {
	select {
	case s.queue <- m:
		metrics.HTTPAccessKafkaEnqueue.WithLabelValues("ok").Inc()
	default:
		metrics.HTTPAccessKafkaEnqueue.WithLabelValues("dropped").Inc()
	}
}

// Close 停止 worker 并等待收尾
func (s *AccessAsyncSender) Close(ctx context.Context) error {
	close(s.stopCh)
	done := make(chan struct{})
	go func() { s.wg.Wait(); close(done) }()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
