package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/retry"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

// queueSize bounds the accepted tickets waiting for Redis
const queueSize = 256

// StreamPublisher publishes accepted tickets to a Redis stream. It is a
// session.Sink; Deliver only enqueues and Run does the writes.
type StreamPublisher struct {
	redis  *redis.Client
	stream string
	queue  chan models.ScanResult
	retry  *retry.Policy

	// Metrics
	published int64
	dropped   int64
	failed    int64
	metricsMu sync.Mutex
}

// NewStreamPublisher creates a new stream publisher
func NewStreamPublisher(redisClient *redis.Client, stream string) *StreamPublisher {
	return &StreamPublisher{
		redis:  redisClient,
		stream: stream,
		queue:  make(chan models.ScanResult, queueSize),
		retry:  retry.NewPolicy(3, 200*time.Millisecond, 2*time.Second),
	}
}

func (p *StreamPublisher) logger() *log.Entry {
	return log.WithFields(log.Fields{"component": "publisher", "stream": p.stream})
}

// Deliver queues accepted results; everything else is ignored
func (p *StreamPublisher) Deliver(result models.ScanResult) {
	if !result.Accepted {
		return
	}

	select {
	case p.queue <- result:
	default:
		p.metricsMu.Lock()
		p.dropped++
		p.metricsMu.Unlock()
		p.logger().WithField("session_id", result.SessionID).Warn("publish queue full, dropping ticket")
	}
}

// Confirm is a no-op; haptics are a UI concern
func (p *StreamPublisher) Confirm(string) {}

// Run drains the queue until ctx is done
func (p *StreamPublisher) Run(ctx context.Context) {
	p.logger().Info("stream publisher started")

	for {
		select {
		case <-ctx.Done():
			return
		case result := <-p.queue:
			err := p.retry.Execute(ctx, func(ctx context.Context) error {
				return p.Publish(ctx, result)
			})
			if err != nil {
				p.metricsMu.Lock()
				p.failed++
				p.metricsMu.Unlock()
				p.logger().WithError(err).WithField("session_id", result.SessionID).Error("publish failed")
				continue
			}

			p.metricsMu.Lock()
			p.published++
			p.metricsMu.Unlock()
		}
	}
}

// Publish writes one accepted ticket to the stream
func (p *StreamPublisher) Publish(ctx context.Context, result models.ScanResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("error marshaling scan result: %w", err)
	}

	_, err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		Values: map[string]interface{}{
			"session_id": result.SessionID,
			"data":       string(data),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("error publishing to stream %s: %w", p.stream, err)
	}

	return nil
}

// Pending returns the number of queued tickets
func (p *StreamPublisher) Pending() int {
	return len(p.queue)
}

// GetMetrics returns publisher metrics
func (p *StreamPublisher) GetMetrics() map[string]interface{} {
	p.metricsMu.Lock()
	defer p.metricsMu.Unlock()

	return map[string]interface{}{
		"published": p.published,
		"dropped":   p.dropped,
		"failed":    p.failed,
		"pending":   len(p.queue),
	}
}
