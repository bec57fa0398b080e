package consumer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/XavierBriggs/fortuna/services/ticket-scanner/internal/config"
	"github.com/XavierBriggs/fortuna/services/ticket-scanner/pkg/models"
)

const (
	// Batch size for reading messages
	batchSize = 100

	// Block duration when waiting for new messages
	blockDuration = 1 * time.Second
)

var (
	// ErrMissingField is returned for a frame without session_id or data
	ErrMissingField = errors.New("frame is missing session_id or data")
)

// Scanner routes a raw frame to the named session
type Scanner interface {
	Scan(sessionID, raw string) (models.ScanResult, error)
}

// StreamConsumer feeds raw camera frames from a Redis stream into scan sessions
type StreamConsumer struct {
	redis        *redis.Client
	scanner      Scanner
	streamConfig config.StreamConfig
}

// NewStreamConsumer creates a new stream consumer
func NewStreamConsumer(redisClient *redis.Client, scanner Scanner, streamConfig config.StreamConfig) *StreamConsumer {
	return &StreamConsumer{
		redis:        redisClient,
		scanner:      scanner,
		streamConfig: streamConfig,
	}
}

func (sc *StreamConsumer) logger() *log.Entry {
	return log.WithFields(log.Fields{"component": "consumer", "stream": sc.streamConfig.RawFrames})
}

// Start consumes frames until ctx is done
func (sc *StreamConsumer) Start(ctx context.Context) error {
	if err := sc.createConsumerGroup(ctx); err != nil {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	sc.logger().WithField("group", sc.streamConfig.ConsumerGroup).Info("stream consumer started")

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
			streams, err := sc.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
				Group:    sc.streamConfig.ConsumerGroup,
				Consumer: sc.streamConfig.ConsumerID,
				Streams:  []string{sc.streamConfig.RawFrames, ">"},
				Count:    batchSize,
				Block:    blockDuration,
			}).Result()

			if err != nil {
				if err == redis.Nil || ctx.Err() != nil {
					continue
				}
				sc.logger().WithError(err).Warn("stream read error")
				time.Sleep(1 * time.Second)
				continue
			}

			for _, stream := range streams {
				for _, message := range stream.Messages {
					sc.processMessage(ctx, message)
				}
			}
		}
	}
}

// createConsumerGroup creates the consumer group if it doesn't exist
func (sc *StreamConsumer) createConsumerGroup(ctx context.Context) error {
	err := sc.redis.XGroupCreateMkStream(ctx, sc.streamConfig.RawFrames, sc.streamConfig.ConsumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}
	return nil
}

// processMessage routes one frame and always acks it; frames are not retried
func (sc *StreamConsumer) processMessage(ctx context.Context, msg redis.XMessage) {
	result, err := Route(sc.scanner, msg.Values)
	entry := sc.logger().WithField("message_id", msg.ID)

	switch {
	case err != nil:
		entry.WithError(err).Warn("dropping frame")
	default:
		entry.WithFields(log.Fields{
			"session_id": result.SessionID,
			"accepted":   result.Accepted,
			"reason":     result.Reason,
		}).Debug("frame routed")
	}

	if err := sc.redis.XAck(ctx, sc.streamConfig.RawFrames, sc.streamConfig.ConsumerGroup, msg.ID).Err(); err != nil {
		entry.WithError(err).Warn("failed to ack message")
	}
}

// Route hands the frame carried by stream values to its session
func Route(scanner Scanner, values map[string]interface{}) (models.ScanResult, error) {
	frame, err := frameFromValues(values)
	if err != nil {
		return models.ScanResult{}, err
	}

	result, err := scanner.Scan(frame.SessionID, frame.Data)
	if err != nil {
		return models.ScanResult{}, fmt.Errorf("session %s: %w", frame.SessionID, err)
	}
	return result, nil
}

func frameFromValues(values map[string]interface{}) (models.ScanFrame, error) {
	sessionID, _ := values["session_id"].(string)
	data, ok := values["data"].(string)
	if sessionID == "" || !ok {
		return models.ScanFrame{}, ErrMissingField
	}
	return models.ScanFrame{SessionID: sessionID, Data: data}, nil
}
