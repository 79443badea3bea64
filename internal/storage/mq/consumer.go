package mq

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/lunamart/eshop/internal/config"
)

type HandlerFunc func(ctx context.Context, topic string, headers map[string]string, payload []byte) error

type CleanupFunc func()

type Consumer interface {
	RegisterHandler(topic string, handler HandlerFunc) error
	Run(ctx context.Context) (CleanupFunc, error)
}

var _ Consumer = (*KafkaConsumer)(nil)

type KafkaConsumer struct {
	cl       *kgo.Client
	handlers map[string]HandlerFunc
	log      *slog.Logger
}

func NewKafkaConsumer(ctx context.Context, cfg config.Kafka, logger *slog.Logger) (*KafkaConsumer, error) {
	cl, err := kgo.NewClient(
		kgo.SeedBrokers(cfg.Addresses...),
		kgo.ConsumerGroup(cfg.Group),
		kgo.AllowAutoTopicCreation(),
		kgo.DisableAutoCommit(),
		kgo.WithContext(ctx),
		kgo.WithHooks(kTracer),
	)
	if err != nil {
		return nil, fmt.Errorf("create kafka client: %w", err)
	}

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()
	if err := cl.Ping(pingCtx); err != nil {
		cl.Close()
		return nil, fmt.Errorf("ping kafka: %w", err)
	}

	return &KafkaConsumer{
		cl:       cl,
		handlers: make(map[string]HandlerFunc),
		log:      logger,
	}, nil
}

func (c *KafkaConsumer) RegisterHandler(topic string, handler HandlerFunc) error {
	if _, exists := c.handlers[topic]; exists {
		return fmt.Errorf("handler for topic %s already registered", topic)
	}

	c.cl.AddConsumeTopics(topic)
	c.handlers[topic] = handler
	return nil
}

// Run polls fetches and dispatches records to the registered handlers.
// Only offsets of successfully handled records are committed. When a handler
// fails, that partition stops at the failed record and its consume offset is
// rewound to it, so the record is fetched and handled again. Handlers must
// therefore be idempotent.
func (c *KafkaConsumer) Run(ctx context.Context) (CleanupFunc, error) {
	ctx, cancel := context.WithCancel(ctx)
	doneChan := make(chan struct{})

	go func() {
		defer close(doneChan)
		for {
			select {
			case <-ctx.Done():
				return
			default:
				fetches := c.cl.PollFetches(ctx)
				if errs := fetches.Errors(); len(errs) > 0 {
					if errors.Is(errs[0].Err, context.Canceled) {
						// context cancelled, likely due to shutdown
						continue
					}

					c.log.ErrorContext(ctx, "error fetching messages",
						slog.Any("error", errs),
					)
					continue
				}

				var handled, failed []*kgo.Record
				fetches.EachPartition(func(p kgo.FetchTopicPartition) {
					h, f := dispatchRecords(ctx, p.Records, c.handleRecord)
					handled = append(handled, h...)
					if f != nil {
						failed = append(failed, f)
					}
				})

				if len(handled) > 0 {
					if err := c.cl.CommitRecords(ctx, handled...); err != nil {
						c.log.ErrorContext(ctx, "error committing offsets",
							slog.Any("error", err),
						)
					}
				}

				if len(failed) > 0 {
					// SetOffsets drops buffered fetches for the rewound
					// partitions, so the failed records come back on a later
					// poll instead of being skipped.
					c.cl.SetOffsets(rewindOffsets(failed))

					select {
					case <-ctx.Done():
						return
					case <-time.After(time.Second):
					}
				}
			}
		}
	}()

	cleanup := func() {
		cancel()
		c.cl.Close()
		<-doneChan
	}

	return cleanup, nil
}

// dispatchRecords handles one partition's records in order. It returns the
// records that were handled successfully and the first record that failed;
// records after a failure are left untouched so the partition is redelivered
// from the failed offset in order.
func dispatchRecords(
	ctx context.Context,
	recs []*kgo.Record,
	handle func(ctx context.Context, rec *kgo.Record) error,
) (handled []*kgo.Record, failed *kgo.Record) {
	for _, rec := range recs {
		if err := handle(ctx, rec); err != nil {
			return handled, rec
		}
		handled = append(handled, rec)
	}

	return handled, nil
}

// rewindOffsets builds the consume-offset map that points each failed
// record's partition back at that record.
func rewindOffsets(failed []*kgo.Record) map[string]map[int32]kgo.EpochOffset {
	offsets := map[string]map[int32]kgo.EpochOffset{}
	for _, rec := range failed {
		parts, ok := offsets[rec.Topic]
		if !ok {
			parts = map[int32]kgo.EpochOffset{}
			offsets[rec.Topic] = parts
		}

		if cur, ok := parts[rec.Partition]; !ok || rec.Offset < cur.Offset {
			parts[rec.Partition] = kgo.EpochOffset{
				Epoch:  rec.LeaderEpoch,
				Offset: rec.Offset,
			}
		}
	}

	return offsets
}

func (c *KafkaConsumer) handleRecord(ctx context.Context, rec *kgo.Record) (err error) {
	defer func() {
		if rvr := recover(); rvr != nil {
			c.log.ErrorContext(ctx, "panic in message handler",
				slog.String("topic", rec.Topic),
				slog.Any("recover", rvr),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", rvr)
		}
	}()

	fn, exists := c.handlers[rec.Topic]
	if !exists {
		c.log.WarnContext(ctx, "no handler registered for topic",
			slog.String("topic", rec.Topic),
		)
		return nil
	}

	headers := make(map[string]string, len(rec.Headers))
	for _, h := range rec.Headers {
		headers[h.Key] = string(h.Value)
	}

	if err := fn(ctx, rec.Topic, headers, rec.Value); err != nil {
		c.log.ErrorContext(ctx, "error handling message",
			slog.String("topic", rec.Topic),
			slog.String("key", string(rec.Key)),
			slog.Any("error", err),
		)
		return err
	}

	return nil
}

func (c *KafkaConsumer) Close() {
	c.cl.Close()
}
