package relay_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunamart/eshop/internal/catalog/relay"
	"github.com/lunamart/eshop/internal/catalog/repository"
	"github.com/lunamart/eshop/internal/config"
	"github.com/lunamart/eshop/internal/storage/db"
	"github.com/lunamart/eshop/internal/storage/mq"
)

type fakeDB struct{}

func (fakeDB) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.CommandTag{}, nil
}

func (fakeDB) Query(context.Context, string, ...any) (pgx.Rows, error) { return nil, nil }

func (fakeDB) QueryRow(context.Context, string, ...any) pgx.Row { return nil }

func (fakeDB) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults { return nil }

func (f fakeDB) WithTx(_ context.Context, txFunc func(db.DB) error) error {
	return txFunc(f)
}

type fakeOutboxRepository struct {
	mu          sync.Mutex
	unprocessed []repository.ListUnprocessedOutboxMsgsResult
	updated     []repository.BulkUpdateOutboxMsgsItem
}

func (r *fakeOutboxRepository) WithDB(db.DB) repository.OutboxMsgRepository { return r }

func (r *fakeOutboxRepository) CreateOutboxMsg(context.Context, repository.CreateOutboxMsgParams) error {
	return nil
}

func (r *fakeOutboxRepository) ListUnprocessedOutboxMsgs(
	context.Context, repository.ListUnprocessedOutboxMsgsParams,
) ([]repository.ListUnprocessedOutboxMsgsResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	msgs := r.unprocessed
	r.unprocessed = nil
	return msgs, nil
}

func (r *fakeOutboxRepository) BulkUpdateOutboxMsgs(_ context.Context, params repository.BulkUpdateOutboxMsgsParams) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.updated = append(r.updated, params.Items...)
	return nil
}

func (r *fakeOutboxRepository) updatedItems() []repository.BulkUpdateOutboxMsgsItem {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]repository.BulkUpdateOutboxMsgsItem{}, r.updated...)
}

type fakeProducer struct {
	mu       sync.Mutex
	produced []mq.ProduceMsg
	failFor  map[string]error
}

func (p *fakeProducer) Produce(_ context.Context, msg mq.ProduceMsg) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err, ok := p.failFor[msg.Topic]; ok {
		return err
	}
	p.produced = append(p.produced, msg)
	return nil
}

func (p *fakeProducer) producedMsgs() []mq.ProduceMsg {
	p.mu.Lock()
	defer p.mu.Unlock()

	return append([]mq.ProduceMsg{}, p.produced...)
}

func outboxMsg(topic string) repository.ListUnprocessedOutboxMsgsResult {
	id, _ := uuid.NewV7()
	return repository.ListUnprocessedOutboxMsgsResult{
		ID:      id,
		Topic:   topic,
		Headers: map[string]string{},
		Payload: []byte(`{"product_id":1,"old_price":"10.00","new_price":"12.00"}`),
	}
}

func newRelayService(outboxRepo *fakeOutboxRepository, producer *fakeProducer) *relay.Service {
	return relay.NewService(
		config.Relay{BatchSize: 10, Interval: 10 * time.Millisecond},
		slog.New(slog.DiscardHandler),
		fakeDB{},
		outboxRepo,
		producer,
	)
}

func TestRelayService(t *testing.T) {
	ctx := context.Background()

	t.Run("Should produce unprocessed messages and mark them processed", func(t *testing.T) {
		outboxRepo := &fakeOutboxRepository{
			unprocessed: []repository.ListUnprocessedOutboxMsgsResult{
				outboxMsg("catalog.item.price_changed"),
				outboxMsg("catalog.item.price_changed"),
			},
		}
		producer := &fakeProducer{}

		cleanup := newRelayService(outboxRepo, producer).Run(ctx)
		defer cleanup()

		require.Eventually(t, func() bool {
			return len(outboxRepo.updatedItems()) == 2
		}, time.Second, 10*time.Millisecond)

		assert.Len(t, producer.producedMsgs(), 2)
		for _, item := range outboxRepo.updatedItems() {
			assert.Nil(t, item.Error)
		}
	})

	t.Run("Should record produce errors without blocking the batch", func(t *testing.T) {
		okMsg := outboxMsg("catalog.item.price_changed")
		failedMsg := outboxMsg("broken.topic")
		outboxRepo := &fakeOutboxRepository{
			unprocessed: []repository.ListUnprocessedOutboxMsgsResult{okMsg, failedMsg},
		}
		producer := &fakeProducer{
			failFor: map[string]error{"broken.topic": errors.New("broker unavailable")},
		}

		cleanup := newRelayService(outboxRepo, producer).Run(ctx)
		defer cleanup()

		require.Eventually(t, func() bool {
			return len(outboxRepo.updatedItems()) == 2
		}, time.Second, 10*time.Millisecond)

		byID := map[uuid.UUID]repository.BulkUpdateOutboxMsgsItem{}
		for _, item := range outboxRepo.updatedItems() {
			byID[item.ID] = item
		}

		assert.Nil(t, byID[okMsg.ID].Error)
		require.NotNil(t, byID[failedMsg.ID].Error)
		assert.Contains(t, *byID[failedMsg.ID].Error, "broker unavailable")
	})

	t.Run("Should do nothing when outbox is empty", func(t *testing.T) {
		outboxRepo := &fakeOutboxRepository{}
		producer := &fakeProducer{}

		cleanup := newRelayService(outboxRepo, producer).Run(ctx)
		time.Sleep(50 * time.Millisecond)
		cleanup()

		assert.Empty(t, producer.producedMsgs())
		assert.Empty(t, outboxRepo.updatedItems())
	})
}
