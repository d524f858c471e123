package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/config"
)

const (
	BatchSize    = 50
	BatchTimeout = 2 * time.Second
	PollTimeout  = 1 * time.Second // Must be >= 1s to satisfy Redis
)

// EventWorker consumes the proctoring-events persistence queue in batches.
// Events arrive at high frequency during a busy exam, so the fast path is a
// CopyFrom bulk insert with row-by-row recovery and requeue on failure.
type EventWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewEventWorker creates a new EventWorker.
func NewEventWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *EventWorker {
	return &EventWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "event_worker").Logger(),
	}
}

type eventPayload struct {
	ExamID    string `json:"exam_id"`
	UserID    string `json:"user_id"`
	Type      string `json:"type"`
	ElapsedMs int64  `json:"elapsed_ms"`
	Severity  string `json:"severity"`
	Detail    string `json:"detail,omitempty"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *EventWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	buffer := make([]*eventPayload, 0, BatchSize)
	lastFlushTime := time.Now()

	for {
		// Flush on size or age.
		if len(buffer) > 0 {
			if len(buffer) >= BatchSize || time.Since(lastFlushTime) >= BatchTimeout {
				w.flushSafe(ctx, buffer)
				buffer = buffer[:0]
				lastFlushTime = time.Now()
			}
		}

		select {
		case <-ctx.Done():
			w.shutdown(buffer)
			return
		default:
		}

		result, err := w.rdb.BLPop(ctx, PollTimeout, config.QueueKey.PersistEventsQueue).Result()
		if err != nil {
			if err == redis.Nil {
				continue // Queue empty, loop back to check the flush timer.
			}
			if ctx.Err() != nil {
				return
			}
			w.log.Error().Err(err).Msg("Redis connection error, sleeping 3s")
			time.Sleep(3 * time.Second)
			continue
		}

		if len(result) < 2 {
			continue
		}

		var payload eventPayload
		if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
			// Malformed JSON cannot be retried. Log and discard.
			w.log.Error().Err(err).Str("data", result[1]).Msg("Discarding malformed JSON")
			continue
		}

		buffer = append(buffer, &payload)
	}
}

// flushSafe attempts bulk insert, then fallback insert, then requeue.
func (w *EventWorker) flushSafe(ctx context.Context, batch []*eventPayload) {
	if err := w.bulkInsert(ctx, batch); err != nil {
		w.log.Warn().Err(err).Int("count", len(batch)).Msg("Bulk insert failed, attempting row-by-row recovery")
		w.fallbackInsert(ctx, batch)
	}
}

func (w *EventWorker) bulkInsert(ctx context.Context, batch []*eventPayload) error {
	rows := make([][]interface{}, 0, len(batch))
	for _, p := range batch {
		examID, userID, err := parseIDs(p)
		if err != nil {
			// Trigger fallback, which handles the bad row individually.
			return err
		}
		rows = append(rows, []interface{}{
			examID, userID, p.Type, p.ElapsedMs, p.Severity, p.Detail,
		})
	}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"proctoring_events"},
		[]string{"exam_id", "user_id", "type", "elapsed_ms", "severity", "detail"},
		pgx.CopyFromRows(rows),
	)
	return err
}

func (w *EventWorker) fallbackInsert(ctx context.Context, batch []*eventPayload) {
	requeueList := make([]*eventPayload, 0)

	for _, p := range batch {
		examID, userID, err := parseIDs(p)
		if err != nil {
			w.log.Error().Str("exam_id", p.ExamID).Str("user_id", p.UserID).Msg("Dropping event with invalid UUID")
			continue
		}

		_, err = w.pool.Exec(ctx,
			`INSERT INTO proctoring_events (exam_id, user_id, type, elapsed_ms, severity, detail)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			examID, userID, p.Type, p.ElapsedMs, p.Severity, p.Detail,
		)
		if err != nil {
			w.log.Error().Err(err).Str("user_id", p.UserID).Msg("Insert failed, requeueing")
			requeueList = append(requeueList, p)
		}
	}

	if len(requeueList) > 0 {
		w.requeue(ctx, requeueList)
	}
}

func (w *EventWorker) requeue(ctx context.Context, items []*eventPayload) {
	pipe := w.rdb.Pipeline()
	for _, p := range items {
		data, _ := json.Marshal(p)
		pipe.RPush(ctx, config.QueueKey.PersistEventsQueue, data)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		w.log.Error().Err(err).Msg("CRITICAL: Failed to requeue items to Redis. Data loss occurred.")
		return
	}
	w.log.Info().Int("count", len(items)).Msg("Requeued failed items back to Redis")
	// Avoid thrashing while the database is down.
	time.Sleep(2 * time.Second)
}

func (w *EventWorker) shutdown(buffer []*eventPayload) {
	w.log.Info().Msg("Worker stopping, flushing remaining buffer...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if len(buffer) > 0 {
		w.flushSafe(shutdownCtx, buffer)
	}
}

func parseIDs(p *eventPayload) (uuid.UUID, uuid.UUID, error) {
	examID, err := uuid.Parse(p.ExamID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return examID, userID, nil
}
