package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/config"
)

// AnswerWorker consumes the answers persistence queue and UPSERTs each
// saved answer to PostgreSQL. The live session keeps answers in memory and
// Redis; this lane makes them durable.
type AnswerWorker struct {
	pool *pgxpool.Pool
	rdb  *redis.Client
	log  zerolog.Logger
}

// NewAnswerWorker creates a new AnswerWorker.
func NewAnswerWorker(pool *pgxpool.Pool, rdb *redis.Client, log zerolog.Logger) *AnswerWorker {
	return &AnswerWorker{
		pool: pool,
		rdb:  rdb,
		log:  log.With().Str("component", "answer_worker").Logger(),
	}
}

type answerPayload struct {
	ExamID     string          `json:"exam_id"`
	UserID     string          `json:"user_id"`
	QuestionID string          `json:"q_id"`
	Answer     json.RawMessage `json:"answer"`
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *AnswerWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopping...")
			// Drain remaining items before exit.
			w.drain(context.Background())
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *AnswerWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, config.QueueKey.PersistAnswersQueue).Result()
	if err != nil {
		if err != redis.Nil && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
		}
		return
	}

	if len(result) < 2 {
		return
	}

	var payload answerPayload
	if err := json.Unmarshal([]byte(result[1]), &payload); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error")
		return
	}

	if err := w.persistAnswer(ctx, &payload); err != nil {
		w.log.Error().Err(err).
			Str("user_id", payload.UserID).
			Str("exam_id", payload.ExamID).
			Msg("Persist error, retrying in 5s")
		// Push back to queue for retry.
		w.rdb.RPush(ctx, config.QueueKey.PersistAnswersQueue, result[1])
		time.Sleep(5 * time.Second)
	}
}

func (w *AnswerWorker) persistAnswer(ctx context.Context, p *answerPayload) error {
	examID, err := uuid.Parse(p.ExamID)
	if err != nil {
		return err
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		return err
	}
	questionID, err := uuid.Parse(p.QuestionID)
	if err != nil {
		return err
	}

	// UPSERT: the latest save for a question wins.
	_, err = w.pool.Exec(ctx,
		`INSERT INTO session_answers (exam_id, user_id, question_id, answer)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (exam_id, user_id, question_id) DO UPDATE
		 SET answer = EXCLUDED.answer, updated_at = NOW()`,
		examID, userID, questionID, p.Answer,
	)
	return err
}

// drain processes all remaining items in the queue before shutdown.
func (w *AnswerWorker) drain(ctx context.Context) {
	drained := 0
	for {
		result, err := w.rdb.LPop(ctx, config.QueueKey.PersistAnswersQueue).Result()
		if err != nil {
			break
		}

		var payload answerPayload
		if err := json.Unmarshal([]byte(result), &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain unmarshal error")
			continue
		}

		if err := w.persistAnswer(ctx, &payload); err != nil {
			w.log.Error().Err(err).Msg("Drain persist error")
			w.rdb.RPush(ctx, config.QueueKey.PersistAnswersQueue, result)
			break
		}
		drained++
	}

	if drained > 0 {
		w.log.Info().Int("count", drained).Msg("Drained remaining items")
	}
}
