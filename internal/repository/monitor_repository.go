package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// MonitorRepository provides data access for the live exam monitor: which
// examinees are active, how far along they are and how many proctoring
// signals they have produced.
type MonitorRepository struct {
	pool *pgxpool.Pool
}

// NewMonitorRepository creates a new MonitorRepository.
func NewMonitorRepository(pool *pgxpool.Pool) *MonitorRepository {
	return &MonitorRepository{pool: pool}
}

// GetAnsweredCounts returns, per examinee, how many questions have a saved
// answer for the given exam.
func (r *MonitorRepository) GetAnsweredCounts(ctx context.Context, examID uuid.UUID) (map[uuid.UUID]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id, COUNT(*)
		 FROM session_answers
		 WHERE exam_id = $1
		 GROUP BY user_id`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var uid uuid.UUID
		var count int64
		if err := rows.Scan(&uid, &count); err != nil {
			return nil, err
		}
		counts[uid] = count
	}
	return counts, rows.Err()
}

// GetEventCounts returns, per examinee, how many proctoring events were
// persisted for the given exam, optionally filtered by minimum severity.
func (r *MonitorRepository) GetEventCounts(ctx context.Context, examID uuid.UUID, severity model.Severity) (map[uuid.UUID]int64, error) {
	query := `SELECT user_id, COUNT(*) FROM proctoring_events WHERE exam_id = $1`
	args := []any{examID}
	if severity != "" {
		query += ` AND severity = $2`
		args = append(args, severity)
	}
	query += ` GROUP BY user_id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int64)
	for rows.Next() {
		var uid uuid.UUID
		var count int64
		if err := rows.Scan(&uid, &count); err != nil {
			return nil, err
		}
		counts[uid] = count
	}
	return counts, rows.Err()
}

// GetSubmittedUserIDs returns the examinees who already submitted the exam.
func (r *MonitorRepository) GetSubmittedUserIDs(ctx context.Context, examID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM exam_results WHERE exam_id = $1`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
