package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// ResultRepository handles exam result data access. Answers and proctoring
// events ride along as JSONB on the result row.
type ResultRepository struct {
	pool *pgxpool.Pool
}

// NewResultRepository creates a new ResultRepository.
func NewResultRepository(pool *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{pool: pool}
}

const resultColumns = `id, exam_id, exam_title, user_id, user_name,
	submitted_at, score, total_points, answers, events`

func scanResult(row pgx.Row) (*model.ExamResult, error) {
	res := &model.ExamResult{}
	var answers, events []byte
	err := row.Scan(&res.ID, &res.ExamID, &res.ExamTitle, &res.UserID, &res.UserName,
		&res.SubmittedAt, &res.Score, &res.TotalPoints, &answers, &events)
	if err != nil {
		return nil, err
	}
	if len(answers) > 0 {
		if err := json.Unmarshal(answers, &res.Answers); err != nil {
			return nil, err
		}
	}
	if len(events) > 0 {
		if err := json.Unmarshal(events, &res.Events); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// Create inserts a result row. The (exam_id, user_id) pair is unique, so a
// duplicate submission surfaces as a constraint violation.
func (r *ResultRepository) Create(ctx context.Context, res *model.ExamResult) error {
	answers, err := json.Marshal(res.Answers)
	if err != nil {
		return err
	}
	events, err := json.Marshal(res.Events)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO exam_results (exam_id, exam_title, user_id, user_name, submitted_at, score, total_points, answers, events)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		res.ExamID, res.ExamTitle, res.UserID, res.UserName, res.SubmittedAt,
		res.Score, res.TotalPoints, answers, events,
	).Scan(&res.ID)
}

// GetByID retrieves a result by its UUID.
func (r *ResultRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.ExamResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM exam_results WHERE id = $1`, id))
}

// GetByExamAndUser retrieves the result of one attempt.
func (r *ResultRepository) GetByExamAndUser(ctx context.Context, examID, userID uuid.UUID) (*model.ExamResult, error) {
	return scanResult(r.pool.QueryRow(ctx,
		`SELECT `+resultColumns+` FROM exam_results WHERE exam_id = $1 AND user_id = $2`,
		examID, userID))
}

// ListByExamPaginated retrieves results for one exam, newest first.
func (r *ResultRepository) ListByExamPaginated(ctx context.Context, examID uuid.UUID, limit, offset int) ([]model.ExamResult, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM exam_results WHERE exam_id = $1`, examID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM exam_results
		 WHERE exam_id = $1 ORDER BY submitted_at DESC LIMIT $2 OFFSET $3`,
		examID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, 0, err
		}
		results = append(results, *res)
	}
	return results, total, rows.Err()
}

// ListByUser retrieves every result belonging to one examinee.
func (r *ResultRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.ExamResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+resultColumns+` FROM exam_results
		 WHERE user_id = $1 ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []model.ExamResult
	for rows.Next() {
		res, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *res)
	}
	return results, rows.Err()
}
