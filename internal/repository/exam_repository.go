package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// ExamRepository handles exam data access.
type ExamRepository struct {
	pool *pgxpool.Pool
}

// NewExamRepository creates a new ExamRepository.
func NewExamRepository(pool *pgxpool.Pool) *ExamRepository {
	return &ExamRepository{pool: pool}
}

const examColumns = `e.id, e.owner_id, e.title, e.description, e.duration_minutes,
	e.difficulty, e.available_from, e.available_until, e.status, e.created_at, e.updated_at,
	(SELECT COUNT(*) FROM exam_questions eq WHERE eq.exam_id = e.id) AS question_count`

// GetByID retrieves an exam by its UUID, without its question list.
func (r *ExamRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Exam, error) {
	e := &model.Exam{}
	err := r.pool.QueryRow(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.id = $1`, id,
	).Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.DurationMinutes,
		&e.Difficulty, &e.AvailableFrom, &e.AvailableUntil, &e.Status,
		&e.CreatedAt, &e.UpdatedAt, &e.QuestionCount)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts a new draft exam.
func (r *ExamRepository) Create(ctx context.Context, e *model.Exam) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO exams (owner_id, title, description, duration_minutes, difficulty, available_from, available_until, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id, created_at, updated_at`,
		e.OwnerID, e.Title, e.Description, e.DurationMinutes, e.Difficulty,
		e.AvailableFrom, e.AvailableUntil, e.Status,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

// Update replaces a draft exam's metadata.
func (r *ExamRepository) Update(ctx context.Context, e *model.Exam) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams
		 SET title = $1, description = $2, duration_minutes = $3, difficulty = $4,
		     available_from = $5, available_until = $6, updated_at = NOW()
		 WHERE id = $7`,
		e.Title, e.Description, e.DurationMinutes, e.Difficulty,
		e.AvailableFrom, e.AvailableUntil, e.ID)
	return err
}

// UpdateStatus updates an exam's lifecycle status.
func (r *ExamRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ExamStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE exams SET status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// Delete removes an exam and its question assignments.
func (r *ExamRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM exams WHERE id = $1`, id)
	return err
}

// SetQuestions replaces the ordered question list of an exam.
func (r *ExamRepository) SetQuestions(ctx context.Context, examID uuid.UUID, questionIDs []uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM exam_questions WHERE exam_id = $1`, examID); err != nil {
		return err
	}
	for i, qid := range questionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO exam_questions (exam_id, question_id, position) VALUES ($1, $2, $3)`,
			examID, qid, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// ListByOwnerPaginated retrieves exams for an owner with pagination.
// A nil owner lists all exams (admin view).
func (r *ExamRepository) ListByOwnerPaginated(ctx context.Context, ownerID *uuid.UUID, limit, offset int) ([]model.Exam, int, error) {
	countQuery := `SELECT COUNT(*) FROM exams e`
	query := `SELECT ` + examColumns + ` FROM exams e`
	var args []any

	if ownerID != nil {
		countQuery += ` WHERE e.owner_id = $1`
		query += ` WHERE e.owner_id = $1`
		args = append(args, *ownerID)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY e.created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.DurationMinutes,
			&e.Difficulty, &e.AvailableFrom, &e.AvailableUntil, &e.Status,
			&e.CreatedAt, &e.UpdatedAt, &e.QuestionCount); err != nil {
			return nil, 0, err
		}
		exams = append(exams, e)
	}
	return exams, total, rows.Err()
}

// ListPublished returns all published exams.
// Used for cache prewarming on application startup.
func (r *ExamRepository) ListPublished(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams e WHERE e.status = $1
		 ORDER BY e.created_at DESC`, model.ExamStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.DurationMinutes,
			&e.Difficulty, &e.AvailableFrom, &e.AvailableUntil, &e.Status,
			&e.CreatedAt, &e.UpdatedAt, &e.QuestionCount); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}

// ListAvailableForExaminee returns published exams currently inside their
// availability window.
func (r *ExamRepository) ListAvailableForExaminee(ctx context.Context) ([]model.Exam, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+examColumns+` FROM exams e
		 WHERE e.status = $1
		   AND (e.available_from IS NULL OR e.available_from <= NOW())
		   AND (e.available_until IS NULL OR e.available_until >= NOW())
		 ORDER BY e.created_at DESC`, model.ExamStatusPublished)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var exams []model.Exam
	for rows.Next() {
		var e model.Exam
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Title, &e.Description, &e.DurationMinutes,
			&e.Difficulty, &e.AvailableFrom, &e.AvailableUntil, &e.Status,
			&e.CreatedAt, &e.UpdatedAt, &e.QuestionCount); err != nil {
			return nil, err
		}
		exams = append(exams, e)
	}
	return exams, rows.Err()
}
