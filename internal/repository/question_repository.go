package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// QuestionRepository handles question-bank data access. Options, prompts,
// tags and the reference answer are stored as JSONB.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

const questionColumns = `id, owner_id, text, type, options, prompts, correct,
	points, tags, category, subcategory, review_status, created_at, updated_at`

func scanQuestion(row pgx.Row) (*model.Question, error) {
	q := &model.Question{}
	var options, prompts, correct, tags []byte
	err := row.Scan(&q.ID, &q.OwnerID, &q.Text, &q.Type, &options, &prompts, &correct,
		&q.Points, &tags, &q.Category, &q.Subcategory, &q.ReviewStatus, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := decodeQuestionJSON(q, options, prompts, correct, tags); err != nil {
		return nil, err
	}
	return q, nil
}

func decodeQuestionJSON(q *model.Question, options, prompts, correct, tags []byte) error {
	if len(options) > 0 {
		if err := json.Unmarshal(options, &q.Options); err != nil {
			return err
		}
	}
	if len(prompts) > 0 {
		if err := json.Unmarshal(prompts, &q.Prompts); err != nil {
			return err
		}
	}
	if len(correct) > 0 {
		if err := json.Unmarshal(correct, &q.Correct); err != nil {
			return err
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &q.Tags); err != nil {
			return err
		}
	}
	return nil
}

// GetByID retrieves a question by its UUID.
func (r *QuestionRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Question, error) {
	return scanQuestion(r.pool.QueryRow(ctx,
		`SELECT `+questionColumns+` FROM questions WHERE id = $1`, id))
}

// Create inserts a new question.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	prompts, err := json.Marshal(q.Prompts)
	if err != nil {
		return err
	}
	correct, err := json.Marshal(q.Correct)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(q.Tags)
	if err != nil {
		return err
	}

	return r.pool.QueryRow(ctx,
		`INSERT INTO questions (owner_id, text, type, options, prompts, correct, points, tags, category, subcategory, review_status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 RETURNING id, created_at, updated_at`,
		q.OwnerID, q.Text, q.Type, options, prompts, correct, q.Points, tags,
		q.Category, q.Subcategory, q.ReviewStatus,
	).Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt)
}

// Update replaces a question's content.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	options, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	prompts, err := json.Marshal(q.Prompts)
	if err != nil {
		return err
	}
	correct, err := json.Marshal(q.Correct)
	if err != nil {
		return err
	}
	tags, err := json.Marshal(q.Tags)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx,
		`UPDATE questions
		 SET text = $1, type = $2, options = $3, prompts = $4, correct = $5,
		     points = $6, tags = $7, category = $8, subcategory = $9,
		     review_status = $10, updated_at = NOW()
		 WHERE id = $11`,
		q.Text, q.Type, options, prompts, correct, q.Points, tags,
		q.Category, q.Subcategory, q.ReviewStatus, q.ID)
	return err
}

// UpdateReviewStatus moves a question through the review workflow.
func (r *QuestionRepository) UpdateReviewStatus(ctx context.Context, id uuid.UUID, status model.ReviewStatus) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE questions SET review_status = $1, updated_at = NOW() WHERE id = $2`,
		status, id)
	return err
}

// Delete removes a question from the bank.
func (r *QuestionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	return err
}

// ListByOwnerPaginated retrieves an owner's questions with pagination and
// optional category filter.
func (r *QuestionRepository) ListByOwnerPaginated(ctx context.Context, ownerID uuid.UUID, category string, limit, offset int) ([]model.Question, int, error) {
	countQuery := `SELECT COUNT(*) FROM questions WHERE owner_id = $1`
	query := `SELECT ` + questionColumns + ` FROM questions WHERE owner_id = $1`
	args := []any{ownerID}

	if category != "" {
		countQuery += ` AND category = $2`
		query += ` AND category = $2`
		args = append(args, category)
	}

	var total int
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += ` ORDER BY created_at DESC LIMIT $` + itoa(len(args)+1) + ` OFFSET $` + itoa(len(args)+2)
	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, 0, err
		}
		questions = append(questions, *q)
	}
	return questions, total, rows.Err()
}

// ListByExam retrieves an exam's questions in their assigned order.
func (r *QuestionRepository) ListByExam(ctx context.Context, examID uuid.UUID) ([]model.Question, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT q.id, q.owner_id, q.text, q.type, q.options, q.prompts, q.correct,
		        q.points, q.tags, q.category, q.subcategory, q.review_status, q.created_at, q.updated_at
		 FROM exam_questions eq
		 JOIN questions q ON q.id = eq.question_id
		 WHERE eq.exam_id = $1
		 ORDER BY eq.position ASC`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		questions = append(questions, *q)
	}
	return questions, rows.Err()
}
