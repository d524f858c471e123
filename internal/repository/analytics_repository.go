package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// AnalyticsRepository handles dashboard and per-exam statistics queries.
type AnalyticsRepository struct {
	pool *pgxpool.Pool
}

// NewAnalyticsRepository creates a new AnalyticsRepository.
func NewAnalyticsRepository(pool *pgxpool.Pool) *AnalyticsRepository {
	return &AnalyticsRepository{pool: pool}
}

// GetSummaryCounts retrieves the high-level metrics for the dashboard,
// scoped to one owner. A nil owner counts platform-wide (admin view).
func (r *AnalyticsRepository) GetSummaryCounts(ctx context.Context, ownerID *uuid.UUID) (totalExams, totalQuestions, totalResults int, err error) {
	if ownerID == nil {
		err = r.pool.QueryRow(ctx,
			`SELECT
				(SELECT COUNT(*) FROM exams),
				(SELECT COUNT(*) FROM questions),
				(SELECT COUNT(*) FROM exam_results)`,
		).Scan(&totalExams, &totalQuestions, &totalResults)
		return
	}
	err = r.pool.QueryRow(ctx,
		`SELECT
			(SELECT COUNT(*) FROM exams WHERE owner_id = $1),
			(SELECT COUNT(*) FROM questions WHERE owner_id = $1),
			(SELECT COUNT(*) FROM exam_results er WHERE EXISTS
				(SELECT 1 FROM exams e WHERE e.id = er.exam_id AND e.owner_id = $1))`,
		*ownerID,
	).Scan(&totalExams, &totalQuestions, &totalResults)
	return
}

// GetExamStatusCounts retrieves the distribution of an owner's exams by
// status. A nil owner counts across the platform.
func (r *AnalyticsRepository) GetExamStatusCounts(ctx context.Context, ownerID *uuid.UUID) (map[model.ExamStatus]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM exams
		 WHERE $1::uuid IS NULL OR owner_id = $1
		 GROUP BY status`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.ExamStatus]int)
	for rows.Next() {
		var status model.ExamStatus
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, err
		}
		counts[status] = count
	}
	return counts, rows.Err()
}

// ExamStats aggregates submission outcomes for one exam.
type ExamStats struct {
	AttemptCount int      `json:"attempt_count"`
	AverageScore *float64 `json:"average_score"`
	HighestScore *int     `json:"highest_score"`
	LowestScore  *int     `json:"lowest_score"`
}

// GetExamStats computes attempt count and score aggregates for one exam.
func (r *AnalyticsRepository) GetExamStats(ctx context.Context, examID uuid.UUID) (*ExamStats, error) {
	s := &ExamStats{}
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*), AVG(score), MAX(score), MIN(score)
		 FROM exam_results WHERE exam_id = $1`, examID,
	).Scan(&s.AttemptCount, &s.AverageScore, &s.HighestScore, &s.LowestScore)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// ScoreBucket is one band of the score distribution histogram.
type ScoreBucket struct {
	Band  string `json:"band"`
	Count int    `json:"count"`
}

// GetScoreDistribution buckets results by score percentage in 20-point bands.
func (r *AnalyticsRepository) GetScoreDistribution(ctx context.Context, examID uuid.UUID) ([]ScoreBucket, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT band, COUNT(*) FROM (
			SELECT CASE
				WHEN total_points = 0 THEN '0-19'
				WHEN score * 100 / total_points < 20 THEN '0-19'
				WHEN score * 100 / total_points < 40 THEN '20-39'
				WHEN score * 100 / total_points < 60 THEN '40-59'
				WHEN score * 100 / total_points < 80 THEN '60-79'
				ELSE '80-100'
			END AS band
			FROM exam_results WHERE exam_id = $1
		) bands GROUP BY band ORDER BY band`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var buckets []ScoreBucket
	for rows.Next() {
		var b ScoreBucket
		if err := rows.Scan(&b.Band, &b.Count); err != nil {
			return nil, err
		}
		buckets = append(buckets, b)
	}
	if buckets == nil {
		buckets = []ScoreBucket{}
	}
	return buckets, rows.Err()
}

// GetEventTypeCounts breaks down persisted proctoring events by type for one exam.
func (r *AnalyticsRepository) GetEventTypeCounts(ctx context.Context, examID uuid.UUID) (map[model.EventType]int, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT type, COUNT(*) FROM proctoring_events WHERE exam_id = $1 GROUP BY type`, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[model.EventType]int)
	for rows.Next() {
		var typ model.EventType
		var count int
		if err := rows.Scan(&typ, &count); err != nil {
			return nil, err
		}
		counts[typ] = count
	}
	return counts, rows.Err()
}

// RecentResult is a compact row for the dashboard's recent activity feed.
type RecentResult struct {
	ID          uuid.UUID `json:"id"`
	ExamTitle   string    `json:"exam_title"`
	UserName    string    `json:"user_name"`
	SubmittedAt time.Time `json:"submitted_at"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"`
}

// GetRecentResults retrieves the last N submissions across an owner's
// exams. A nil owner spans the platform.
func (r *AnalyticsRepository) GetRecentResults(ctx context.Context, ownerID *uuid.UUID, limit int) ([]RecentResult, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT er.id, er.exam_title, er.user_name, er.submitted_at, er.score, er.total_points
		 FROM exam_results er
		 JOIN exams e ON e.id = er.exam_id
		 WHERE $1::uuid IS NULL OR e.owner_id = $1
		 ORDER BY er.submitted_at DESC LIMIT $2`, ownerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []RecentResult
	for rows.Next() {
		var rr RecentResult
		if err := rows.Scan(&rr.ID, &rr.ExamTitle, &rr.UserName, &rr.SubmittedAt, &rr.Score, &rr.TotalPoints); err != nil {
			return nil, err
		}
		results = append(results, rr)
	}
	if results == nil {
		results = []RecentResult{}
	}
	return results, rows.Err()
}
