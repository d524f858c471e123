package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
)

// DashboardData consolidates the metrics shown on an author's dashboard.
type DashboardData struct {
	TotalExams       int                        `json:"total_exams"`
	TotalQuestions   int                        `json:"total_questions"`
	TotalResults     int                        `json:"total_results"`
	ExamStatusCounts map[model.ExamStatus]int   `json:"exam_status_counts"`
	RecentResults    []repository.RecentResult  `json:"recent_results"`
}

// ExamAnalytics consolidates the per-exam report.
type ExamAnalytics struct {
	Stats             *repository.ExamStats    `json:"stats"`
	ScoreDistribution []repository.ScoreBucket `json:"score_distribution"`
	EventTypeCounts   map[model.EventType]int  `json:"event_type_counts"`
}

// AnalyticsService handles dashboard and per-exam reporting.
type AnalyticsService struct {
	repo *repository.AnalyticsRepository
}

// NewAnalyticsService creates a new AnalyticsService.
func NewAnalyticsService(repo *repository.AnalyticsRepository) *AnalyticsService {
	return &AnalyticsService{repo: repo}
}

// GetDashboard assembles an owner's dashboard metrics. A nil owner yields
// the platform-wide admin view.
func (s *AnalyticsService) GetDashboard(ctx context.Context, ownerID *uuid.UUID) (*DashboardData, error) {
	exams, questions, results, err := s.repo.GetSummaryCounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	statusCounts, err := s.repo.GetExamStatusCounts(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	recent, err := s.repo.GetRecentResults(ctx, ownerID, 5)
	if err != nil {
		return nil, err
	}

	return &DashboardData{
		TotalExams:       exams,
		TotalQuestions:   questions,
		TotalResults:     results,
		ExamStatusCounts: statusCounts,
		RecentResults:    recent,
	}, nil
}

// GetExamAnalytics assembles the per-exam report. The three data fetches
// are independent, so they run in parallel.
func (s *AnalyticsService) GetExamAnalytics(ctx context.Context, examID uuid.UUID) (*ExamAnalytics, error) {
	var (
		stats      *repository.ExamStats
		buckets    []repository.ScoreBucket
		eventTypes map[model.EventType]int

		statsErr, bucketsErr, eventsErr error
		wg                              sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		stats, statsErr = s.repo.GetExamStats(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		buckets, bucketsErr = s.repo.GetScoreDistribution(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		eventTypes, eventsErr = s.repo.GetEventTypeCounts(ctx, examID)
	}()
	wg.Wait()

	if statsErr != nil {
		return nil, statsErr
	}
	if bucketsErr != nil {
		return nil, bucketsErr
	}
	// Event counts are best-effort.
	if eventsErr != nil || eventTypes == nil {
		eventTypes = map[model.EventType]int{}
	}

	return &ExamAnalytics{
		Stats:             stats,
		ScoreDistribution: buckets,
		EventTypeCounts:   eventTypes,
	}, nil
}
