package service

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/repository"
)

// MonitorService orchestrates live exam monitoring business logic.
type MonitorService struct {
	monitorRepo *repository.MonitorRepository
}

// NewMonitorService creates a new MonitorService.
func NewMonitorService(monitorRepo *repository.MonitorRepository) *MonitorService {
	return &MonitorService{monitorRepo: monitorRepo}
}

// ProgressSnapshot holds per-examinee progress for one exam.
type ProgressSnapshot struct {
	AnsweredCounts map[uuid.UUID]int64 `json:"answered_counts"`
	EventCounts    map[uuid.UUID]int64 `json:"event_counts"`
	SubmittedIDs   []uuid.UUID         `json:"submitted_ids"`
	TotalEvents    int64               `json:"total_events"`
}

// GetProgress returns answered counts, proctoring-event counts and
// submissions for one exam. The fetches are independent, so they run in
// parallel.
func (s *MonitorService) GetProgress(ctx context.Context, examID uuid.UUID) (*ProgressSnapshot, error) {
	snapshot := &ProgressSnapshot{
		AnsweredCounts: make(map[uuid.UUID]int64),
		EventCounts:    make(map[uuid.UUID]int64),
	}

	var (
		answered  map[uuid.UUID]int64
		events    map[uuid.UUID]int64
		submitted []uuid.UUID

		answeredErr, eventsErr, submittedErr error
		wg                                   sync.WaitGroup
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		answered, answeredErr = s.monitorRepo.GetAnsweredCounts(ctx, examID)
	}()
	go func() {
		defer wg.Done()
		events, eventsErr = s.monitorRepo.GetEventCounts(ctx, examID, model.Severity(""))
	}()
	go func() {
		defer wg.Done()
		submitted, submittedErr = s.monitorRepo.GetSubmittedUserIDs(ctx, examID)
	}()
	wg.Wait()

	// Answered counts are critical; the rest is best-effort.
	if answeredErr != nil {
		return nil, answeredErr
	}
	if answered != nil {
		snapshot.AnsweredCounts = answered
	}
	if eventsErr == nil && events != nil {
		snapshot.EventCounts = events
		for _, count := range events {
			snapshot.TotalEvents += count
		}
	}
	if submittedErr == nil {
		snapshot.SubmittedIDs = submitted
	}

	return snapshot, nil
}
