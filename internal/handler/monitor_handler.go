package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/config"
	"github.com/evalhub/evalhub-backend/internal/middleware"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/response"
	"github.com/evalhub/evalhub-backend/internal/service"
)

const (
	// refreshInterval is how often the full progress snapshot is re-sent.
	refreshInterval = 15 * time.Second
	// keepAliveInterval is how often an SSE ping comment is sent.
	keepAliveInterval = 30 * time.Second
	// refreshTimeout bounds a single snapshot fetch.
	refreshTimeout = 5 * time.Second
)

// MonitorHandler streams live exam progress to owners over SSE. Activity
// events arrive via Redis Pub/Sub; a periodic full snapshot covers missed
// messages.
type MonitorHandler struct {
	monitorService *service.MonitorService
	examService    *service.ExamService
	rdb            *redis.Client
	log            zerolog.Logger
}

// NewMonitorHandler creates a new MonitorHandler.
func NewMonitorHandler(monitorService *service.MonitorService, examService *service.ExamService, rdb *redis.Client, log zerolog.Logger) *MonitorHandler {
	return &MonitorHandler{
		monitorService: monitorService,
		examService:    examService,
		rdb:            rdb,
		log:            log.With().Str("component", "monitor_handler").Logger(),
	}
}

// Stream godoc
// GET /api/v1/exams/:exam_id/monitor (SSE)
// Streams activity events and periodic progress snapshots for a running exam.
func (h *MonitorHandler) Stream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	exam, err := h.examService.GetByID(c.Request.Context(), examID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
			return
		}
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}
	if claims.Role != model.RoleAdmin && exam.OwnerID != claims.UserID {
		response.Fail(c, http.StatusForbidden, response.ErrNotOwner)
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	reqCtx := c.Request.Context()

	pubsub := h.rdb.Subscribe(reqCtx, config.CacheKey.ExamMonitorChannel(examID.String()))
	defer pubsub.Close()

	// Initial snapshot so the dashboard renders before any activity.
	h.sendSnapshot(reqCtx, c, examID)
	c.Writer.Flush()

	refreshTicker := time.NewTicker(refreshInterval)
	defer refreshTicker.Stop()
	keepAliveTicker := time.NewTicker(keepAliveInterval)
	defer keepAliveTicker.Stop()

	ping := []byte(": ping\n\n")
	msgCh := pubsub.Channel()

	for {
		select {
		case <-reqCtx.Done():
			return

		case msg, ok := <-msgCh:
			if !ok {
				return
			}
			fmt.Fprintf(c.Writer, "event: activity\ndata: %s\n\n", msg.Payload)
			c.Writer.Flush()

		case <-refreshTicker.C:
			h.sendSnapshot(reqCtx, c, examID)
			c.Writer.Flush()

		case <-keepAliveTicker.C:
			if _, err := c.Writer.Write(ping); err != nil {
				return
			}
			c.Writer.Flush()
		}
	}
}

func (h *MonitorHandler) sendSnapshot(ctx context.Context, c *gin.Context, examID uuid.UUID) {
	fetchCtx, cancel := context.WithTimeout(ctx, refreshTimeout)
	defer cancel()

	snapshot, err := h.monitorService.GetProgress(fetchCtx, examID)
	if err != nil {
		h.log.Warn().Err(err).Str("exam_id", examID.String()).Msg("Failed to fetch progress snapshot")
		return
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return
	}
	fmt.Fprintf(c.Writer, "event: snapshot\ndata: %s\n\n", data)
}
