package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/evalhub/evalhub-backend/internal/middleware"
	"github.com/evalhub/evalhub-backend/internal/model"
	"github.com/evalhub/evalhub-backend/internal/service"
	"github.com/evalhub/evalhub-backend/internal/session"
	ws "github.com/evalhub/evalhub-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams an exam session over WebSocket: answer saves,
// proctoring events and submission.
type WSHandler struct {
	sessions *service.SessionService
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(sessions *service.SessionService, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		sessions: sessions,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// ExamStream godoc
// WS /ws/v1/exams/:exam_id/stream
// Upgrades to WebSocket for the live exam session.
func (h *WSHandler) ExamStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exam ID"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	userID := claims.UserID

	// The session must have been started over REST before streaming.
	ctrl, err := h.sessions.Get(examID, userID)
	if err != nil {
		ws.WriteError(conn, "no active session for this exam")
		return
	}

	wsLog := h.log.With().
		Str("user_id", userID.String()).
		Str("exam_id", examID.String()).
		Logger()
	wsLog.Info().Msg("Examinee connected")

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		switch msg.Action {
		case ws.ActionAnswer:
			h.handleAnswer(conn, examID, userID, &msg)
		case ws.ActionEvent:
			h.handleEvent(conn, examID, userID, &msg)
		case ws.ActionSubmit:
			h.handleSubmit(conn, wsLog, examID, userID)
			// The session is finished either way; keep the connection open
			// so the client can read the response, but stop processing.
		case ws.ActionPing:
			ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong, RemainingSeconds: ctrl.Remaining()})
		default:
			wsLog.Warn().Str("action", string(msg.Action)).Msg("Unknown action")
			ws.WriteError(conn, "unknown action: "+string(msg.Action))
		}
	}
}

func (h *WSHandler) handleAnswer(conn *websocket.Conn, examID, userID uuid.UUID, msg *ws.RequestPayload) {
	if msg.QID == "" {
		ws.WriteError(conn, "q_id is required")
		return
	}
	questionID, err := uuid.Parse(msg.QID)
	if err != nil {
		ws.WriteError(conn, "invalid q_id format")
		return
	}

	var answer model.Answer
	if len(msg.Answer) > 0 {
		if err := json.Unmarshal(msg.Answer, &answer); err != nil {
			ws.WriteError(conn, "unsupported answer shape")
			return
		}
	}

	if err := h.sessions.SaveAnswer(context.Background(), examID, userID, questionID, answer); err != nil {
		if errors.Is(err, session.ErrNotInProgress) {
			ws.WriteError(conn, "session is not in progress")
			return
		}
		h.log.Error().Err(err).Str("user_id", userID.String()).Msg("Answer save error")
		ws.WriteError(conn, "save failed")
		return
	}

	ws.WriteTyped(conn, ws.SavedResponse{Event: ws.EventSaved, QID: msg.QID})
}

func (h *WSHandler) handleEvent(conn *websocket.Conn, examID, userID uuid.UUID, msg *ws.RequestPayload) {
	switch msg.Type {
	case model.EventTabSwitch, model.EventPasteContent:
		// Client-reported signals.
	default:
		ws.WriteError(conn, "unknown event type: "+string(msg.Type))
		return
	}

	if err := h.sessions.RecordEvent(context.Background(), examID, userID, msg.Type, msg.Detail); err != nil {
		if errors.Is(err, session.ErrNotInProgress) {
			ws.WriteError(conn, "session is not in progress")
			return
		}
		ws.WriteError(conn, "record failed")
		return
	}

	ws.WriteTyped(conn, ws.RecordedResponse{Event: ws.EventRecorded, Type: msg.Type})
}

func (h *WSHandler) handleSubmit(conn *websocket.Conn, wsLog zerolog.Logger, examID, userID uuid.UUID) {
	result, err := h.sessions.Submit(context.Background(), examID, userID)
	if err != nil && !errors.Is(err, session.ErrAlreadySubmitted) {
		if errors.Is(err, session.ErrSubmitInFlight) {
			ws.WriteError(conn, "submission already in progress")
			return
		}
		wsLog.Error().Err(err).Msg("Submit error")
		ws.WriteError(conn, "submission failed, please retry")
		return
	}

	wsLog.Info().
		Int("score", result.Score).
		Int("total_points", result.TotalPoints).
		Msg("Exam submitted")

	ws.WriteTyped(conn, ws.SubmittedResponse{
		Event:       ws.EventSubmitted,
		ResultID:    result.ID,
		Score:       result.Score,
		TotalPoints: result.TotalPoints,
	})
}
