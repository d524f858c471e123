package websocket

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/evalhub/evalhub-backend/internal/model"
)

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAnswer Action = "answer"
	ActionEvent  Action = "event"
	ActionSubmit Action = "submit"
	ActionPing   Action = "ping"
)

// RequestPayload carries every client message; fields beyond Action are
// set depending on the action.
type RequestPayload struct {
	Action Action `json:"action"`

	// answer
	QID    string          `json:"q_id,omitempty"`
	Answer json.RawMessage `json:"answer,omitempty"`

	// event
	Type   model.EventType `json:"type,omitempty"`
	Detail string          `json:"detail,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError     Event = "error"
	EventSaved     Event = "saved"
	EventRecorded  Event = "recorded"
	EventSubmitted Event = "submitted"
	EventPong      Event = "pong"
)

type SavedResponse struct {
	Event Event  `json:"event"`
	QID   string `json:"q_id"`
}

type RecordedResponse struct {
	Event Event           `json:"event"`
	Type  model.EventType `json:"type"`
}

type SubmittedResponse struct {
	Event       Event     `json:"event"`
	ResultID    uuid.UUID `json:"result_id"`
	Score       int       `json:"score"`
	TotalPoints int       `json:"total_points"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event            Event `json:"event"`
	RemainingSeconds int   `json:"remaining_seconds"`
}
