package model

// EventType enumerates the proctoring signals the platform records.
type EventType string

const (
	EventTabSwitch      EventType = "tab_switch"
	EventPasteContent   EventType = "paste_content"
	EventFaceDetection  EventType = "face_detection"
	EventNoiseDetection EventType = "noise_detection"
)

// Severity grades a proctoring event.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// ProctoringEvent is a single recorded signal. ElapsedMs is milliseconds
// since session start, not wall-clock time.
type ProctoringEvent struct {
	Type      EventType `json:"type"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Severity  Severity  `json:"severity"`
	Detail    string    `json:"detail,omitempty"`
}
