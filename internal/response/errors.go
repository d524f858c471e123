package response

// ErrCode is a typed error code enum for consistent API error identification.
type ErrCode string

const (
	// ─── Authentication ────────────────────────────────────────────────
	ErrInvalidCredentials ErrCode = "INVALID_CREDENTIALS"
	ErrSessionActive      ErrCode = "SESSION_ALREADY_ACTIVE"
	ErrSessionInvalidated ErrCode = "SESSION_INVALIDATED"
	ErrTokenRequired      ErrCode = "TOKEN_REQUIRED"
	ErrTokenInvalid       ErrCode = "TOKEN_INVALID"
	ErrTokenExpired       ErrCode = "TOKEN_EXPIRED"

	// ─── Authorization ─────────────────────────────────────────────────
	ErrForbidden        ErrCode = "FORBIDDEN"
	ErrPermissionDenied ErrCode = "PERMISSION_DENIED"
	ErrNotOwner         ErrCode = "NOT_RESOURCE_OWNER"

	// ─── Validation ────────────────────────────────────────────────────
	ErrValidation     ErrCode = "VALIDATION_ERROR"
	ErrInvalidID      ErrCode = "INVALID_ID"
	ErrInvalidPayload ErrCode = "INVALID_PAYLOAD"

	// ─── Resources ─────────────────────────────────────────────────────
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrConflict        ErrCode = "CONFLICT"
	ErrActionForbidden ErrCode = "ACTION_FORBIDDEN"

	// ─── Exam lifecycle ────────────────────────────────────────────────
	ErrExamNotAvailable ErrCode = "EXAM_NOT_AVAILABLE"
	ErrExamNotPublished ErrCode = "EXAM_NOT_PUBLISHED"
	ErrExamNotDraft     ErrCode = "EXAM_NOT_DRAFT"
	ErrNoQuestions      ErrCode = "NO_QUESTIONS"
	ErrQuestionInvalid  ErrCode = "QUESTION_SHAPE_INVALID"

	// ─── Exam sessions ─────────────────────────────────────────────────
	ErrSessionNotActive ErrCode = "SESSION_NOT_ACTIVE"
	ErrAlreadySubmitted ErrCode = "ALREADY_SUBMITTED"
	ErrSubmitInFlight   ErrCode = "SUBMIT_IN_FLIGHT"

	// ─── AI assist ─────────────────────────────────────────────────────
	ErrAIDisabled    ErrCode = "AI_DISABLED"
	ErrAIUnavailable ErrCode = "AI_UNAVAILABLE"

	// ─── Rate Limiting ─────────────────────────────────────────────────
	ErrRateLimitExceeded ErrCode = "RATE_LIMIT_EXCEEDED"

	// ─── Server ────────────────────────────────────────────────────────
	ErrInternal ErrCode = "INTERNAL_ERROR"
)

// GetMessage returns a human-readable message for a given error code.
func GetMessage(code ErrCode) string {
	switch code {
	// ─── Authentication ────────────────────────────────────────────────
	case ErrInvalidCredentials:
		return "Invalid email or password."
	case ErrSessionActive:
		return "You are already signed in on another device."
	case ErrSessionInvalidated:
		return "Your session has ended. Please sign in again."
	case ErrTokenRequired:
		return "Authentication token is required."
	case ErrTokenInvalid:
		return "Authentication token is invalid."
	case ErrTokenExpired:
		return "Authentication token has expired."

	// ─── Authorization ─────────────────────────────────────────────────
	case ErrForbidden:
		return "You do not have permission to access this resource."
	case ErrPermissionDenied:
		return "Permission denied."
	case ErrNotOwner:
		return "You are not the owner of this resource."

	// ─── Validation ────────────────────────────────────────────────────
	case ErrValidation:
		return "Validation failed. Please check your input."
	case ErrInvalidID:
		return "Invalid ID format."
	case ErrInvalidPayload:
		return "Invalid request payload."

	// ─── Resources ─────────────────────────────────────────────────────
	case ErrNotFound:
		return "Resource not found."
	case ErrConflict:
		return "Resource already exists."
	case ErrActionForbidden:
		return "This action is not allowed."

	// ─── Exam lifecycle ────────────────────────────────────────────────
	case ErrExamNotAvailable:
		return "This exam is not currently available."
	case ErrExamNotPublished:
		return "This exam has not been published."
	case ErrExamNotDraft:
		return "This exam is no longer a draft."
	case ErrNoQuestions:
		return "This exam has no questions."
	case ErrQuestionInvalid:
		return "The question content does not match its type."

	// ─── Exam sessions ─────────────────────────────────────────────────
	case ErrSessionNotActive:
		return "No active exam session was found."
	case ErrAlreadySubmitted:
		return "This exam has already been submitted."
	case ErrSubmitInFlight:
		return "A submission is already being processed."

	// ─── AI assist ─────────────────────────────────────────────────────
	case ErrAIDisabled:
		return "AI assistance is not configured on this server."
	case ErrAIUnavailable:
		return "The AI provider could not be reached. Please try again."

	// ─── Rate Limiting ─────────────────────────────────────────────────
	case ErrRateLimitExceeded:
		return "Too many requests. Please try again later."

	// ─── Server ────────────────────────────────────────────────────────
	case ErrInternal:
		return "An internal server error occurred."
	default:
		return "An unexpected error occurred."
	}
}
