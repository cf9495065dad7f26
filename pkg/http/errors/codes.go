package errors

// Error codes for standardized error responses
const (
	// Authentication errors
	ErrCodeForbidden              = "forbidden"
	ErrCodeInvalidToken           = "invalid_token"
	ErrCodeAuthenticationRequired = "authentication_required"
	ErrCodeInvalidCredentials     = "invalid_credentials"

	// Validation errors
	ErrCodeValidationFailed     = "validation_failed"
	ErrCodeUnsupportedMediaType = "unsupported_media_type"
	ErrCodeInvalidQuestion      = "invalid_question"
	ErrCodeInvalidQuizID        = "invalid_quiz_id"

	// Resource errors
	ErrCodeNotFound      = "not_found"
	ErrCodeQuizNotFound  = "quiz_not_found"
	ErrCodeAlreadyExists = "already_exists"

	// Method errors
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Server errors
	ErrCodeInternalError       = "internal_error"
	ErrCodeFeatureNotAvailable = "feature_not_available"

	// Leaderboard errors
	ErrCodeLeaderboardFetchFailed = "leaderboard_fetch_failed"
)
