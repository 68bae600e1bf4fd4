package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/replayhq/scoreserver/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeFieldRequired      = "FIELD_REQUIRED"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeInvalidStatus      = "INVALID_STATUS"
	CodeNoChanges          = "NO_CHANGES"
	CodeUserNotFound       = "USER_NOT_FOUND"
	CodeUsernameTaken      = "USERNAME_TAKEN"
	CodeNicknameTaken      = "NICKNAME_TAKEN"
	CodeEmailTaken         = "EMAIL_TAKEN"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeNoPassword         = "NO_PASSWORD"
	CodeAccountInactive    = "ACCOUNT_INACTIVE"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeGameExists         = "GAME_EXISTS"
	CodeInvalidGameName    = "INVALID_GAME_NAME"
	CodeScoreNotFound      = "SCORE_NOT_FOUND"
	CodeInvalidReplay      = "INVALID_REPLAY"
	CodeUnsupportedFormat  = "UNSUPPORTED_FORMAT"
	CodeInvalidOwner       = "INVALID_OWNER"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	// Validation errors carry the offending detail in their message
	case errors.Is(err, model.ErrFieldRequired):
		return &httpError{http.StatusBadRequest, APIError{CodeFieldRequired, err.Error()}}
	case errors.Is(err, model.ErrInvalidEmail):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidEmail, err.Error()}}
	case errors.Is(err, model.ErrInvalidStatus):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidStatus, err.Error()}}
	case errors.Is(err, model.ErrInvalidGameName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidGameName, err.Error()}}
	case errors.Is(err, model.ErrInvalidReplay):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidReplay, err.Error()}}
	case errors.Is(err, model.ErrUnsupportedFormat):
		return &httpError{http.StatusBadRequest, APIError{CodeUnsupportedFormat, err.Error()}}
	case errors.Is(err, model.ErrInvalidOwner):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidOwner, err.Error()}}
	case errors.Is(err, model.ErrNoChanges):
		return &httpError{http.StatusBadRequest, APIError{CodeNoChanges, "No changes requested"}}

	case errors.Is(err, model.ErrUserNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeUserNotFound, "User not found"}}
	case errors.Is(err, model.ErrGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrReplayNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeScoreNotFound, "Score not found"}}

	case errors.Is(err, model.ErrUsernameTaken):
		return &httpError{http.StatusConflict, APIError{CodeUsernameTaken, "Username already taken"}}
	case errors.Is(err, model.ErrNicknameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNicknameTaken, "Nickname already taken"}}
	case errors.Is(err, model.ErrEmailTaken):
		return &httpError{http.StatusConflict, APIError{CodeEmailTaken, "Email already in use"}}
	case errors.Is(err, model.ErrGameExists):
		return &httpError{http.StatusConflict, APIError{CodeGameExists, "Game already registered"}}

	case errors.Is(err, model.ErrInvalidCredentials):
		return &httpError{http.StatusUnauthorized, APIError{CodeInvalidCredentials, "Invalid username or password"}}
	case errors.Is(err, model.ErrNoPassword):
		return &httpError{http.StatusConflict, APIError{CodeNoPassword, "Account has no password set"}}
	case errors.Is(err, model.ErrAccountInactive):
		return &httpError{http.StatusConflict, APIError{CodeAccountInactive, "Account is not active"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
