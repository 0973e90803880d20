package apierr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/bingoparty/bingoparty-go/internal/model"
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
	CodeInvalidRequest       = "INVALID_REQUEST"
	CodeUnauthorized         = "UNAUTHORIZED"
	CodeRoomNotFound         = "ROOM_NOT_FOUND"
	CodeRoomClosed           = "ROOM_CLOSED"
	CodePlayerNotFound       = "PLAYER_NOT_FOUND"
	CodeCardNotFound         = "CARD_NOT_FOUND"
	CodeSpaceNotFound        = "SPACE_NOT_FOUND"
	CodeFreeSpace            = "FREE_SPACE"
	CodeNotInLobby           = "NOT_IN_LOBBY"
	CodeCardsAlreadyCreated  = "CARDS_ALREADY_CREATED"
	CodePoolTooSmall         = "POOL_TOO_SMALL"
	CodeGeneratorUnavailable = "GENERATOR_UNAVAILABLE"
	CodeInternalError        = "INTERNAL_ERROR"
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
	// Check for specific error types
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	// Map model errors
	switch {
	case errors.Is(err, model.ErrValidation):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrCardNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeCardNotFound, "Card not found"}}
	case errors.Is(err, model.ErrSpaceNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeSpaceNotFound, "Space not found"}}
	case errors.Is(err, model.ErrRoomClosed):
		return &httpError{http.StatusConflict, APIError{CodeRoomClosed, "Room is closed to new players"}}
	case errors.Is(err, model.ErrRoomNotInLobby):
		return &httpError{http.StatusConflict, APIError{CodeNotInLobby, "Options can only be changed in the lobby"}}
	case errors.Is(err, model.ErrCardsAlreadyCreated):
		return &httpError{http.StatusConflict, APIError{CodeCardsAlreadyCreated, "Cards have already been created"}}
	case errors.Is(err, model.ErrPoolTooSmall):
		return &httpError{http.StatusConflict, APIError{CodePoolTooSmall,
			fmt.Sprintf("At least %d options are required to create cards", model.PoolMinimum)}}
	case errors.Is(err, model.ErrFreeSpace):
		return &httpError{http.StatusConflict, APIError{CodeFreeSpace, "The free space cannot be changed"}}
	case errors.Is(err, model.ErrGeneratorUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeGeneratorUnavailable, "Option generation is currently unavailable"}}

	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewUnauthorizedError creates an unauthorized error
func NewUnauthorizedError() error {
	return &httpError{http.StatusUnauthorized, APIError{CodeUnauthorized, "A valid session token is required"}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}
