package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/services/gateway"
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
	CodeInvalidRoomName    = "INVALID_ROOM_NAME"
	CodeInvalidBuffer      = "INVALID_BUFFER"
	CodePlayerNotFound     = "PLAYER_NOT_FOUND"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomExists         = "ROOM_EXISTS"
	CodeRoomFull           = "ROOM_FULL"
	CodeRoomNotAccepting   = "ROOM_NOT_ACCEPTING"
	CodeResultNotFound     = "RESULT_NOT_FOUND"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
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

// StatusOf returns the HTTP status an error maps to
func StatusOf(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrPlayerNotFound):
		return &httpError{http.StatusNotFound, APIError{CodePlayerNotFound, "Player not found"}}
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrResultNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeResultNotFound, "No result recorded for this room"}}
	case errors.Is(err, model.ErrRoomExists):
		return &httpError{http.StatusConflict, APIError{CodeRoomExists, "Room already exists"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room is full"}}
	case errors.Is(err, model.ErrRoomNotAccepting):
		return &httpError{http.StatusConflict, APIError{CodeRoomNotAccepting, "Room is not accepting more players"}}
	case errors.Is(err, model.ErrInvalidRoomName):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRoomName, "Room name must not be empty"}}
	case errors.Is(err, model.ErrInvalidBuffer):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidBuffer, "Invalid pixel buffer"}}
	case errors.Is(err, gateway.ErrStopped):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeServiceUnavailable, "Server is shutting down"}}

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
