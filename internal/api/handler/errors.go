package handler

import (
	"net/http"

	"github.com/mcoot/colorclaim/internal/api/apierr"
)

// WriteError maps err to its status and error code and writes the JSON error body
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError reports a malformed query or path parameter
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}
