package handler

import (
	"net/http"

	"github.com/mcoot/colorclaim/internal/web/templates/layout"
	"github.com/mcoot/colorclaim/internal/web/templates/pages"
)

// NotFound renders the HTML 404 page for unmatched web routes
func NotFound(w http.ResponseWriter, r *http.Request) {
	renderError(w, r, http.StatusNotFound, "Not Found", "There is nothing here. Rooms are joined from the lobby.")
}

func renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = pages.Error(pages.ErrorData{
		PageData: layout.PageData{Title: title},
		Status:   status,
		Message:  message,
	}).Render(r.Context(), w)
}
