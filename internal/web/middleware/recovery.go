package middleware

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/colorclaim/internal/middleware"
	"github.com/mcoot/colorclaim/internal/web/templates/layout"
	"github.com/mcoot/colorclaim/internal/web/templates/pages"
)

// Recovery renders the HTML error page when a web handler panics
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, _ any) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)

		page := pages.Error(pages.ErrorData{
			PageData: layout.PageData{Title: "Internal Server Error"},
			Status:   http.StatusInternalServerError,
			Message:  "Something went wrong on our side. Your game session is unaffected.",
		})
		if err := page.Render(r.Context(), w); err != nil {
			logger.Warn("failed to render error page", slog.Any("error", err))
		}
	})
}
