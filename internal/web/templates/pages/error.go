package pages

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/mcoot/colorclaim/internal/web/templates/layout"
)

// ErrorData holds data for the error page
type ErrorData struct {
	layout.PageData
	Status  int
	Message string
}

// Error renders a status page with a link back to the lobby
func Error(data ErrorData) templ.Component {
	if data.Title == "" {
		data.Title = "Error"
	}
	return layout.Base(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			`<section id="error" data-status="%d"><h1>%s</h1><p class="message">%s</p><p><a href="/">Back to the lobby</a></p></section>`,
			data.Status, templ.EscapeString(data.Title), templ.EscapeString(data.Message))
		return err
	}))
}
