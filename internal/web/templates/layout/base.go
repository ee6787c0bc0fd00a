package layout

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// PageData holds values shared by every page
type PageData struct {
	Title string
	// Scripts are extra script URLs loaded at the end of the body
	Scripts []string
}

// Base wraps a page body in the document shell
func Base(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := "colorclaim"
		if data.Title != "" {
			title = data.Title + " | colorclaim"
		}

		if _, err := io.WriteString(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1">`+
			`<title>`+templ.EscapeString(title)+`</title></head><body>`+
			`<header><a href="/" class="brand">colorclaim</a></header><main>`); err != nil {
			return err
		}

		if err := body.Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `</main>`); err != nil {
			return err
		}
		for _, src := range data.Scripts {
			if _, err := io.WriteString(w, `<script src="`+templ.EscapeString(src)+`"></script>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}
