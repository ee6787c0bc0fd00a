package pages

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/mcoot/colorclaim/internal/model"
	"github.com/mcoot/colorclaim/internal/web/templates/layout"
)

// HomeData holds data for the home page
type HomeData struct {
	layout.PageData
	Lobby model.RoomSnapshot
	Rooms []model.RoomSnapshot
	// WebSocketPath is where the game client connects
	WebSocketPath string
}

// Home renders the entry page: lobby size, open rooms and the game mount point
func Home(data HomeData) templ.Component {
	return layout.Base(data.PageData, templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		fmt.Fprintf(&b, `<section id="lobby"><h1>Lobby</h1><p class="lobby-count">%d in lobby</p></section>`,
			len(data.Lobby.Players))

		b.WriteString(`<section id="rooms"><h2>Rooms</h2>`)
		if len(data.Rooms) == 0 {
			b.WriteString(`<p class="empty">No rooms yet. Create one from the game.</p>`)
		} else {
			b.WriteString(`<table><thead><tr><th>Room</th><th>Phase</th><th>Time left</th><th>Players</th><th></th></tr></thead><tbody>`)
			for _, room := range data.Rooms {
				writeRoomRow(&b, room)
			}
			b.WriteString(`</tbody></table>`)
		}
		b.WriteString(`</section>`)

		fmt.Fprintf(&b, `<div id="game" data-ws="%s"></div>`, templ.EscapeString(data.WebSocketPath))

		_, err := io.WriteString(w, b.String())
		return err
	}))
}

func writeRoomRow(b *strings.Builder, room model.RoomSnapshot) {
	name := string(room.RoomName)
	fmt.Fprintf(b, `<tr class="room" data-room="%s" data-phase="%s">`,
		templ.EscapeString(name), templ.EscapeString(string(room.Phase)))
	fmt.Fprintf(b, `<td class="name">%s</td>`, templ.EscapeString(name))
	fmt.Fprintf(b, `<td class="phase">%s</td>`, templ.EscapeString(string(room.Phase)))
	fmt.Fprintf(b, `<td class="remaining">%ds</td>`, room.RemainingSeconds)
	fmt.Fprintf(b, `<td class="players">%d/%d</td>`, len(room.Players), model.MaxRoomPlayers)
	fmt.Fprintf(b, `<td><a class="spectate" href="/rooms/%s/events">Watch</a></td>`,
		templ.EscapeString(url.PathEscape(name)))
	b.WriteString(`</tr>`)
}
