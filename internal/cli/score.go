package cli

import (
	"fmt"
	"image/png"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mcoot/colorclaim/internal/services/scoring"
)

func newScoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "score <file.png>",
		Short: "Score a canvas image locally",
		Long: `Decode a PNG canvas and count its territory-colored pixels the way the
server scores a submitted canvas. Pass "-" to read the image from stdin.

Only exact matches count: purple (128,0,128), red (255,0,0), green (0,255,0)
and blue (0,0,255), all fully opaque.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var r io.Reader = cmd.InOrStdin()
			if args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer func() { _ = f.Close() }()
				r = f
			}

			img, err := png.Decode(r)
			if err != nil {
				return fmt.Errorf("failed to decode PNG: %w", err)
			}

			verdict, err := scoring.New().ScoreImage(img)
			if err != nil {
				return err
			}

			result := ScoreResult{
				File: args[0],
				Text: verdict.Text(),
				Counts: ColorCounts{
					Purple: verdict.Counts.Purple,
					Red:    verdict.Counts.Red,
					Green:  verdict.Counts.Green,
					Blue:   verdict.Counts.Blue,
				},
			}
			if verdict.HasWinner() {
				w := string(verdict.Winner)
				result.Winner = &w
			}

			NewOutput(cfg.Output, cmd.OutOrStdout()).Print(result)
			return nil
		},
	}
}
