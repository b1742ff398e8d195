package commands

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/econviz/diagram-engine/internal/export"
	"github.com/econviz/diagram-engine/internal/render"
)

// render <kind>: draw a diagram to a PNG or SVG file.
func renderCmd() *cobra.Command {
	var (
		params     []string
		format     string
		out        string
		showResult bool
	)
	cmd := &cobra.Command{
		Use:   "render <kind>",
		Short: "Draw a diagram to an image file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			p, err := parseParams(d, params)
			if err != nil {
				return err
			}
			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}
			if out == "" {
				out = export.ImageFilename
				if f == render.FormatSVG {
					out = "economic-graph.svg"
				}
			}

			img, err := export.RenderImage(d, f, width, height, style, p)
			if err != nil {
				return err
			}
			w, err := output(out)
			if err != nil {
				return err
			}
			if _, err := w.Write(img.Data); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			slog.Debug("rendered", "kind", d.Kind(), "format", f, "bytes", len(img.Data), "out", out)

			if showResult {
				enc := json.NewEncoder(os.Stderr)
				enc.SetIndent("", "  ")
				return enc.Encode(img.Result)
			}
			if out != "-" {
				fmt.Fprintf(os.Stderr, "wrote %s\n", out)
			}
			return nil
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "P", nil, "parameter as name=value (repeatable)")
	cmd.Flags().StringVarP(&format, "format", "f", "png", "image format: png or svg")
	cmd.Flags().StringVarP(&out, "output", "o", "", "output file, - for stdout")
	cmd.Flags().BoolVar(&showResult, "result", false, "print the computed figures as JSON on stderr")
	return cmd
}
