package commands

import (
	"github.com/spf13/cobra"

	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/export"
	"github.com/econviz/diagram-engine/internal/render"
)

// csv <kind>: write the parameters and computed figures as CSV.
func csvCmd() *cobra.Command {
	var (
		params []string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "csv <kind>",
		Short: "Export a diagram's parameters and figures as CSV",
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
			res, err := diagram.Render(d, render.NewRecorder(width, height), style, p)
			if err != nil {
				return err
			}
			w, err := output(out)
			if err != nil {
				return err
			}
			if err := export.WriteCSV(w, res); err != nil {
				w.Close()
				return err
			}
			return w.Close()
		},
	}
	cmd.Flags().StringArrayVarP(&params, "param", "P", nil, "parameter as name=value (repeatable)")
	cmd.Flags().StringVarP(&out, "output", "o", "-", "output file, - for stdout")
	return cmd
}
