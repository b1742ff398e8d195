package commands

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/econviz/diagram-engine/internal/export"
)

// embed <kind>: write a self-contained HTML snippet.
func embedCmd() *cobra.Command {
	var (
		params []string
		out    string
	)
	cmd := &cobra.Command{
		Use:   "embed <kind>",
		Short: "Produce an HTML snippet with the image and its parameters",
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
			snippet, _, err := export.EmbedDiagram(d, width, height, style, p)
			if err != nil {
				return err
			}
			w, err := output(out)
			if err != nil {
				return err
			}
			if _, err := io.WriteString(w, snippet+"\n"); err != nil {
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

// parse <file>: recover the diagram kind and parameters from an embed snippet.
func parseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file>",
		Short: "Read the kind and parameters back out of an embed snippet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			kind, params, err := export.ParseEmbed(string(data))
			if err != nil {
				return err
			}
			names := make([]string, 0, len(params))
			for name := range params {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Println(kind)
			for _, name := range names {
				fmt.Printf("  %s=%s\n", name, export.FormatNumber(params[name]))
			}
			return nil
		},
	}
}
