package commands

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/econviz/diagram-engine/internal/diagram"
)

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the available diagrams",
		RunE: func(cmd *cobra.Command, args []string) error {
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			for _, d := range diagram.All() {
				fmt.Fprintf(tw, "%s\t%s\n", d.Kind(), d.Title())
			}
			return tw.Flush()
		},
	}
}

// fields <kind>: print the parameter fields with their ranges and defaults.
func fieldsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "fields <kind>",
		Short: "Show a diagram's parameters, ranges and defaults",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := lookupKind(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s\n\n%s\n\n", d.Title(), d.Explanation())
			tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tGROUP\tMIN\tMAX\tSTEP\tDEFAULT")
			for _, f := range d.Fields() {
				fmt.Fprintf(tw, "%s\t%s\t%g\t%g\t%g\t%g\n", f.Name, f.Group, f.Min, f.Max, f.Step, f.Default)
			}
			return tw.Flush()
		},
	}
}
