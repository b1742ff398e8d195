package commands

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/econviz/diagram-engine/internal/config"
	"github.com/econviz/diagram-engine/internal/diagram"
	"github.com/econviz/diagram-engine/internal/model"
)

var (
	width   int
	height  int
	verbose bool
	style   *config.Style
)

func Execute() error {
	root := &cobra.Command{
		Use:          "econgraph",
		Short:        "Draw economics diagrams from the command line",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			if width <= 0 || height <= 0 {
				return fmt.Errorf("canvas size must be positive, got %dx%d", width, height)
			}
			style = config.DefaultStyle()
			return nil
		},
	}

	root.PersistentFlags().IntVar(&width, "width", 800, "canvas width in pixels")
	root.PersistentFlags().IntVar(&height, "height", 500, "canvas height in pixels")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging on stderr")

	root.AddCommand(listCmd(), fieldsCmd(), renderCmd(), csvCmd(), embedCmd(), parseCmd())
	return root.Execute()
}

// lookupKind resolves a diagram from a user-typed name.
func lookupKind(name string) (diagram.Diagram, error) {
	kind, err := diagram.ParseKind(name)
	if err != nil {
		return nil, err
	}
	return diagram.Lookup(kind)
}

// parseParams turns repeated name=value flags into a validated record.
func parseParams(d diagram.Diagram, pairs []string) (model.Params, error) {
	params := make(model.Params, len(pairs))
	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("parameter %q: want name=value", pair)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", pair, err)
		}
		params[strings.TrimSpace(name)] = v
	}
	if err := diagram.Validate(d, params); err != nil {
		return nil, err
	}
	return params, nil
}

// output opens path for writing; "-" or empty means stdout.
func output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(path)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
