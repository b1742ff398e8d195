package main

import (
	"os"

	"github.com/econviz/diagram-engine/cmd/econgraph/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
