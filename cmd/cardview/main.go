package main

import (
	"os"

	"github.com/cardview-dev/cardview/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
