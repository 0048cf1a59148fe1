package main

import (
	"os"

	"github.com/BrettMS9/multibagger/cmd/multibagger/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
