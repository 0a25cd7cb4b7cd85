package main

import (
	"os"

	"github.com/goliatone/go-carprice/cmd/carprice/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
