package main

import (
	"os"

	"github.com/mkock/bootseq/v3/cmd/bootseq/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
