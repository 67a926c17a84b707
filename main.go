package main

import (
	"os"

	"github.com/ghaggin/cfptracker/internal/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
