package main

import (
	"os"

	"github.com/sadamiak/doodle/internal/command"
)

func main() {
	if err := command.Execute(); err != nil {
		os.Exit(1)
	}
}
