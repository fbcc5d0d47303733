package main

import (
	"os"

	"github.com/stride-lang/stride/cmd/stride/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
