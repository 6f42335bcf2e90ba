package main

import (
	"os"

	"github.com/harusame/templight/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
