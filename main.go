package main

import (
	"os"

	"github.com/nunnai/marketmentor/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
