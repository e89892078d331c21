package main

import (
	"os"

	"github.com/lacasadark/casadark-core/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
