package main

import (
	"os"

	"github.com/hkr-team/assessment-engine/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
