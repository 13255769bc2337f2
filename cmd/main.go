package main

import (
	"os"

	"github.com/Atharva587/MultiplayerQuizNew/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
