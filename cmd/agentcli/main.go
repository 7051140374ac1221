package main

import (
	"os"

	"github.com/kayky233/AgentCli/internal/interface/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		os.Exit(1)
	}
}
