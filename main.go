package main

import (
	"os"

	"github.com/abhisek/eduai/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
