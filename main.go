package main

import (
	"os"

	"github.com/kinjo-energy/kinjo/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
