package main

import (
	"os"

	"github.com/rustyeddy/breaker/cmd/breaker/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
