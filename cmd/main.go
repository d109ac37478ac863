package main

import (
	"os"

	"github.com/docsonar/docsonar/cmd/docsonar"
)

func main() {
	if err := docsonar.Execute(); err != nil {
		os.Exit(1)
	}
}
