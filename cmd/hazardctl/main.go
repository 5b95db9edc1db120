package main

import (
	"os"

	"github.com/couchcryptid/hazard-engine/cmd/hazardctl/root"
)

func main() {
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
