package main

import (
	"os"

	"github.com/AntonStoeckl/library-loans-go/cmd/lending/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
