package main

import (
	"fmt"
	"os"

	"github.com/moasq/nanogen/internal/commands"
)

func main() {
	err := commands.Execute()
	commands.SyncLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
