package main

import (
	"fmt"
	"os"

	"github.com/MuhamadAgungGumelar/clarity-ocr-be/cmd/clarity/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
