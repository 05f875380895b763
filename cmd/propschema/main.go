package main

import (
	"os"

	"github.com/reoring/propschema/internal/cli/commands"
)

func main() {
	os.Exit(commands.Execute())
}
