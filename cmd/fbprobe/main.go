package main

import (
	"os"

	_ "github.com/nakagami/firebirdsql"

	"github.com/syssam/velox-firebird/cmd/fbprobe/app"
)

func main() {
	if err := app.NewCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
