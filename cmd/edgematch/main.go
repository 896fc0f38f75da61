package main

import (
	"embed"
	"os"
)

//go:embed migrations/*.sql
var migrations embed.FS

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
