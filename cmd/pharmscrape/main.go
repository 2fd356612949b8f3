// Package main is the entry point for the pharmscrape CLI.
package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/jmylchreest/pharmscrape/cmd/pharmscrape/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
