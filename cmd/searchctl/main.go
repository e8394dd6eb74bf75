// Package main is the entry point for the searchctl CLI tool.
package main

import (
	"os"

	"github.com/altorrainmobiliaria/altorrainmobiliaria.github.io/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
