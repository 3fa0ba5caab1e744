// Package main is the entry point for the gentrap-report CLI tool.
package main

import (
	"github.com/biopet/gentrap-report/internal/cmd"
)

func main() {
	cmd.Execute()
}
