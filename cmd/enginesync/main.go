// Package main is the entry point for enginesync.
package main

import "github.com/coreforge/enginesync/internal/cli"

func main() {
	cli.Execute()
}
