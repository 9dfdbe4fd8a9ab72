// Package main is the entry point for the dupeclean CLI.
package main

import "github.com/necromindcom/r36s-duplicate-cleaner/cmd"

func main() {
	cmd.Execute()
}
