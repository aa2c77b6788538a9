// Package main is the entry point for the muton CLI.
package main

import "muton.dev/pkg/muton/cmd"

func main() {
	cmd.Execute()
}
