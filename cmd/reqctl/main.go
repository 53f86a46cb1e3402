// Package main provides reqctl, a command line front end to the requirements
// engine. It works on requirement documents in files and needs no server.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
