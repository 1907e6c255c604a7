// Package main implements the suitegen CLI, which generates a validation test
// suite from FHIR summary document implementation guides.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
