//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"

	"codeberg.org/snonux/kikitori/internal"
)

const binary = "kikitori"

// Default target to run when none is specified
var Default = Build

// Build compiles the kikitori binary
func Build() error {
	return sh.RunV("go", "build", "-ldflags", "-s -w", "-o", binary, "./cmd/kikitori")
}

// Version prints the release version
func Version() {
	fmt.Println(internal.Version)
}

// Install installs kikitori into GOPATH/bin
func Install() error {
	return sh.RunV("go", "install", "./cmd/kikitori")
}

// Test runs all unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Race runs the tests with the race detector
func Race() error {
	return sh.RunV("go", "test", "-race", "./...")
}

// Vet runs go vet
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the race tests
func Check() {
	mg.SerialDeps(Vet, Race)
}

// Clean removes the built binary
func Clean() error {
	return os.RemoveAll(binary)
}
