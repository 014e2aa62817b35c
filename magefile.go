//go:build mage

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binary  = "babelfish"
	mainPkg = "./cmd/babelfish"
)

// Default target when running plain "mage"
var Default = Build

// Build compiles the babelfish binary
func Build() error {
	fmt.Println("Building", binary)
	return sh.RunV("go", "build", "-o", binary, mainPkg)
}

// Test runs the unit tests
func Test() error {
	return sh.RunV("go", "test", "./...")
}

// Vet runs go vet over all packages
func Vet() error {
	return sh.RunV("go", "vet", "./...")
}

// Check runs vet and the tests
func Check() {
	mg.SerialDeps(Vet, Test)
}

// Install builds and installs babelfish into GOPATH/bin
func Install() error {
	mg.Deps(Build)
	return sh.RunV("go", "install", mainPkg)
}

// Clean removes build output
func Clean() error {
	fmt.Println("Cleaning")
	return os.RemoveAll(binary)
}
