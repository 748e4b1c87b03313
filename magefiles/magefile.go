//go:build mage

// Package main provides build targets for leadfunnel using Mage.
//
// Usage:
//
//	mage build      Compile the funnel binary to bin/
//	mage test       Run all tests
//	mage cover      Run tests with a coverage profile in bin/
//	mage lint       Run golangci-lint
//	mage clean      Remove build artifacts
//	mage install    Install funnel to GOPATH/bin
//	mage serve      Build and run the local HTTP server
package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "funnel"
	binaryDir  = "bin"
	cmdDir     = "./cmd/funnel"
	versionVar = "github.com/mesh-intelligence/leadfunnel/internal/cli.Version"
)

// ldflags stamps the version from the nearest git tag when one exists.
func ldflags() string {
	version, err := sh.Output("git", "describe", "--tags", "--always", "--dirty")
	if err != nil || strings.TrimSpace(version) == "" {
		return ""
	}
	return "-X " + versionVar + "=" + strings.TrimPrefix(strings.TrimSpace(version), "v")
}

// Build compiles the funnel binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	args := []string{"build", "-v", "-o", filepath.Join(binaryDir, binaryName)}
	if flags := ldflags(); flags != "" {
		args = append(args, "-ldflags", flags)
	}
	return sh.RunV(binGo, append(args, cmdDir)...)
}

// Test runs all tests.
func Test() error {
	return sh.RunV(binGo, "test", "./...")
}

// Cover runs all tests and writes bin/coverage.out.
func Cover() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	profile := filepath.Join(binaryDir, "coverage.out")
	if err := sh.RunV(binGo, "test", "-coverprofile", profile, "./..."); err != nil {
		return err
	}
	return sh.RunV(binGo, "tool", "cover", "-func", profile)
}

// Lint runs golangci-lint.
func Lint() error {
	return sh.RunV("golangci-lint", "run", "./...")
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}

// Serve builds the binary and runs the local HTTP server in the foreground.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(filepath.Join(binaryDir, binaryName), "serve")
}
