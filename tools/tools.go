//go:build tools
// +build tools

// Package tools documents development tool dependencies.
// Tools are installed with `go install` and are not tracked in go.mod.
package tools

// Development tools:
//
// Air - rebuilds and restarts sandbox-console on source changes. Combine with
// DEV=true so templates and static files are read from disk.
//   Install: go install github.com/air-verse/air@v1.63.0
//   Run:     air --build.cmd "go build -o ./tmp/sandbox-console ./cmd/sandbox-console" --build.bin ./tmp/sandbox-console
//
// mockgen - regenerates internal/mocks. go.uber.org/mock is already a module
// dependency, so `go generate ./internal/mocks` needs no separate install.
