// Command pdfsig is a CLI tool for signing and verifying byte-range
// documents.
//
// Usage:
//
//	pdfsig <command> [options] <args>
//
// Commands:
//
//	sign      Sign a document with a local private key
//	verify    Verify the digital signature of a document
//	prepare   Prepare a document for external signing (phase 1)
//	complete  Inject an externally produced signature (phase 2)
//	version   Show version information
//	help      Show help message
//
// Examples:
//
//	# Sign a document
//	pdfsig sign input.bin output.bin cert.pem key.pem
//
//	# Verify a document
//	pdfsig verify output.bin
//
//	# Two-phase signing with an external key
//	pdfsig prepare -state sig.json input.bin prepared.bin
//	pdfsig complete -state sig.json prepared.bin signature.der cert.pem output.bin
package main

import (
	"os"

	"github.com/georgepadayatti/pdfsig/cli"
)

// These variables are set at build time using ldflags:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/pdfsig
var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	// Set version info
	cli.Version = version
	cli.BuildTime = buildTime

	// Run the CLI
	cli.Run(os.Args)
}
