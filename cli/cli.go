// Package cli provides the command-line interface for signing and verifying
// byte-range documents.
package cli

import (
	"fmt"
	"os"
)

// Version information
var (
	Version   = "dev"
	BuildTime = "unknown"
)

// osExit is a variable for os.Exit to allow testing
var osExit = os.Exit

// Run executes the CLI with the given arguments.
// This is the main entry point for the CLI.
func Run(args []string) {
	if len(args) < 2 {
		Usage()
		return
	}

	command := args[1]

	switch command {
	case "sign":
		SignCommand(args)
	case "verify":
		VerifyCommand(args)
	case "prepare":
		PrepareCommand(args)
	case "complete":
		CompleteCommand(args)
	case "version":
		VersionCommand()
	case "help", "-h", "--help":
		Usage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		Usage()
	}
}

// Usage prints the CLI usage information.
func Usage() {
	fmt.Printf("pdfsig - digital signature tool for byte-range documents\n\n")
	fmt.Printf("Usage: %s <command> [options] <args>\n\n", os.Args[0])
	fmt.Println("Commands:")
	fmt.Println("  sign      Sign a document with a local private key")
	fmt.Println("  verify    Verify the digital signature of a document")
	fmt.Println("  prepare   Prepare a document for external signing (phase 1)")
	fmt.Println("  complete  Inject an externally produced signature (phase 2)")
	fmt.Println("  version   Show version information")
	fmt.Println("  help      Show this help message")
	fmt.Println("")
	fmt.Printf("Use '%s <command> -h' for command-specific help\n", os.Args[0])
	fmt.Println("")
	fmt.Println("Examples:")
	fmt.Printf("  %s sign input.bin output.bin cert.pem key.pem\n", os.Args[0])
	fmt.Printf("  %s verify output.bin\n", os.Args[0])
	fmt.Printf("  %s prepare -state sig.json input.bin prepared.bin\n", os.Args[0])
	fmt.Printf("  %s complete -state sig.json prepared.bin signature.der cert.pem output.bin\n", os.Args[0])
}

// VersionCommand prints version information.
func VersionCommand() {
	fmt.Printf("pdfsig version %s\n", Version)
	fmt.Printf("Build time: %s\n", BuildTime)
}
