package cli

import (
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/georgepadayatti/pdfsig/twophase"
)

// SignatureState is the phase-1 record written next to a prepared document.
// It carries everything the complete command needs to rebuild the prepared
// state in another process.
type SignatureState struct {
	FieldName       string  `json:"field_name"`
	DigestAlgorithm string  `json:"digest_algorithm"`
	Digest          string  `json:"digest"`
	ByteRange       []int64 `json:"byte_range"`
	ContentsStart   int64   `json:"contents_start"`
	ContentsEnd     int64   `json:"contents_end"`
}

// PrepareOptions contains options for the prepare command.
type PrepareOptions struct {
	FieldName       string
	DigestAlgorithm string
	ReservedBytes   int
	StateFile       string
}

// PrepareCommand implements the 'prepare' command.
func PrepareCommand(args []string) {
	prepareFlags := flag.NewFlagSet("prepare", flag.ExitOnError)

	var opts PrepareOptions

	prepareFlags.StringVar(&opts.FieldName, "field", "Signature1", "Name of the signature field")
	prepareFlags.StringVar(&opts.DigestAlgorithm, "digest", "SHA256", "Message digest algorithm")
	prepareFlags.IntVar(&opts.ReservedBytes, "reserve", 0, "Byte budget reserved for the signature (0 uses the default)")
	prepareFlags.StringVar(&opts.StateFile, "state", "", "File to write the signature state to (required)")

	prepareFlags.Usage = func() {
		fmt.Printf("Usage: %s prepare [options] <input> <prepared-output>\n\n", os.Args[0])
		fmt.Println("Prepare a document for external signing. The digest to be signed is")
		fmt.Println("printed and recorded in the state file; sign it externally, then use")
		fmt.Println("the complete command to inject the signature.")
		fmt.Println("")
		fmt.Println("Arguments:")
		fmt.Println("  input            Input file to prepare")
		fmt.Println("  prepared-output  Output file for the prepared document")
		fmt.Println("")
		fmt.Println("Options:")
		prepareFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s prepare -state sig.json input.bin prepared.bin\n", os.Args[0])
		fmt.Printf("  %s prepare -digest SHA512 -reserve 8192 -state sig.json input.bin prepared.bin\n", os.Args[0])
	}

	if err := prepareFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if len(prepareFlags.Args()) < 2 || opts.StateFile == "" {
		prepareFlags.Usage()
		osExit(1)
	}

	inputPath := prepareFlags.Arg(0)
	outputPath := prepareFlags.Arg(1)

	digest, err := prepareDocument(inputPath, outputPath, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	fmt.Printf("Prepared document: %s\n", outputPath)
	fmt.Printf("Digest to sign (%s): %s\n", opts.DigestAlgorithm, digest)
}

// prepareDocument reserves the signature placeholder and writes the prepared
// document and its state file. It returns the hex digest to be signed.
func prepareDocument(inputPath, outputPath string, opts *PrepareOptions) (string, error) {
	content, err := os.ReadFile(inputPath)
	if err != nil {
		return "", fmt.Errorf("failed to read input file: %w", err)
	}

	reserved := opts.ReservedBytes
	if reserved == 0 {
		reserved = twophase.DefaultReservedBytes
	}

	doc := twophase.NewDocument(content)
	signer := twophase.NewSigner(doc)
	defer signer.Close()

	prepared, err := signer.PrepareDocumentForSignature(opts.FieldName, opts.DigestAlgorithm, reserved)
	if err != nil {
		return "", fmt.Errorf("failed to prepare document: %w", err)
	}

	if err := os.WriteFile(outputPath, doc.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write prepared document: %w", err)
	}

	field := doc.Field(opts.FieldName)
	state := &SignatureState{
		FieldName:       prepared.FieldName,
		DigestAlgorithm: prepared.DigestAlgorithm,
		Digest:          hex.EncodeToString(prepared.Digest),
		ByteRange:       prepared.ByteRange,
		ContentsStart:   field.ContentsStart,
		ContentsEnd:     field.ContentsEnd,
	}

	stateData, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}
	if err := os.WriteFile(opts.StateFile, stateData, 0644); err != nil {
		return "", fmt.Errorf("failed to write state file: %w", err)
	}

	return state.Digest, nil
}
