package cli

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/georgepadayatti/pdfsig/keys"
	"github.com/georgepadayatti/pdfsig/pkcs7"
	"github.com/georgepadayatti/pdfsig/timestamps"
	"github.com/georgepadayatti/pdfsig/twophase"
)

// CompleteOptions contains options for the complete command.
type CompleteOptions struct {
	StateFile    string
	KeyAlgorithm string
	SubFilter    string
	TSA          string
	Container    bool
}

// CompleteCommand implements the 'complete' command.
func CompleteCommand(args []string) {
	completeFlags := flag.NewFlagSet("complete", flag.ExitOnError)

	var opts CompleteOptions

	completeFlags.StringVar(&opts.StateFile, "state", "", "State file written by the prepare command (required)")
	completeFlags.StringVar(&opts.KeyAlgorithm, "key-algorithm", "RSA", "Algorithm of the external signing key: RSA, DSA or ECDSA")
	completeFlags.StringVar(&opts.SubFilter, "subfilter", "adbe.pkcs7.detached", "Signature profile: adbe.pkcs7.detached, ETSI.CAdES.detached")
	completeFlags.StringVar(&opts.TSA, "tsa", "", "URL for Time-Stamp Authority")
	completeFlags.BoolVar(&opts.Container, "container", false, "The signature file is a complete CMS container, not a bare signature value")

	completeFlags.Usage = func() {
		fmt.Printf("Usage: %s complete [options] <prepared> <signature> <certificate.pem> <output>\n", os.Args[0])
		fmt.Printf("       %s complete -container [options] <prepared> <signature> <output>\n\n", os.Args[0])
		fmt.Println("Inject an externally produced signature into a prepared document.")
		fmt.Println("")
		fmt.Println("Arguments:")
		fmt.Println("  prepared         Prepared document written by the prepare command")
		fmt.Println("  signature        Externally produced signature value (raw bytes)")
		fmt.Println("  certificate.pem  Certificate chain of the external signer")
		fmt.Println("  output           Output file for the completed document")
		fmt.Println("")
		fmt.Println("Options:")
		completeFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s complete -state sig.json prepared.bin signature.der cert.pem output.bin\n", os.Args[0])
		fmt.Printf("  %s complete -state sig.json -key-algorithm ECDSA prepared.bin signature.der cert.pem output.bin\n", os.Args[0])
		fmt.Printf("  %s complete -state sig.json -container prepared.bin container.der output.bin\n", os.Args[0])
	}

	if err := completeFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	minArgs := 4
	if opts.Container {
		minArgs = 3
	}
	if len(completeFlags.Args()) < minArgs || opts.StateFile == "" {
		completeFlags.Usage()
		osExit(1)
	}

	var outputPath string
	if opts.Container {
		outputPath = completeFlags.Arg(2)
	} else {
		outputPath = completeFlags.Arg(3)
	}

	if err := completeDocument(completeFlags.Args(), outputPath, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	fmt.Printf("Successfully completed document: %s\n", outputPath)
}

// completeDocument rebuilds the prepared document from the state file and
// injects the signature.
func completeDocument(argv []string, outputPath string, opts *CompleteOptions) error {
	state, err := loadState(opts.StateFile)
	if err != nil {
		return err
	}

	content, err := os.ReadFile(argv[0])
	if err != nil {
		return fmt.Errorf("failed to read prepared document: %w", err)
	}

	signature, err := os.ReadFile(argv[1])
	if err != nil {
		return fmt.Errorf("failed to read signature file: %w", err)
	}

	field := &twophase.SignatureField{
		Name:          state.FieldName,
		ContentsStart: state.ContentsStart,
		ContentsEnd:   state.ContentsEnd,
		ByteRange:     state.ByteRange,
	}
	doc, err := twophase.RestoreDocument(content, []*twophase.SignatureField{field})
	if err != nil {
		return fmt.Errorf("failed to restore prepared document: %w", err)
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	if opts.Container {
		return twophase.AddSignatureToPreparedDocument(doc, state.FieldName, outputFile, signature)
	}

	// A bare signature value is a signature over the byte-range digest
	// itself, so the container is encoded without authenticated attributes.
	// Profiles that mandate signed attributes need a complete CMS container
	// produced by the external signer (-container mode).
	flavor, err := pkcs7.ParseSubFilter(opts.SubFilter)
	if err != nil {
		return err
	}
	if flavor != pkcs7.SubFilterAdbePKCS7Detached {
		return fmt.Errorf("subfilter %s requires -container; a bare signature value only supports %s",
			flavor, pkcs7.SubFilterAdbePKCS7Detached)
	}

	chain, err := keys.LoadCertsFromPemDer(argv[2])
	if err != nil {
		return fmt.Errorf("failed to load certificate chain: %w", err)
	}

	container, err := pkcs7.NewSigner(nil, chain, state.DigestAlgorithm, false)
	if err != nil {
		return fmt.Errorf("failed to create signature container: %w", err)
	}
	if err := container.SetExternalSignatureValue(signature, nil, opts.KeyAlgorithm); err != nil {
		return fmt.Errorf("failed to set external signature: %w", err)
	}

	var tsa pkcs7.TimestampClient
	if opts.TSA != "" {
		tsa = timestamps.NewHTTPTSAClient(opts.TSA)
	}

	encoded, err := container.Encode(nil, tsa, nil, nil, flavor)
	if err != nil {
		return fmt.Errorf("failed to encode signature: %w", err)
	}

	return twophase.AddSignatureToPreparedDocument(doc, state.FieldName, outputFile, encoded)
}

// loadState reads the phase-1 state record.
func loadState(path string) (*SignatureState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read state file: %w", err)
	}
	var state SignatureState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("failed to parse state file: %w", err)
	}
	if state.FieldName == "" || len(state.ByteRange) != 4 {
		return nil, fmt.Errorf("state file is incomplete")
	}
	return &state, nil
}
