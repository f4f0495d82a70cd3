package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/georgepadayatti/pdfsig/config"
	"github.com/georgepadayatti/pdfsig/keys"
	"github.com/georgepadayatti/pdfsig/pkcs7"
	"github.com/georgepadayatti/pdfsig/revocation"
	"github.com/georgepadayatti/pdfsig/timestamps"
	"github.com/georgepadayatti/pdfsig/twophase"
)

// SignOptions contains options for the sign command.
type SignOptions struct {
	ConfigFile      string
	Profile         string
	FieldName       string
	DigestAlgorithm string
	SubFilter       string
	ReservedBytes   int
	TSA             string
	NoTimestamp     bool
	Passphrase      string
	PKCS12          bool
	EmbedRevocation bool
}

// SignCommand implements the 'sign' command.
func SignCommand(args []string) {
	signFlags := flag.NewFlagSet("sign", flag.ExitOnError)

	var opts SignOptions

	signFlags.StringVar(&opts.ConfigFile, "config", "", "Configuration file with signing profiles")
	signFlags.StringVar(&opts.Profile, "profile", "", "Signing profile name (requires -config)")
	signFlags.StringVar(&opts.FieldName, "field", "Signature1", "Name of the signature field")
	signFlags.StringVar(&opts.DigestAlgorithm, "digest", "SHA256", "Message digest algorithm")
	signFlags.StringVar(&opts.SubFilter, "subfilter", "adbe.pkcs7.detached", "Signature profile: adbe.pkcs7.detached, ETSI.CAdES.detached")
	signFlags.IntVar(&opts.ReservedBytes, "reserve", 0, "Byte budget reserved for the signature (0 uses the default)")
	signFlags.StringVar(&opts.TSA, "tsa", "", "URL for Time-Stamp Authority")
	signFlags.BoolVar(&opts.NoTimestamp, "no-timestamp", false, "Skip adding a timestamp to the signature")
	signFlags.StringVar(&opts.Passphrase, "passphrase", "", "Passphrase for the private key or PKCS#12 file")
	signFlags.BoolVar(&opts.PKCS12, "p12", false, "Load the credential from a PKCS#12 file instead of PEM/DER cert and key")
	signFlags.BoolVar(&opts.EmbedRevocation, "embed-revocation", false, "Fetch and embed OCSP data for the signing certificate")

	signFlags.Usage = func() {
		fmt.Printf("Usage: %s sign [options] <input> <output> [<certificate.pem> <private_key.pem> [chain.pem]]\n\n", os.Args[0])
		fmt.Println("Sign a document with a digital signature.")
		fmt.Println("")
		fmt.Println("Arguments:")
		fmt.Println("  input            Input file to sign")
		fmt.Println("  output           Output file for the signed document")
		fmt.Println("  certificate.pem  Signing certificate (PEM or DER format, or PKCS#12 with -p12)")
		fmt.Println("  private_key.pem  Private key for signing (PEM or DER format, omit with -p12)")
		fmt.Println("  chain.pem        Optional certificate chain (PEM format)")
		fmt.Println("")
		fmt.Println("Options:")
		signFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s sign input.bin output.bin cert.pem key.pem\n", os.Args[0])
		fmt.Printf("  %s sign -subfilter ETSI.CAdES.detached input.bin output.bin cert.pem key.pem chain.pem\n", os.Args[0])
		fmt.Printf("  %s sign -p12 -passphrase secret input.bin output.bin bundle.p12\n", os.Args[0])
		fmt.Printf("  %s sign -config pdfsig.yaml -profile cades input.bin output.bin\n", os.Args[0])
	}

	if err := signFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if len(signFlags.Args()) < 2 {
		signFlags.Usage()
		osExit(1)
	}

	inputPath := signFlags.Arg(0)
	outputPath := signFlags.Arg(1)

	cred, err := loadSignCredential(signFlags.Args()[2:], &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	if err := signDocument(inputPath, outputPath, cred, &opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	fmt.Printf("Successfully signed document: %s\n", outputPath)
}

// loadSignCredential resolves the signing credential either from a
// configuration profile or from positional certificate and key arguments.
// A profile also fills in the unset signing options.
func loadSignCredential(credArgs []string, opts *SignOptions) (*keys.SigningCredential, error) {
	if opts.ConfigFile != "" {
		cfg, err := config.LoadConfig(opts.ConfigFile)
		if err != nil {
			return nil, err
		}
		profile, err := cfg.Profile(opts.Profile)
		if err != nil {
			return nil, err
		}
		if err := profile.Validate(); err != nil {
			return nil, err
		}
		applyProfile(profile, opts)

		keySet, err := cfg.KeySet(profile.KeySet)
		if err != nil {
			return nil, err
		}
		return keySet.Load()
	}

	if len(credArgs) < 1 {
		return nil, fmt.Errorf("certificate argument is required without -config")
	}

	if opts.PKCS12 {
		return keys.LoadPKCS12(credArgs[0], opts.Passphrase)
	}

	if len(credArgs) < 2 {
		return nil, fmt.Errorf("private key argument is required without -p12")
	}

	var passphrase []byte
	if opts.Passphrase != "" {
		passphrase = []byte(opts.Passphrase)
	}
	cred, err := keys.LoadSigningCredential(credArgs[0], credArgs[1], passphrase)
	if err != nil {
		return nil, err
	}

	if len(credArgs) > 2 {
		chain, err := keys.LoadCertsFromPemDer(credArgs[2])
		if err != nil {
			return nil, fmt.Errorf("failed to load certificate chain: %w", err)
		}
		cred.CACerts = append(cred.CACerts, chain...)
	}

	return cred, nil
}

// applyProfile copies profile settings into the signing options. The profile
// decides digest and subfilter; reservation, TSA and revocation settings keep
// explicitly set flag values.
func applyProfile(profile *config.ProfileConfig, opts *SignOptions) {
	opts.DigestAlgorithm = profile.GetDigestAlgorithm()
	if profile.SubFilter != "" {
		opts.SubFilter = profile.SubFilter
	}
	if opts.ReservedBytes == 0 {
		opts.ReservedBytes = profile.GetReservedBytes()
	}
	if profile.Timestamp != nil && opts.TSA == "" {
		opts.TSA = profile.Timestamp.URL
	}
	if profile.EmbedRevocationInfo {
		opts.EmbedRevocation = true
	}
}

// signDocument performs the actual signing.
func signDocument(inputPath, outputPath string, cred *keys.SigningCredential, opts *SignOptions) error {
	flavor, err := pkcs7.ParseSubFilter(opts.SubFilter)
	if err != nil {
		return err
	}
	if flavor != pkcs7.SubFilterAdbePKCS7Detached && flavor != pkcs7.SubFilterETSICAdESDetached {
		return fmt.Errorf("subfilter %s is not supported by the sign command", opts.SubFilter)
	}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("failed to read input file: %w", err)
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
		return fmt.Errorf("failed to prepare document: %w", err)
	}

	container, err := pkcs7.NewSigner(cred.PrivateKey, cred.Chain(), opts.DigestAlgorithm, false)
	if err != nil {
		return fmt.Errorf("failed to create signature container: %w", err)
	}

	var tsa pkcs7.TimestampClient
	if !opts.NoTimestamp && opts.TSA != "" {
		tsa = timestamps.NewHTTPTSAClient(opts.TSA)
	}

	var ocsps [][]byte
	if opts.EmbedRevocation && len(cred.CACerts) > 0 {
		client := revocation.NewOnlineOCSPClient(revocation.DefaultFetcherConfig())
		ocsps, err = client.GetEncodedResponses(cred.Certificate, cred.CACerts[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: OCSP fetch failed: %v\n", err)
		}
	}

	encoded, err := container.Encode(prepared.Digest, tsa, ocsps, nil, flavor)
	if err != nil {
		return fmt.Errorf("failed to encode signature: %w", err)
	}

	outputFile, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer outputFile.Close()

	if err := twophase.AddSignatureToPreparedDocument(doc, opts.FieldName, outputFile, encoded); err != nil {
		return fmt.Errorf("failed to write signature: %w", err)
	}

	return nil
}
