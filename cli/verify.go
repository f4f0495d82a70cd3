package cli

import (
	"crypto/x509"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/ocsp"

	"github.com/georgepadayatti/pdfsig/keys"
	"github.com/georgepadayatti/pdfsig/pkcs7"
	"github.com/georgepadayatti/pdfsig/revocation"
	"github.com/georgepadayatti/pdfsig/twophase"
)

// VerifyOptions contains options for the verify command.
type VerifyOptions struct {
	FieldName       string
	SubFilter       string
	CertsFile       string
	TrustRootsFile  string
	CheckRevocation bool
	Online          bool
	JSON            bool
	Verbose         bool
}

// VerifyCommand implements the 'verify' command.
func VerifyCommand(args []string) {
	verifyFlags := flag.NewFlagSet("verify", flag.ExitOnError)

	var opts VerifyOptions

	verifyFlags.StringVar(&opts.FieldName, "field", "Signature1", "Name of the signature field")
	verifyFlags.StringVar(&opts.SubFilter, "subfilter", "adbe.pkcs7.detached", "Signature profile the document was signed with")
	verifyFlags.StringVar(&opts.CertsFile, "certs", "", "Certificate file for legacy adbe.x509.rsa_sha1 signatures")
	verifyFlags.StringVar(&opts.TrustRootsFile, "trust-roots", "", "File containing trusted root certificates (PEM format)")
	verifyFlags.BoolVar(&opts.CheckRevocation, "check-revocation", false, "Check the signer certificate against embedded revocation data")
	verifyFlags.BoolVar(&opts.Online, "online", false, "Allow online OCSP and CRL fetching when no embedded data is usable")
	verifyFlags.BoolVar(&opts.JSON, "json", false, "Output results in JSON format")
	verifyFlags.BoolVar(&opts.Verbose, "verbose", false, "Show detailed validation information")

	verifyFlags.Usage = func() {
		fmt.Printf("Usage: %s verify [options] <input>\n\n", os.Args[0])
		fmt.Println("Verify the digital signature of a document.")
		fmt.Println("")
		fmt.Println("Arguments:")
		fmt.Println("  input  Signed file to verify")
		fmt.Println("")
		fmt.Println("Options:")
		verifyFlags.PrintDefaults()
		fmt.Println("")
		fmt.Println("Examples:")
		fmt.Printf("  %s verify output.bin\n", os.Args[0])
		fmt.Printf("  %s verify -json output.bin\n", os.Args[0])
		fmt.Printf("  %s verify -check-revocation -trust-roots trusted-cas.pem output.bin\n", os.Args[0])
	}

	if err := verifyFlags.Parse(args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error parsing flags: %v\n", err)
		osExit(1)
	}

	if len(verifyFlags.Args()) < 1 {
		verifyFlags.Usage()
		osExit(1)
	}

	inputPath := verifyFlags.Arg(0)

	result, err := verifyDocument(inputPath, &opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		osExit(1)
	}

	if opts.JSON {
		outputJSON(result)
	} else {
		outputText(result, opts.Verbose)
	}

	if result.Status == "INVALID" {
		osExit(1)
	}
}

// VerifyResult is a JSON-serializable verification result.
type VerifyResult struct {
	FieldName       string           `json:"field_name"`
	Status          string           `json:"status"`
	IntegrityValid  bool             `json:"integrity_valid"`
	TrustValid      bool             `json:"trust_valid,omitempty"`
	SignerName      string           `json:"signer_name,omitempty"`
	DigestAlgorithm string           `json:"digest_algorithm,omitempty"`
	SigningTime     string           `json:"signing_time,omitempty"`
	TimestampTime   string           `json:"timestamp_time,omitempty"`
	SubFilter       string           `json:"sub_filter"`
	Certificate     *CertificateInfo `json:"certificate,omitempty"`
	Revocation      *RevocationInfo  `json:"revocation,omitempty"`
	Errors          []string         `json:"errors,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
}

// CertificateInfo contains certificate information for JSON output.
type CertificateInfo struct {
	Subject   string `json:"subject"`
	Issuer    string `json:"issuer"`
	Serial    string `json:"serial"`
	NotBefore string `json:"not_before"`
	NotAfter  string `json:"not_after"`
	IsExpired bool   `json:"is_expired"`
}

// RevocationInfo contains revocation information for JSON output.
type RevocationInfo struct {
	Result string   `json:"result"`
	Items  []string `json:"items,omitempty"`
}

// verifyDocument performs the actual verification.
func verifyDocument(inputPath string, opts *VerifyOptions) (*VerifyResult, error) {
	flavor, err := pkcs7.ParseSubFilter(opts.SubFilter)
	if err != nil {
		return nil, err
	}

	content, err := os.ReadFile(inputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	field, signature, err := twophase.FindLastSignatureField(opts.FieldName, content)
	if err != nil {
		return nil, err
	}

	container, err := parseContainer(signature, flavor, opts)
	if err != nil {
		return nil, err
	}

	container.Update(content[:field.ByteRange[1]])
	container.Update(content[field.ByteRange[2] : field.ByteRange[2]+field.ByteRange[3]])

	result := &VerifyResult{
		FieldName:       field.Name,
		SubFilter:       flavor.String(),
		DigestAlgorithm: container.DigestAlgorithmName(),
	}

	valid, err := container.VerifySignatureIntegrityAndAuthenticity()
	result.IntegrityValid = valid
	if err != nil {
		result.Errors = append(result.Errors, err.Error())
	}

	if cert := container.SigningCertificate(); cert != nil {
		result.SignerName = cert.Subject.CommonName
		result.Certificate = &CertificateInfo{
			Subject:   cert.Subject.String(),
			Issuer:    cert.Issuer.String(),
			Serial:    cert.SerialNumber.String(),
			NotBefore: cert.NotBefore.Format(time.RFC3339),
			NotAfter:  cert.NotAfter.Format(time.RFC3339),
			IsExpired: time.Now().After(cert.NotAfter),
		}
	}

	if t := container.SigningTime(); !t.IsZero() {
		result.SigningTime = t.Format(time.RFC3339)
	}
	if t, err := container.TimestampTime(); err == nil && !t.IsZero() {
		result.TimestampTime = t.Format(time.RFC3339)
	}

	trustValid := true
	if opts.TrustRootsFile != "" {
		trustValid, err = verifyTrust(container, opts.TrustRootsFile)
		result.TrustValid = trustValid
		if err != nil {
			result.Errors = append(result.Errors, err.Error())
		}
	}

	revocationValid := true
	if opts.CheckRevocation {
		report, err := checkRevocation(container, opts)
		if err != nil {
			result.Warnings = append(result.Warnings, err.Error())
		} else {
			info := &RevocationInfo{Result: report.ValidationResult().String()}
			for _, item := range report.Items() {
				info.Items = append(info.Items, item.String())
			}
			result.Revocation = info
			revocationValid = report.ValidationResult() != revocation.ResultInvalid
		}
	}

	switch {
	case !valid || !trustValid || !revocationValid:
		result.Status = "INVALID"
	case len(result.Warnings) > 0:
		result.Status = "WARNING"
	default:
		result.Status = "VALID"
	}

	return result, nil
}

// parseContainer decodes the signature bytes, using the external certificate
// file for the legacy bare PKCS#1 form.
func parseContainer(signature []byte, flavor pkcs7.SubFilter, opts *VerifyOptions) (*pkcs7.SignatureContainer, error) {
	if flavor == pkcs7.SubFilterAdbeX509RSASHA1 {
		if opts.CertsFile == "" {
			return nil, fmt.Errorf("subfilter %s requires -certs", flavor)
		}
		certs, err := keys.LoadCertsFromPemDer(opts.CertsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load certificates: %w", err)
		}
		return pkcs7.ParseLegacy(signature, certs)
	}
	return pkcs7.Parse(signature, flavor)
}

// verifyTrust chains the signing certificate up to the given roots.
func verifyTrust(container *pkcs7.SignatureContainer, trustRootsFile string) (bool, error) {
	roots, err := keys.LoadCertsFromPemDer(trustRootsFile)
	if err != nil {
		return false, fmt.Errorf("failed to load trusted roots: %w", err)
	}
	rootPool := x509.NewCertPool()
	for _, root := range roots {
		rootPool.AddCert(root)
	}

	intermediates := x509.NewCertPool()
	for _, cert := range container.Certificates() {
		intermediates.AddCert(cert)
	}

	cert := container.SigningCertificate()
	if cert == nil {
		return false, fmt.Errorf("no signing certificate in the signature")
	}

	_, err = cert.Verify(x509.VerifyOptions{
		Roots:         rootPool,
		Intermediates: intermediates,
		KeyUsages:     []x509.ExtKeyUsage{x509.ExtKeyUsageAny},
	})
	if err != nil {
		return false, fmt.Errorf("certificate chain not trusted: %w", err)
	}
	return true, nil
}

// checkRevocation validates the signer certificate against the revocation
// data embedded in the signature, falling back to online fetching when
// allowed.
func checkRevocation(container *pkcs7.SignatureContainer, opts *VerifyOptions) (*revocation.ValidationReport, error) {
	cert := container.SigningCertificate()
	if cert == nil {
		return nil, fmt.Errorf("no signing certificate in the signature")
	}

	var issuer *x509.Certificate
	if chain := container.SignatureChain(); len(chain) > 1 {
		issuer = chain[1]
	}

	validationTime := time.Now()
	context := revocation.ContextPresent
	if t, err := container.TimestampTime(); err == nil && !t.IsZero() {
		validationTime = t
		context = revocation.ContextHistorical
	}

	ocspClient := revocation.NewValidationOCSPClient()
	for _, raw := range container.OCSPResponses() {
		resp, err := ocsp.ParseResponse(raw, nil)
		if err != nil {
			continue
		}
		ocspClient.AddResponse(resp, raw, validationTime, context)
	}

	crlClient := revocation.NewValidationCRLClient()
	for _, raw := range container.CRLs() {
		list, err := x509.ParseRevocationList(raw)
		if err != nil {
			continue
		}
		crlClient.AddCRL(list, raw, validationTime, context)
	}

	fetching := revocation.FetchNever
	if opts.Online {
		fetching = revocation.FetchIfNoOtherDataAvailable
	}

	validator := revocation.NewValidator().
		AddOCSPClient(ocspClient).
		AddCRLClient(crlClient).
		WithOnlineFetching(fetching)

	report := revocation.NewValidationReport()
	validator.Validate(report, cert, issuer, revocation.SourceSigner, validationTime)
	return report, nil
}

// outputJSON outputs the result in JSON format.
func outputJSON(result *VerifyResult) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		osExit(1)
	}
}

// outputText outputs the result in human-readable text format.
func outputText(result *VerifyResult, verbose bool) {
	fmt.Printf("Signature Verification Results\n")
	fmt.Printf("==============================\n\n")

	statusIcon := getStatusIcon(result.Status)
	fmt.Printf("  Status: %s %s\n", statusIcon, result.Status)
	fmt.Printf("  Field: %s\n", result.FieldName)
	fmt.Printf("  Integrity: %s\n", boolToStatus(result.IntegrityValid))
	fmt.Printf("  SubFilter: %s\n", result.SubFilter)

	if result.DigestAlgorithm != "" {
		fmt.Printf("  Digest: %s\n", result.DigestAlgorithm)
	}
	if result.SignerName != "" {
		fmt.Printf("  Signer: %s\n", result.SignerName)
	}
	if result.SigningTime != "" {
		fmt.Printf("  Signing Time: %s\n", result.SigningTime)
	}
	if result.TimestampTime != "" {
		fmt.Printf("  Timestamp: %s\n", result.TimestampTime)
	}

	if verbose && result.Certificate != nil {
		fmt.Printf("\n  Certificate Details:\n")
		fmt.Printf("    Subject: %s\n", result.Certificate.Subject)
		fmt.Printf("    Issuer: %s\n", result.Certificate.Issuer)
		fmt.Printf("    Serial: %s\n", result.Certificate.Serial)
		fmt.Printf("    Valid: %s to %s\n", result.Certificate.NotBefore, result.Certificate.NotAfter)
		if result.Certificate.IsExpired {
			fmt.Printf("    WARNING: Certificate is expired!\n")
		}
	}

	if result.Revocation != nil {
		fmt.Printf("\n  Revocation Status: %s\n", result.Revocation.Result)
		if verbose {
			for _, item := range result.Revocation.Items {
				fmt.Printf("    - %s\n", item)
			}
		}
	}

	if len(result.Errors) > 0 {
		fmt.Printf("\n  Errors:\n")
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Printf("\n  Warnings:\n")
		for _, w := range result.Warnings {
			fmt.Printf("    - %s\n", w)
		}
	}

	fmt.Println()
}

// getStatusIcon returns an icon for the status.
func getStatusIcon(status string) string {
	switch status {
	case "VALID":
		return "[OK]"
	case "INVALID":
		return "[FAIL]"
	case "WARNING":
		return "[WARN]"
	default:
		return "[?]"
	}
}

// boolToStatus converts a boolean to a status string.
func boolToStatus(b bool) string {
	if b {
		return "OK"
	}
	return "FAILED"
}
