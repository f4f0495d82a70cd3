package config

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/georgepadayatti/pdfsig/pkcs7"
	"github.com/georgepadayatti/pdfsig/revocation"
	"github.com/georgepadayatti/pdfsig/twophase"
)

func TestNewConfigError(t *testing.T) {
	err := NewConfigError("field", "message")
	if err.Field != "field" {
		t.Errorf("Expected field 'field', got '%s'", err.Field)
	}
	if err.Message != "message" {
		t.Errorf("Expected message 'message', got '%s'", err.Message)
	}

	expected := "config error in 'field': message"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}
}

func TestConfigErrorWithoutField(t *testing.T) {
	err := NewConfigError("", "general error")
	expected := "config error: general error"
	if err.Error() != expected {
		t.Errorf("Expected '%s', got '%s'", expected, err.Error())
	}
}

func TestOIDRegex(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1.2.3.4", true},
		{"1.2.840.113549.1.1.1", true},
		{"2.5.4.3", true},
		{"1.2", true},
		{"1", false},
		{"abc", false},
		{"1.2.abc", false},
		{"", false},
	}

	for _, tt := range tests {
		result := OIDRegex.MatchString(tt.input)
		if result != tt.expected {
			t.Errorf("OIDRegex.MatchString(%s) = %v, want %v", tt.input, result, tt.expected)
		}
	}
}

func TestProcessOID(t *testing.T) {
	tests := []struct {
		input       string
		expected    string
		shouldError bool
	}{
		{"1.2.3.4", "1.2.3.4", false},
		{"sha256", "sha256", false},
		{"", "", true},
	}

	for _, tt := range tests {
		result, err := ProcessOID(tt.input)
		if tt.shouldError {
			if err == nil {
				t.Errorf("ProcessOID(%s) expected error", tt.input)
			}
		} else {
			if err != nil {
				t.Errorf("ProcessOID(%s) unexpected error: %v", tt.input, err)
			}
			if result != tt.expected {
				t.Errorf("ProcessOID(%s) = %s, want %s", tt.input, result, tt.expected)
			}
		}
	}
}

func TestProcessOIDs(t *testing.T) {
	oids, err := ProcessOIDs([]string{"1.2.3.4", "2.5.4.3"})
	if err != nil {
		t.Fatalf("ProcessOIDs failed: %v", err)
	}
	if len(oids) != 2 {
		t.Errorf("Expected 2 OIDs, got %d", len(oids))
	}

	_, err = ProcessOIDs([]string{"1.2.3.4", ""})
	if err == nil {
		t.Error("ProcessOIDs should error on empty OID")
	}
}

func TestNormalizeKey(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"key_file", "key-file"},
		{"key-file", "key-file"},
		{"pfx_passphrase", "pfx-passphrase"},
		{"plain", "plain"},
	}

	for _, tt := range tests {
		if result := normalizeKey(tt.input); result != tt.expected {
			t.Errorf("normalizeKey(%s) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestCheckConfigKeys(t *testing.T) {
	expected := []string{"key-file", "cert-file", "key-passphrase"}

	err := CheckConfigKeys("pemder", expected, []string{"key-file", "cert-file"})
	if err != nil {
		t.Errorf("CheckConfigKeys should accept expected keys: %v", err)
	}

	err = CheckConfigKeys("pemder", expected, []string{"key_file"})
	if err != nil {
		t.Errorf("CheckConfigKeys should normalize underscores: %v", err)
	}

	err = CheckConfigKeys("pemder", expected, []string{"key-file", "bogus"})
	if err == nil {
		t.Error("CheckConfigKeys should reject unexpected keys")
	}
	if !errors.Is(err, ErrUnexpectedField) {
		t.Errorf("Expected ErrUnexpectedField, got %v", err)
	}
}

func TestPemDerSignatureConfigValidate(t *testing.T) {
	// Missing key file
	config := &PemDerSignatureConfig{CertFile: "cert.pem"}
	err := config.Validate()
	if err == nil {
		t.Error("Validate should error when key file is missing")
	}

	// Missing cert file
	config = &PemDerSignatureConfig{KeyFile: "key.pem"}
	err = config.Validate()
	if err == nil {
		t.Error("Validate should error when cert file is missing")
	}

	// Valid config
	config = &PemDerSignatureConfig{KeyFile: "key.pem", CertFile: "cert.pem"}
	err = config.Validate()
	if err != nil {
		t.Errorf("Validate should not error for valid config: %v", err)
	}
}

func TestPemDerSignatureConfigGetPassphraseBytes(t *testing.T) {
	config := &PemDerSignatureConfig{}
	if config.GetPassphraseBytes() != nil {
		t.Error("Empty passphrase should return nil")
	}

	config.KeyPassphrase = "secret"
	passphrase := config.GetPassphraseBytes()
	if string(passphrase) != "secret" {
		t.Errorf("Expected 'secret', got '%s'", string(passphrase))
	}
}

func TestPKCS12SignatureConfigValidate(t *testing.T) {
	config := &PKCS12SignatureConfig{}
	err := config.Validate()
	if err == nil {
		t.Error("Validate should error when PFX file is missing")
	}

	config.PFXFile = "file.p12"
	err = config.Validate()
	if err != nil {
		t.Errorf("Validate should not error for valid config: %v", err)
	}
}

func TestTimestampConfigValidate(t *testing.T) {
	config := &TimestampConfig{}
	err := config.Validate()
	if err == nil {
		t.Error("Validate should error when URL is missing")
	}

	config.URL = "http://timestamp.example.com"
	err = config.Validate()
	if err != nil {
		t.Errorf("Validate should not error for valid config: %v", err)
	}
}

func TestTimestampConfigClient(t *testing.T) {
	config := &TimestampConfig{
		URL:      "http://timestamp.example.com",
		Username: "alice",
		Password: "hunter2",
		Timeout:  5,
	}

	client, err := config.Client()
	if err != nil {
		t.Fatalf("Client failed: %v", err)
	}
	if client.URL != config.URL {
		t.Errorf("Expected URL '%s', got '%s'", config.URL, client.URL)
	}
	if client.Username != "alice" {
		t.Errorf("Expected username 'alice', got '%s'", client.Username)
	}
	if client.HTTPClient.Timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", client.HTTPClient.Timeout)
	}

	if _, err := (&TimestampConfig{}).Client(); err == nil {
		t.Error("Client should error when URL is missing")
	}
}

func TestLoggingConfigSetDefaults(t *testing.T) {
	config := &LoggingConfig{}
	config.SetDefaults()

	if config.Level != "info" {
		t.Errorf("Expected level 'info', got '%s'", config.Level)
	}
	if config.Format != "text" {
		t.Errorf("Expected format 'text', got '%s'", config.Format)
	}
	if config.Output != "stderr" {
		t.Errorf("Expected output 'stderr', got '%s'", config.Output)
	}

	// Values should not be overwritten
	config2 := &LoggingConfig{Level: "debug", Format: "json", Output: "stdout"}
	config2.SetDefaults()
	if config2.Level != "debug" {
		t.Error("SetDefaults should not overwrite existing values")
	}
}

func TestParseConfig(t *testing.T) {
	yamlData := []byte(`
default-profile: standard
profiles:
  standard:
    key-set: default
    digest-algorithm: SHA256
    subfilter: adbe.pkcs7.detached
key-sets:
  default:
    type: pemder
    pemder:
      key-file: key.pem
      cert-file: cert.pem
`)

	config, err := ParseConfig(yamlData)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if config.DefaultProfile != "standard" {
		t.Errorf("Expected default-profile 'standard', got '%s'", config.DefaultProfile)
	}

	if config.Profiles["standard"] == nil {
		t.Error("Expected profiles.standard to exist")
	}

	if config.KeySets["default"] == nil {
		t.Error("Expected key-sets.default to exist")
	}

	if config.KeySets["default"].Type != "pemder" {
		t.Errorf("Expected type 'pemder', got '%s'", config.KeySets["default"].Type)
	}
}

func TestSigningConfigProfileLookup(t *testing.T) {
	config := &SigningConfig{
		DefaultProfile: "standard",
		Profiles: map[string]*ProfileConfig{
			"standard": {KeySet: "default"},
			"cades":    {KeySet: "default", SubFilter: "ETSI.CAdES.detached"},
		},
	}

	profile, err := config.Profile("")
	if err != nil {
		t.Fatalf("Profile lookup failed: %v", err)
	}
	if profile != config.Profiles["standard"] {
		t.Error("Empty name should resolve to the default profile")
	}

	profile, err = config.Profile("cades")
	if err != nil {
		t.Fatalf("Profile lookup failed: %v", err)
	}
	if profile.SubFilter != "ETSI.CAdES.detached" {
		t.Errorf("Unexpected subfilter '%s'", profile.SubFilter)
	}

	if _, err := config.Profile("missing"); err == nil {
		t.Error("Unknown profile should error")
	}

	config.DefaultProfile = ""
	if _, err := config.Profile(""); err == nil {
		t.Error("Missing default profile should error")
	}
}

func TestProfileConfigValidate(t *testing.T) {
	profile := &ProfileConfig{}
	if err := profile.Validate(); err == nil {
		t.Error("Validate should error when key-set is missing")
	}

	profile = &ProfileConfig{KeySet: "default", DigestAlgorithm: "MD5"}
	if err := profile.Validate(); err == nil {
		t.Error("Validate should reject unsupported digest algorithm")
	}

	profile = &ProfileConfig{KeySet: "default", SubFilter: "adbe.nonsense"}
	if err := profile.Validate(); err == nil {
		t.Error("Validate should reject unknown subfilter")
	}

	profile = &ProfileConfig{KeySet: "default", ReservedBytes: -1}
	if err := profile.Validate(); err == nil {
		t.Error("Validate should reject negative reserved-bytes")
	}

	profile = &ProfileConfig{
		KeySet:          "default",
		DigestAlgorithm: "SHA384",
		SubFilter:       "ETSI.CAdES.detached",
		ReservedBytes:   8192,
		Timestamp:       &TimestampConfig{URL: "http://tsa.example.com"},
		Revocation:      &RevocationConfig{FetchPolicy: "always"},
	}
	if err := profile.Validate(); err != nil {
		t.Errorf("Validate should accept a complete profile: %v", err)
	}
}

func TestProfileConfigDefaults(t *testing.T) {
	profile := &ProfileConfig{KeySet: "default"}

	if profile.GetDigestAlgorithm() != "SHA256" {
		t.Errorf("Expected default digest SHA256, got '%s'", profile.GetDigestAlgorithm())
	}

	subFilter, err := profile.GetSubFilter()
	if err != nil {
		t.Fatalf("GetSubFilter failed: %v", err)
	}
	if subFilter != pkcs7.SubFilterAdbePKCS7Detached {
		t.Errorf("Expected default subfilter adbe.pkcs7.detached, got %v", subFilter)
	}

	if profile.GetReservedBytes() != twophase.DefaultReservedBytes {
		t.Errorf("Expected default reserved bytes %d, got %d",
			twophase.DefaultReservedBytes, profile.GetReservedBytes())
	}

	profile.ReservedBytes = 4096
	if profile.GetReservedBytes() != 4096 {
		t.Errorf("Expected reserved bytes 4096, got %d", profile.GetReservedBytes())
	}
}

func TestRevocationConfigFetchPolicy(t *testing.T) {
	tests := []struct {
		input       string
		expected    revocation.OnlineFetching
		shouldError bool
	}{
		{"", revocation.FetchIfNoOtherDataAvailable, false},
		{"if-needed", revocation.FetchIfNoOtherDataAvailable, false},
		{"always", revocation.FetchAlways, false},
		{"never", revocation.FetchNever, false},
		{"sometimes", 0, true},
	}

	for _, tt := range tests {
		config := &RevocationConfig{FetchPolicy: tt.input}
		policy, err := config.GetFetchPolicy()
		if tt.shouldError {
			if err == nil {
				t.Errorf("GetFetchPolicy(%s) expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("GetFetchPolicy(%s) unexpected error: %v", tt.input, err)
		}
		if policy != tt.expected {
			t.Errorf("GetFetchPolicy(%s) = %v, want %v", tt.input, policy, tt.expected)
		}
	}
}

func TestRevocationConfigFreshness(t *testing.T) {
	config := &RevocationConfig{}
	if config.GetFreshness() != revocation.DefaultFreshness {
		t.Errorf("Expected default freshness %v, got %v",
			revocation.DefaultFreshness, config.GetFreshness())
	}

	config.FreshnessHours = 48
	if config.GetFreshness() != 48*time.Hour {
		t.Errorf("Expected freshness 48h, got %v", config.GetFreshness())
	}

	config.FreshnessHours = -1
	if err := config.Validate(); err == nil {
		t.Error("Validate should reject negative freshness")
	}
}

func TestRevocationConfigValidator(t *testing.T) {
	config := &RevocationConfig{FetchPolicy: "never", FreshnessHours: 24}
	validator, err := config.Validator()
	if err != nil {
		t.Fatalf("Validator failed: %v", err)
	}
	if validator == nil {
		t.Fatal("Expected validator")
	}

	config.FetchPolicy = "bogus"
	if _, err := config.Validator(); err == nil {
		t.Error("Validator should reject unknown fetch policy")
	}
}

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "config.yaml")

	yamlData := []byte(`
validation:
  trust-anchors:
    - /path/to/ca.pem
  revocation:
    fetch-policy: never
`)

	if err := os.WriteFile(configFile, yamlData, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadConfig(configFile)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if config.Validation == nil {
		t.Fatal("Expected validation config")
	}

	if len(config.Validation.TrustAnchors) != 1 {
		t.Errorf("Expected 1 trust anchor, got %d", len(config.Validation.TrustAnchors))
	}

	if config.Validation.Revocation == nil {
		t.Fatal("Expected revocation config")
	}
	if config.Validation.Revocation.FetchPolicy != "never" {
		t.Errorf("Expected fetch-policy 'never', got '%s'", config.Validation.Revocation.FetchPolicy)
	}
}

func TestLoadConfigFileNotFound(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Error("LoadConfig should error for non-existent file")
	}
}

func TestLoadAppConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "app.yaml")

	yamlData := []byte(`
logging:
  level: debug
  format: json
timestamp:
  url: http://timestamp.example.com
  timeout: 30
`)

	if err := os.WriteFile(configFile, yamlData, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadAppConfig(configFile)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if config.Logging.Level != "debug" {
		t.Errorf("Expected level 'debug', got '%s'", config.Logging.Level)
	}

	if config.Timestamp == nil {
		t.Fatal("Expected timestamp config")
	}

	if config.Timestamp.URL != "http://timestamp.example.com" {
		t.Errorf("Expected URL 'http://timestamp.example.com', got '%s'", config.Timestamp.URL)
	}
}

func TestLoadAppConfigWithDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	configFile := filepath.Join(tmpDir, "minimal.yaml")

	yamlData := []byte(`{}`)
	if err := os.WriteFile(configFile, yamlData, 0644); err != nil {
		t.Fatalf("Failed to write config file: %v", err)
	}

	config, err := LoadAppConfig(configFile)
	if err != nil {
		t.Fatalf("LoadAppConfig failed: %v", err)
	}

	if config.Logging == nil {
		t.Fatal("Logging should have default values")
	}
	if config.Logging.Level != "info" {
		t.Errorf("Expected default level 'info', got '%s'", config.Logging.Level)
	}
}

func TestLoadConfigFromMap(t *testing.T) {
	data := map[string]any{
		"default-profile": "test",
		"profiles": map[string]any{
			"test": map[string]any{
				"key-set": "default",
			},
		},
	}

	config, err := LoadConfigFromMap(data)
	if err != nil {
		t.Fatalf("LoadConfigFromMap failed: %v", err)
	}

	if config.DefaultProfile != "test" {
		t.Errorf("Expected default-profile 'test', got '%s'", config.DefaultProfile)
	}
	if config.Profiles["test"] == nil || config.Profiles["test"].KeySet != "default" {
		t.Error("Expected profiles.test with key-set 'default'")
	}
}

func TestValidationConfig(t *testing.T) {
	yamlData := []byte(`
validation:
  trust-anchors:
    - /path/to/ca1.pem
    - /path/to/ca2.pem
  other-certs:
    - /path/to/intermediate.pem
  signer:
    key-usage:
      - digital-signature
      - non-repudiation
    ext-key-usage:
      - code-signing
`)

	config, err := ParseConfig(yamlData)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	if config.Validation == nil {
		t.Fatal("Expected validation config")
	}

	if len(config.Validation.TrustAnchors) != 2 {
		t.Errorf("Expected 2 trust anchors, got %d", len(config.Validation.TrustAnchors))
	}

	if len(config.Validation.OtherCerts) != 1 {
		t.Errorf("Expected 1 other cert, got %d", len(config.Validation.OtherCerts))
	}

	if config.Validation.Signer == nil {
		t.Fatal("Expected signer validation config")
	}

	if len(config.Validation.Signer.KeyUsage) != 2 {
		t.Errorf("Expected 2 key usages, got %d", len(config.Validation.Signer.KeyUsage))
	}
}

func TestKeySetConfig(t *testing.T) {
	yamlData := []byte(`
key-sets:
  pemder-set:
    type: pemder
    pemder:
      key-file: /path/to/key.pem
      cert-file: /path/to/cert.pem
      other-certs:
        - /path/to/intermediate.pem
      key-passphrase: secret
  pkcs12-set:
    type: pkcs12
    pkcs12:
      pfx-file: /path/to/bundle.p12
      pfx-passphrase: p12secret
      prompt-passphrase: false
`)

	config, err := ParseConfig(yamlData)
	if err != nil {
		t.Fatalf("ParseConfig failed: %v", err)
	}

	pemderSet := config.KeySets["pemder-set"]
	if pemderSet == nil {
		t.Fatal("Expected pemder-set")
	}
	if pemderSet.Type != "pemder" {
		t.Errorf("Expected type 'pemder', got '%s'", pemderSet.Type)
	}
	if pemderSet.PemDer == nil {
		t.Fatal("Expected PemDer config")
	}
	if pemderSet.PemDer.KeyFile != "/path/to/key.pem" {
		t.Errorf("Expected key-file '/path/to/key.pem', got '%s'", pemderSet.PemDer.KeyFile)
	}

	pkcs12Set := config.KeySets["pkcs12-set"]
	if pkcs12Set == nil {
		t.Fatal("Expected pkcs12-set")
	}
	if pkcs12Set.Type != "pkcs12" {
		t.Errorf("Expected type 'pkcs12', got '%s'", pkcs12Set.Type)
	}
	if pkcs12Set.PKCS12 == nil {
		t.Fatal("Expected PKCS12 config")
	}
	if pkcs12Set.PKCS12.PFXFile != "/path/to/bundle.p12" {
		t.Errorf("Expected pfx-file '/path/to/bundle.p12', got '%s'", pkcs12Set.PKCS12.PFXFile)
	}
}

// writeTestCredential writes a self-signed certificate and its key as PEM
// files in dir and returns their paths.
func writeTestCredential(t *testing.T, dir string) (certFile, keyFile string) {
	t.Helper()

	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Config Test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
	}
	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}

	certFile = filepath.Join(dir, "cert.pem")
	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: certDER})
	if err := os.WriteFile(certFile, certPEM, 0644); err != nil {
		t.Fatalf("Failed to write cert file: %v", err)
	}

	keyFile = filepath.Join(dir, "key.pem")
	keyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(key),
	})
	if err := os.WriteFile(keyFile, keyPEM, 0600); err != nil {
		t.Fatalf("Failed to write key file: %v", err)
	}

	return certFile, keyFile
}

func TestKeySetConfigLoadPemDer(t *testing.T) {
	certFile, keyFile := writeTestCredential(t, t.TempDir())

	keySet := &KeySetConfig{
		Type: "pemder",
		PemDer: &PemDerSignatureConfig{
			CertFile: certFile,
			KeyFile:  keyFile,
		},
	}

	cred, err := keySet.Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cred.Certificate == nil {
		t.Fatal("Expected certificate")
	}
	if cred.Certificate.Subject.CommonName != "Config Test" {
		t.Errorf("Unexpected subject '%s'", cred.Certificate.Subject.CommonName)
	}
	if cred.PrivateKey == nil {
		t.Fatal("Expected private key")
	}
}

func TestKeySetConfigLoadUnknownType(t *testing.T) {
	keySet := &KeySetConfig{Type: "vault"}
	if _, err := keySet.Load(); err == nil {
		t.Error("Load should reject unknown key set type")
	}

	keySet = &KeySetConfig{Type: "pemder"}
	if _, err := keySet.Load(); err == nil {
		t.Error("Load should error when pemder section is missing")
	}

	keySet = &KeySetConfig{Type: "pkcs12"}
	if _, err := keySet.Load(); err == nil {
		t.Error("Load should error when pkcs12 section is missing")
	}
}

func TestParseConfigInvalid(t *testing.T) {
	yamlData := []byte(`
invalid yaml: [
`)
	_, err := ParseConfig(yamlData)
	if err == nil {
		t.Error("ParseConfig should error on invalid YAML")
	}
}

func TestEnsureStrings(t *testing.T) {
	result, err := EnsureStrings("single", "param")
	if err != nil {
		t.Fatalf("EnsureStrings failed: %v", err)
	}
	if len(result) != 1 || result[0] != "single" {
		t.Errorf("Expected ['single'], got %v", result)
	}

	result, err = EnsureStrings([]string{"a", "b"}, "param")
	if err != nil {
		t.Fatalf("EnsureStrings failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 elements, got %d", len(result))
	}

	result, err = EnsureStrings([]any{"a", "b", "c"}, "param")
	if err != nil {
		t.Fatalf("EnsureStrings failed: %v", err)
	}
	if len(result) != 3 {
		t.Errorf("Expected 3 elements, got %d", len(result))
	}

	_, err = EnsureStrings([]any{"a", 42}, "param")
	if err == nil {
		t.Error("EnsureStrings should reject non-string items")
	}

	_, err = EnsureStrings(42, "param")
	if err == nil {
		t.Error("EnsureStrings should reject non-string input")
	}
}

func TestProcessBitStringFlags(t *testing.T) {
	valid := map[string]bool{"flag-a": true, "flag-b": true}

	result, err := ProcessBitStringFlags(valid, []string{"flag-a"}, "param", "Test")
	if err != nil {
		t.Fatalf("ProcessBitStringFlags failed: %v", err)
	}
	if len(result) != 1 || result[0] != "flag-a" {
		t.Errorf("Expected ['flag-a'], got %v", result)
	}

	result, err = ProcessBitStringFlags(valid, "flag-b", "param", "Test")
	if err != nil {
		t.Fatalf("ProcessBitStringFlags failed: %v", err)
	}
	if len(result) != 1 || result[0] != "flag-b" {
		t.Errorf("Expected ['flag-b'], got %v", result)
	}

	_, err = ProcessBitStringFlags(valid, []string{"unknown"}, "param", "Test")
	if err == nil {
		t.Error("ProcessBitStringFlags should reject unknown flags")
	}

	_, err = ProcessBitStringFlags(valid, []string{""}, "param", "Test")
	if err == nil {
		t.Error("ProcessBitStringFlags should reject empty flags")
	}
}

func TestProcessKeyUsageFlags(t *testing.T) {
	result, err := ProcessKeyUsageFlags([]string{"digital-signature", "non-repudiation"}, "key-usage")
	if err != nil {
		t.Fatalf("ProcessKeyUsageFlags failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 flags, got %d", len(result))
	}

	result, err = ProcessKeyUsageFlags("digitalSignature", "key-usage")
	if err != nil {
		t.Fatalf("ProcessKeyUsageFlags failed for camelCase: %v", err)
	}
	if len(result) != 1 {
		t.Errorf("Expected 1 flag, got %d", len(result))
	}

	_, err = ProcessKeyUsageFlags([]string{"not-a-flag"}, "key-usage")
	if err == nil {
		t.Error("ProcessKeyUsageFlags should reject unknown flags")
	}
}

func TestProcessExtKeyUsageFlags(t *testing.T) {
	result, err := ProcessExtKeyUsageFlags([]string{"time-stamping", "ocsp-signing"}, "ext-key-usage")
	if err != nil {
		t.Fatalf("ProcessExtKeyUsageFlags failed: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("Expected 2 flags, got %d", len(result))
	}

	_, err = ProcessExtKeyUsageFlags([]string{"not-a-flag"}, "ext-key-usage")
	if err == nil {
		t.Error("ProcessExtKeyUsageFlags should reject unknown flags")
	}
}

func TestNormalizeKeyUsageFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"digitalSignature", "digital-signature"},
		{"cRLSign", "crl-sign"},
		{"digital-signature", "digital-signature"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		if result := NormalizeKeyUsageFlag(tt.input); result != tt.expected {
			t.Errorf("NormalizeKeyUsageFlag(%s) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestNormalizeExtKeyUsageFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"timeStamping", "time-stamping"},
		{"OCSPSigning", "ocsp-signing"},
		{"time-stamping", "time-stamping"},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		if result := NormalizeExtKeyUsageFlag(tt.input); result != tt.expected {
			t.Errorf("NormalizeExtKeyUsageFlag(%s) = %s, want %s", tt.input, result, tt.expected)
		}
	}
}

func TestKeyUsageFlagsCompleteness(t *testing.T) {
	// Both kebab-case and camelCase spellings must be accepted.
	pairs := [][2]string{
		{"digital-signature", "digitalSignature"},
		{"key-cert-sign", "keyCertSign"},
		{"crl-sign", "cRLSign"},
	}
	for _, pair := range pairs {
		if !KeyUsageFlags[pair[0]] || !KeyUsageFlags[pair[1]] {
			t.Errorf("KeyUsageFlags should contain both '%s' and '%s'", pair[0], pair[1])
		}
	}
}

func TestExtKeyUsageFlagsCompleteness(t *testing.T) {
	pairs := [][2]string{
		{"time-stamping", "timeStamping"},
		{"ocsp-signing", "OCSPSigning"},
		{"code-signing", "codeSigning"},
	}
	for _, pair := range pairs {
		if !ExtKeyUsageFlags[pair[0]] || !ExtKeyUsageFlags[pair[1]] {
			t.Errorf("ExtKeyUsageFlags should contain both '%s' and '%s'", pair[0], pair[1])
		}
	}
}
