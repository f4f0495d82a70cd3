// Package timestamps provides RFC 3161 timestamp authority clients.
package timestamps

import (
	"bytes"
	"crypto"
	"crypto/rand"
	"encoding/asn1"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"time"

	"github.com/georgepadayatti/pdfsig/pkcs7"
)

// Common errors
var (
	ErrTimestampFailed   = errors.New("timestamp request failed")
	ErrTimestampRejected = errors.New("timestamp request rejected")
	ErrInvalidTimestamp  = errors.New("invalid timestamp")
	ErrTimestampMismatch = errors.New("timestamp message imprint mismatch")
)

// TimeStampReq represents a timestamp request (RFC 3161).
type TimeStampReq struct {
	Version        int
	MessageImprint pkcs7.MessageImprint
	ReqPolicy      asn1.ObjectIdentifier `asn1:"optional"`
	Nonce          *big.Int              `asn1:"optional"`
	CertReq        bool                  `asn1:"optional,default:false"`
	Extensions     asn1.RawValue         `asn1:"optional,implicit,tag:0"`
}

// TimeStampResp represents a timestamp response (RFC 3161).
type TimeStampResp struct {
	Status         PKIStatusInfo
	TimeStampToken asn1.RawValue `asn1:"optional"`
}

// PKIStatusInfo represents the status of a PKI operation.
type PKIStatusInfo struct {
	Status       int
	StatusString []string       `asn1:"optional"`
	FailInfo     asn1.BitString `asn1:"optional"`
}

// Granted and granted-with-modifications are the only statuses that carry a
// usable token.
const (
	statusGranted         = 0
	statusGrantedWithMods = 1
)

// RequestOptions configures a timestamp request.
type RequestOptions struct {
	HashAlgorithm crypto.Hash
	Policy        asn1.ObjectIdentifier
	IncludeNonce  bool
	RequestCerts  bool
}

// DefaultRequestOptions returns default options.
func DefaultRequestOptions() *RequestOptions {
	return &RequestOptions{
		HashAlgorithm: crypto.SHA256,
		IncludeNonce:  true,
		RequestCerts:  true,
	}
}

// CreateTimestampRequest creates a DER-encoded timestamp request for an
// already computed message imprint digest.
func CreateTimestampRequest(imprint []byte, opts *RequestOptions) ([]byte, error) {
	digestOID, err := pkcs7.DigestOIDForName(opts.HashAlgorithm.String())
	if err != nil {
		return nil, err
	}

	req := TimeStampReq{
		Version: 1,
		MessageImprint: pkcs7.MessageImprint{
			HashAlgorithm: pkcs7.AlgorithmIdentifier{
				Algorithm:  digestOID,
				Parameters: asn1.NullRawValue,
			},
			HashedMessage: imprint,
		},
		CertReq: opts.RequestCerts,
	}

	if len(opts.Policy) > 0 {
		req.ReqPolicy = opts.Policy
	}

	if opts.IncludeNonce {
		nonce, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 64))
		if err != nil {
			return nil, err
		}
		req.Nonce = nonce
	}

	return asn1.Marshal(req)
}

// ParseTimestampResponse parses a timestamp response and returns the token
// after checking that it was granted and covers the given imprint.
func ParseTimestampResponse(respData, imprint []byte) ([]byte, error) {
	var resp TimeStampResp
	if _, err := asn1.Unmarshal(respData, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	if resp.Status.Status != statusGranted && resp.Status.Status != statusGrantedWithMods {
		return nil, fmt.Errorf("%w: status %d %v", ErrTimestampRejected, resp.Status.Status, resp.Status.StatusString)
	}

	tstInfo, err := pkcs7.ParseTimestampToken(resp.TimeStampToken.FullBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTimestamp, err)
	}

	if !bytes.Equal(tstInfo.MessageImprint.HashedMessage, imprint) {
		return nil, ErrTimestampMismatch
	}

	return resp.TimeStampToken.FullBytes, nil
}

// HTTPTSAClient requests timestamp tokens from an RFC 3161 timestamp
// authority over HTTP. It satisfies the timestamp client contract of the
// signature container.
type HTTPTSAClient struct {
	URL        string
	HTTPClient *http.Client
	Username   string
	Password   string
	Options    *RequestOptions
}

// NewHTTPTSAClient creates a client for the given TSA URL.
func NewHTTPTSAClient(url string) *HTTPTSAClient {
	return &HTTPTSAClient{
		URL: url,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		Options: DefaultRequestOptions(),
	}
}

// SetCredentials sets basic authentication credentials.
func (t *HTTPTSAClient) SetCredentials(username, password string) {
	t.Username = username
	t.Password = password
}

// DigestAlgorithm returns the hash used for message imprints.
func (t *HTTPTSAClient) DigestAlgorithm() crypto.Hash {
	return t.Options.HashAlgorithm
}

// GetTimestampToken requests a token covering the given imprint digest.
func (t *HTTPTSAClient) GetTimestampToken(imprint []byte) ([]byte, error) {
	reqBytes, err := CreateTimestampRequest(imprint, t.Options)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, t.URL, bytes.NewReader(reqBytes))
	if err != nil {
		return nil, err
	}

	httpReq.Header.Set("Content-Type", "application/timestamp-query")
	if t.Username != "" {
		httpReq.SetBasicAuth(t.Username, t.Password)
	}

	resp, err := t.HTTPClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTimestampFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrTimestampFailed, resp.StatusCode)
	}

	respData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return ParseTimestampResponse(respData, imprint)
}
