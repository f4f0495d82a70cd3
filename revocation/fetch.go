package revocation

import (
	"bytes"
	"crypto/x509"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/crypto/ocsp"
)

var (
	ErrFetchFailed = errors.New("fetch failed")
)

// FetcherConfig configures the online OCSP and CRL clients.
type FetcherConfig struct {
	// HTTP request timeout, used when HTTPClient is nil.
	Timeout time.Duration
	// Maximum response size in bytes.
	MaxResponseSize int64
	// User-Agent header.
	UserAgent string
	// HTTPClient allows using a custom HTTP client, for proxy or TLS
	// configuration. If nil, a default client is created with Timeout.
	HTTPClient *http.Client
}

// DefaultFetcherConfig returns the default fetcher configuration.
func DefaultFetcherConfig() *FetcherConfig {
	return &FetcherConfig{
		Timeout:         30 * time.Second,
		MaxResponseSize: 10 * 1024 * 1024,
		UserAgent:       "pdfsig-fetcher/1.0",
	}
}

func (c *FetcherConfig) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: c.Timeout}
}

// OnlineOCSPClient queries the OCSP responders named in a certificate's
// authority information access extension. Certificates without an OCSP
// responder URL yield no responses and no error.
type OnlineOCSPClient struct {
	config *FetcherConfig
}

// NewOnlineOCSPClient creates an online OCSP client.
func NewOnlineOCSPClient(config *FetcherConfig) *OnlineOCSPClient {
	if config == nil {
		config = DefaultFetcherConfig()
	}
	return &OnlineOCSPClient{config: config}
}

// GetEncodedResponses requests an OCSP response from each responder URL in
// the certificate. Per-URL failures are skipped; an error is returned only
// when every URL failed.
func (c *OnlineOCSPClient) GetEncodedResponses(cert, issuer *x509.Certificate) ([][]byte, error) {
	if len(cert.OCSPServer) == 0 || issuer == nil {
		return nil, nil
	}

	ocspReq, err := ocsp.CreateRequest(cert, issuer, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCSP request: %w", err)
	}

	var responses [][]byte
	var lastErr error
	for _, server := range cert.OCSPServer {
		data, err := c.fetchFromServer(server, ocspReq)
		if err != nil {
			lastErr = err
			continue
		}
		responses = append(responses, data)
	}

	if len(responses) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return responses, nil
}

func (c *OnlineOCSPClient) fetchFromServer(serverURL string, ocspReq []byte) ([]byte, error) {
	// POST is preferred; fall back to the GET form with the request
	// base64-encoded into the URL.
	data, err := c.fetchPOST(serverURL, ocspReq)
	if err == nil {
		return data, nil
	}
	return c.fetchGET(serverURL, ocspReq)
}

func (c *OnlineOCSPClient) fetchPOST(serverURL string, ocspReq []byte) ([]byte, error) {
	req, err := http.NewRequest(http.MethodPost, serverURL, bytes.NewReader(ocspReq))
	if err != nil {
		return nil, err
	}

	req.Header.Set("Content-Type", "application/ocsp-request")
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.config.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
}

func (c *OnlineOCSPClient) fetchGET(serverURL string, ocspReq []byte) ([]byte, error) {
	encoded := base64.StdEncoding.EncodeToString(ocspReq)
	fullURL := serverURL + "/" + url.PathEscape(encoded)

	req, err := http.NewRequest(http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.config.client().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
}

// OnlineCRLClient downloads the CRLs named in a certificate's distribution
// points extension. Certificates without distribution points yield no CRLs
// and no error.
type OnlineCRLClient struct {
	config *FetcherConfig
}

// NewOnlineCRLClient creates an online CRL client.
func NewOnlineCRLClient(config *FetcherConfig) *OnlineCRLClient {
	if config == nil {
		config = DefaultFetcherConfig()
	}
	return &OnlineCRLClient{config: config}
}

// GetEncodedCRLs downloads a CRL from each distribution point in the
// certificate. Per-URL failures are skipped; an error is returned only when
// every URL failed.
func (c *OnlineCRLClient) GetEncodedCRLs(cert *x509.Certificate) ([][]byte, error) {
	if len(cert.CRLDistributionPoints) == 0 {
		return nil, nil
	}

	var crls [][]byte
	var lastErr error
	for _, dp := range cert.CRLDistributionPoints {
		data, err := c.fetch(dp)
		if err != nil {
			lastErr = err
			continue
		}
		crls = append(crls, data)
	}

	if len(crls) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return crls, nil
}

func (c *OnlineCRLClient) fetch(urlStr string) ([]byte, error) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid URL: %v", ErrFetchFailed, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme: %s", ErrFetchFailed, parsed.Scheme)
	}

	req, err := http.NewRequest(http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}

	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.config.client().Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", ErrFetchFailed, resp.StatusCode)
	}

	return io.ReadAll(io.LimitReader(resp.Body, c.config.MaxResponseSize))
}
