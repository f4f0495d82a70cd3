package pkcs7

import "crypto/x509"

// buildSignatureChain orders the certificate bag into a chain starting at the
// signing certificate. Each step scans the remaining pool for a certificate
// whose public key verifies the previous element's signature and removes it
// on match; the walk stops when no issuer is found.
func buildSignatureChain(signCert *x509.Certificate, certs []*x509.Certificate) []*x509.Certificate {
	chain := []*x509.Certificate{signCert}

	pool := make([]*x509.Certificate, 0, len(certs))
	for _, cert := range certs {
		if cert.Equal(signCert) {
			continue
		}
		pool = append(pool, cert)
	}

	found := true
	for found {
		found = false
		last := chain[len(chain)-1]
		for i, cand := range pool {
			if last.CheckSignatureFrom(cand) == nil {
				chain = append(chain, cand)
				pool = append(pool[:i], pool[i+1:]...)
				found = true
				break
			}
		}
	}
	return chain
}
