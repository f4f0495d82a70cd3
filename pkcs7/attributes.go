package pkcs7

import (
	"encoding/asn1"
	"fmt"
)

// AuthenticatedAttributeBytes returns the DER-encoded SET of authenticated
// attributes for the given content digest and revocation data. The result is
// a pure function of its inputs and the container's signing certificate:
// two-phase callers must pass byte-identical parameters here and to Encode,
// otherwise the externally produced signature will not verify.
func (c *SignatureContainer) AuthenticatedAttributeBytes(secondDigest []byte, ocsps, crls [][]byte, flavor SubFilter) ([]byte, error) {
	_, attrBytes, err := c.authenticatedAttributes(secondDigest, ocsps, crls, flavor)
	return attrBytes, err
}

// authenticatedAttributes builds the signed attribute list and its DER SET
// encoding: content-type, message-digest, optional archived revocation data,
// the CAdES signing-certificate-v2 attribute, and an optional signature
// policy.
func (c *SignatureContainer) authenticatedAttributes(secondDigest []byte, ocsps, crls [][]byte, flavor SubFilter) ([]Attribute, []byte, error) {
	var attrs []Attribute

	contentTypeValue, err := asn1.Marshal(OIDData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal content type: %w", err)
	}
	attrs = append(attrs, Attribute{
		Type:   OIDContentType,
		Values: []asn1.RawValue{{FullBytes: contentTypeValue}},
	})

	digestValue, err := asn1.Marshal(secondDigest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal message digest: %w", err)
	}
	attrs = append(attrs, Attribute{
		Type:   OIDMessageDigest,
		Values: []asn1.RawValue{{FullBytes: digestValue}},
	})

	if len(ocsps) > 0 || len(crls) > 0 {
		revValue, err := buildRevocationArchival(ocsps, crls)
		if err != nil {
			return nil, nil, err
		}
		attrs = append(attrs, Attribute{
			Type:   OIDAdobeRevocationArchival,
			Values: []asn1.RawValue{{FullBytes: revValue}},
		})
	}

	if flavor.IsCAdES() {
		certAttr, err := c.signingCertificateV2Attribute()
		if err != nil {
			return nil, nil, err
		}
		attrs = append(attrs, certAttr)
	}

	if c.signPolicy != nil {
		policyValue, err := asn1.Marshal(signaturePolicyID{
			SigPolicyID: c.signPolicy.PolicyOID,
			SigPolicyHash: otherHashAlgAndValue{
				HashAlgorithm: AlgorithmIdentifier{
					Algorithm:  c.signPolicy.HashAlgOID,
					Parameters: asn1.RawValue{Tag: 5},
				},
				HashValue: c.signPolicy.PolicyHash,
			},
		})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal signature policy: %w", err)
		}
		attrs = append(attrs, Attribute{
			Type:   OIDSignaturePolicyID,
			Values: []asn1.RawValue{{FullBytes: policyValue}},
		})
	}

	attrs = derSortAttributes(attrs)

	attrBytes, err := asn1.Marshal(attrs)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal signed attributes: %w", err)
	}
	attrBytes[0] = 0x31 // SET tag

	return attrs, attrBytes, nil
}

// signingCertificateV2Attribute builds the ESS signing-certificate-v2
// attribute over the signing certificate with the container's digest
// algorithm.
func (c *SignatureContainer) signingCertificateV2Attribute() (Attribute, error) {
	h, err := NewDigestForOID(c.digestAlgorithmOID)
	if err != nil {
		return Attribute{}, err
	}
	h.Write(c.signCert.Raw)

	signingCert := SigningCertificateV2{
		Certs: []ESSCertIDv2{{
			HashAlgorithm: AlgorithmIdentifier{
				Algorithm:  c.digestAlgorithmOID,
				Parameters: asn1.RawValue{Tag: 5},
			},
			CertHash: h.Sum(nil),
			IssuerSerial: IssuerSerial{
				Issuer: GeneralNames{
					Names: []asn1.RawValue{{
						Class:      asn1.ClassContextSpecific,
						Tag:        4, // directoryName
						IsCompound: true,
						Bytes:      c.signCert.RawIssuer,
					}},
				},
				SerialNumber: c.signCert.SerialNumber,
			},
		}},
	}
	value, err := asn1.Marshal(signingCert)
	if err != nil {
		return Attribute{}, fmt.Errorf("failed to marshal signing certificate attribute: %w", err)
	}
	return Attribute{
		Type:   OIDSigningCertificateV2,
		Values: []asn1.RawValue{{FullBytes: value}},
	}, nil
}

// buildRevocationArchival encodes the Adobe revocation-info-archival value.
// CRLs are stored as given; each basic OCSP response is wrapped into an
// OCSPResponse with status successful before archival.
func buildRevocationArchival(ocsps, crls [][]byte) ([]byte, error) {
	var archival RevocationInfoArchival
	for _, crl := range crls {
		archival.CRLs = append(archival.CRLs, asn1.RawValue{FullBytes: crl})
	}
	for _, basicResp := range ocsps {
		envelope, err := asn1.Marshal(ocspResponseEnvelope{
			Status: 0, // successful
			Response: ocspResponseBytes{
				ResponseType: OIDOCSPBasic,
				Response:     basicResp,
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal OCSP response envelope: %w", err)
		}
		archival.OCSPs = append(archival.OCSPs, asn1.RawValue{FullBytes: envelope})
	}
	value, err := asn1.Marshal(archival)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal revocation archival: %w", err)
	}
	return value, nil
}

// parseRevocationArchival extracts archived CRLs and basic OCSP responses
// from the Adobe revocation attribute value.
func (c *SignatureContainer) parseRevocationArchival(value []byte) error {
	var archival RevocationInfoArchival
	if _, err := asn1.Unmarshal(value, &archival); err != nil {
		return fmt.Errorf("failed to parse revocation archival attribute: %w", err)
	}
	for _, crl := range archival.CRLs {
		c.crlBytes = append(c.crlBytes, crl.FullBytes)
	}
	for _, ocspRaw := range archival.OCSPs {
		var envelope ocspResponseEnvelope
		if _, err := asn1.Unmarshal(ocspRaw.FullBytes, &envelope); err != nil {
			return fmt.Errorf("failed to parse archived OCSP response: %w", err)
		}
		if envelope.Status != 0 || !envelope.Response.ResponseType.Equal(OIDOCSPBasic) {
			continue
		}
		c.ocspBytes = append(c.ocspBytes, envelope.Response.Response)
	}
	return nil
}
