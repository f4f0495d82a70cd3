package pkcs7

import (
	"encoding/asn1"
	"fmt"
)

// ParseTimestampToken parses an RFC 3161 timestamp token (a ContentInfo
// wrapping a SignedData whose content is a TSTInfo) and returns its TSTInfo.
func ParseTimestampToken(tokenData []byte) (*TSTInfo, error) {
	var contentInfo ContentInfo
	if _, err := asn1.Unmarshal(tokenData, &contentInfo); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp ContentInfo: %w", err)
	}
	if !contentInfo.ContentType.Equal(OIDSignedData) {
		return nil, fmt.Errorf("timestamp token is not SignedData")
	}

	var signedData SignedDataRaw
	if _, err := asn1.Unmarshal(contentInfo.Content.Bytes, &signedData); err != nil {
		return nil, fmt.Errorf("failed to parse timestamp SignedData: %w", err)
	}

	return parseTimestampTSTInfo(signedData.EncapContentInfo)
}

// parseTimestampTSTInfo extracts the TSTInfo from a timestamp token's
// encapsulated content.
func parseTimestampTSTInfo(encap EncapsulatedContentInfo) (*TSTInfo, error) {
	if !encap.EContentType.Equal(OIDTSTInfo) {
		return nil, fmt.Errorf("unexpected timestamp content type %v", encap.EContentType)
	}

	var tstInfoBytes []byte
	if _, err := asn1.Unmarshal(encap.EContent.Bytes, &tstInfoBytes); err != nil {
		return nil, fmt.Errorf("failed to parse TSTInfo bytes: %w", err)
	}

	var tstInfo TSTInfo
	if _, err := asn1.Unmarshal(tstInfoBytes, &tstInfo); err != nil {
		return nil, fmt.Errorf("failed to parse TSTInfo: %w", err)
	}
	return &tstInfo, nil
}
