package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the hashed layout to change.
const (
	DomainBuild    = "jsc/build/v1"
	DomainSource   = "jsc/source/v1"
	DomainArtifact = "jsc/artifact/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps domain and data unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// HashBytes hashes raw content under a domain.
func HashBytes(domain string, data []byte) string {
	return hashWithDomain(domain, data)
}

// Fingerprint hashes the canonical JSON form of v under a domain.
func Fingerprint(domain string, v any) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint %s: %w", domain, err)
	}
	return hashWithDomain(domain, canonical), nil
}
