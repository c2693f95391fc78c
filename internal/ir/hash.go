package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content hashes. The version suffix allows the
// algorithm to change without colliding with old hashes.
const (
	DomainTableSpec = "keyprune/table/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator keeps the domain and data boundary unambiguous.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// TableSpecHash computes the content hash of a table spec. Column order
// is significant; map iteration order is not.
func TableSpecHash(spec TableSpec) (string, error) {
	canonical, err := MarshalCanonical(spec.Value())
	if err != nil {
		return "", fmt.Errorf("TableSpecHash: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainTableSpec, canonical), nil
}

// MustTableSpecHash is like TableSpecHash but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustTableSpecHash(spec TableSpec) string {
	h, err := TableSpecHash(spec)
	if err != nil {
		panic(err)
	}
	return h
}
