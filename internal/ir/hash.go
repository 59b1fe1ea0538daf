package ir

import (
	"crypto/sha256"
	"encoding/hex"
)

// Domain prefix for bundle digests.
// Version suffix enables future algorithm migration.
const DomainBundle = "anachronize/bundle/v1"

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// BundleDigest returns the content digest of an assembled script.
// The same inputs always produce the same digest, so it can be compared
// across runs to detect output changes.
func BundleDigest(script []byte) string {
	return hashWithDomain(DomainBundle, script)
}
