package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBundleDigestDeterminism(t *testing.T) {
	script := []byte(";(function(__anachronizeRoot){\n}(this));")

	d1 := BundleDigest(script)
	d2 := BundleDigest(script)

	assert.Equal(t, d1, d2, "BundleDigest must be deterministic")
	assert.Len(t, d1, 64, "SHA-256 hex is 64 characters")
}

func TestBundleDigestChangesWithInput(t *testing.T) {
	d1 := BundleDigest([]byte("a"))
	d2 := BundleDigest([]byte("b"))

	assert.NotEqual(t, d1, d2)
}

func TestBundleDigestDomainSeparated(t *testing.T) {
	// A plain hash of the same bytes must not collide with the domain hash.
	assert.NotEqual(t, hashWithDomain("other/v1", []byte("x")), BundleDigest([]byte("x")))
}
