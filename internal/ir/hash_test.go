package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFingerprintDeterminism(t *testing.T) {
	input := map[string]any{
		"platform": "std",
		"sources":  []any{"a.json", "b.json"},
	}

	a, err := Fingerprint(DomainBuild, input)
	require.NoError(t, err)
	b, err := Fingerprint(DomainBuild, input)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 64, "SHA-256 hex is 64 characters")
}

func TestFingerprintDomainSeparation(t *testing.T) {
	input := map[string]any{"k": "v"}

	build, err := Fingerprint(DomainBuild, input)
	require.NoError(t, err)
	source, err := Fingerprint(DomainSource, input)
	require.NoError(t, err)

	assert.NotEqual(t, build, source)
}

func TestFingerprintRejectsFloats(t *testing.T) {
	_, err := Fingerprint(DomainBuild, map[string]any{"f": 0.5})
	require.Error(t, err)
}

func TestHashBytes(t *testing.T) {
	assert.Equal(t, HashBytes(DomainArtifact, []byte("x")), HashBytes(DomainArtifact, []byte("x")))
	assert.NotEqual(t, HashBytes(DomainArtifact, []byte("x")), HashBytes(DomainArtifact, []byte("y")))
}
