package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMappings(t *testing.T) {
	m, err := parseMappings([]string{
		"Work Errands=errands",
		"Programming.Open Source=oss",
		"Taxes=",
	})
	require.NoError(t, err)

	assert.Equal(t, "errands", m["Work Errands"])
	assert.Equal(t, "oss", m["Programming.Open Source"])

	// An empty DST is kept: it means "unset on match".
	dst, ok := m["Taxes"]
	require.True(t, ok)
	assert.Empty(t, dst)
}

func TestParseMappingsRejectsMalformedPairs(t *testing.T) {
	for _, pair := range []string{"no-separator", "=missing-src"} {
		_, err := parseMappings([]string{pair})
		assert.Error(t, err, "pair %q", pair)
	}
}

func TestParseMappingsEmpty(t *testing.T) {
	m, err := parseMappings(nil)
	require.NoError(t, err)
	assert.Nil(t, m)
}
