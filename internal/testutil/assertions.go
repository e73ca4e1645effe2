// Package testutil provides fixtures and assertions shared by the package
// tests: a DS ROM builder, a dsd project on disk, and leak checks.
package testutil

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ndymario/dsd-ghidra/internal/abi"
)

// RequireNoLeak fails the test unless every block m handed out was freed
// exactly once.
func RequireNoLeak(t *testing.T, m *abi.Memory) {
	t.Helper()
	stats := m.Stats()
	require.Zero(t, stats.Live, "leaked %d blocks (%d bytes)", stats.Live, stats.Bytes)
	require.Zero(t, stats.UnknownFrees, "freed memory that was not live")
}

// AssertJSONEqual compares two JSON strings for equality, ignoring formatting
func AssertJSONEqual(t *testing.T, expected, actual string, msgAndArgs ...interface{}) {
	t.Helper()

	var expectedJSON, actualJSON interface{}
	require.NoError(t, json.Unmarshal([]byte(expected), &expectedJSON), "expected JSON is invalid")
	require.NoError(t, json.Unmarshal([]byte(actual), &actualJSON), "actual JSON is invalid")

	assert.Equal(t, expectedJSON, actualJSON, msgAndArgs...)
}
