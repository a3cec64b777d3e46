package decision

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const overridesYAML = `
overrides:
  MCI-556677:
    status: verified
    confidence: 140
  MCI-998877:
    status: Flagged
    confidence: 42
    issues:
      - "Demo: manual review requested"
`

func TestEngineOverrides(t *testing.T) {
	overrides, err := ParseOverrides([]byte(overridesYAML))
	require.NoError(t, err)
	require.Equal(t, 2, overrides.Len())

	engine := NewEngine(DefaultPolicy(), overrides)

	t.Run("forced verdict replaces the decision table", func(t *testing.T) {
		v := engine.Evaluate(claim("Pune", ""), truth(lotusAddress, "Active"))
		assert.True(t, v.Forced)
		assert.Equal(t, StatusVerified, v.Status)
		assert.Equal(t, 100, v.Confidence, "forced confidence is clamped")
		assert.Empty(t, v.Issues)
	})

	t.Run("unresolved identifiers stay unknown", func(t *testing.T) {
		v := engine.Evaluate(claim(lotusAddress, "Active"), nil)
		assert.False(t, v.Forced)
		assert.Equal(t, StatusUnknown, v.Status)
	})

	t.Run("identifiers without overrides use the decision table", func(t *testing.T) {
		v := NewEngine(DefaultPolicy(), nil).Evaluate(claim(lotusAddress, "Active"), truth(lotusAddress, "Active"))
		assert.False(t, v.Forced)
		assert.Equal(t, StatusVerified, v.Status)
	})

	t.Run("returned issues are copies", func(t *testing.T) {
		first, ok := overrides.Lookup("MCI-998877")
		require.True(t, ok)
		first.Issues[0] = "mutated"

		second, ok := overrides.Lookup("MCI-998877")
		require.True(t, ok)
		assert.Equal(t, "Demo: manual review requested", second.Issues[0])
	})
}

func TestParseOverridesRejectsInvalidStatuses(t *testing.T) {
	_, err := ParseOverrides([]byte("overrides:\n  MCI-1:\n    status: Approved\n"))
	assert.ErrorContains(t, err, "unknown status")

	_, err = ParseOverrides([]byte("overrides:\n  MCI-1:\n    status: Unknown\n"))
	assert.ErrorContains(t, err, "cannot be forced")
}

func TestLoadOverrides(t *testing.T) {
	t.Run("empty path disables overrides", func(t *testing.T) {
		o, err := LoadOverrides("")
		require.NoError(t, err)
		assert.Nil(t, o)
		_, ok := o.Lookup("MCI-556677")
		assert.False(t, ok)
	})

	t.Run("reads from disk", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "overrides.yaml")
		require.NoError(t, os.WriteFile(path, []byte(overridesYAML), 0o600))
		o, err := LoadOverrides(path)
		require.NoError(t, err)
		assert.Equal(t, 2, o.Len())
	})

	t.Run("missing file is an error", func(t *testing.T) {
		_, err := LoadOverrides(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}
