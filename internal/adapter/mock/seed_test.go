package mock

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFixture(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rivers.json")
	data, err := json.Marshal(Seed(seedTime))
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0o600))

	f, err := LoadFixture(path)
	require.NoError(t, err)
	assert.Len(t, f.Rivers, 3)
	assert.Equal(t, "Rio Paranapanema", f.Rivers[2].Name)
	assert.Len(t, f.Forecasts, 3)
	assert.True(t, f.GeneratedAt.Equal(seedTime))
}

func TestLoadFixture_Errors(t *testing.T) {
	_, err := LoadFixture(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"rivers":[{"alertLevel":"purple"}]}`), 0o600))
	_, err = LoadFixture(bad)
	require.Error(t, err)
}
