package rules

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDefault tests the built-in constraint table
func TestDefault(t *testing.T) {
	table := Default()
	require.NotNil(t, table)

	assert.Equal(t, 5, table.MaxSchemaDepth)
	assert.True(t, table.RequireDescriptions)
	assert.Empty(t, table.DisallowedKeywords)

	pattern := table.Pattern()
	require.NotNil(t, pattern)
	assert.True(t, pattern.MatchString("listPets"))
	assert.True(t, pattern.MatchString("get_pet-by-id"))
	assert.False(t, pattern.MatchString("list pets"))
	assert.False(t, pattern.MatchString(""))
}

// TestLoadFile tests layering a YAML file over defaults
func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	content := `max-schema-depth: 3
disallowed-keywords:
  - oneOf
  - anyOf
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	table, err := LoadFile(path)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, 3, table.MaxSchemaDepth)
	assert.True(t, table.IsDisallowed("oneOf"))
	assert.True(t, table.IsDisallowed("anyOf"))
	assert.False(t, table.IsDisallowed("allOf"))

	// Defaults retained for keys absent from the file
	assert.True(t, table.RequireDescriptions)
	require.NotNil(t, table.Pattern())
}

// TestLoadFile_MissingFile tests the error path
func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

// TestLoadFile_BadPattern tests rejection of an invalid regexp
func TestLoadFile_BadPattern(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("operation-id-pattern: '['\n"), 0o600))

	_, err := LoadFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "operation-id-pattern")
}

// TestLoadFile_NegativeDepth tests rejection of a negative depth limit
func TestLoadFile_NegativeDepth(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max-schema-depth: -1\n"), 0o600))

	_, err := LoadFile(path)
	assert.Error(t, err)
}
