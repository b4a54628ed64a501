package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cleanSpec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      summary: List all pets
      responses:
        '200':
          description: OK
`

const dirtySpec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      summary: List all pets
      responses:
        '200':
          description: OK
`

func writeSpec(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// TestValidateOutputFormat tests the format flag validation
func TestValidateOutputFormat(t *testing.T) {
	assert.NoError(t, ValidateOutputFormat(FormatText))
	assert.NoError(t, ValidateOutputFormat(FormatJSON))
	assert.NoError(t, ValidateOutputFormat(FormatYAML))
	assert.Error(t, ValidateOutputFormat("xml"))
}

// TestSetupValidateFlags tests validate flag registration and defaults
func TestSetupValidateFlags(t *testing.T) {
	fs, flags := SetupValidateFlags()
	require.NoError(t, fs.Parse([]string{"-no-warnings", "-q", "spec.yaml"}))
	assert.True(t, flags.NoWarnings)
	assert.True(t, flags.Quiet)
	assert.Equal(t, FormatText, flags.Format)
	assert.Equal(t, "spec.yaml", fs.Arg(0))
}

// TestHandleValidate tests the validate command end to end
func TestHandleValidate(t *testing.T) {
	t.Run("clean spec passes", func(t *testing.T) {
		err := HandleValidate([]string{"-q", writeSpec(t, cleanSpec)})
		assert.NoError(t, err)
	})

	t.Run("dirty spec fails", func(t *testing.T) {
		err := HandleValidate([]string{"-q", writeSpec(t, dirtySpec)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation failed")
	})

	t.Run("missing file", func(t *testing.T) {
		assert.Error(t, HandleValidate([]string{"-q", "/nonexistent/spec.yaml"}))
	})

	t.Run("no arguments", func(t *testing.T) {
		assert.Error(t, HandleValidate([]string{}))
	})
}

// TestHandleConvert tests the convert command with an OAS 2.0 input
func TestHandleConvert(t *testing.T) {
	const swagger = `swagger: "2.0"
info:
  title: Legacy
  version: 1.0.0
host: api.example.com
paths: {}
`
	out := filepath.Join(t.TempDir(), "out.yaml")
	err := HandleConvert([]string{"-q", "-o", out, writeSpec(t, swagger)})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "openapi: 3.0.3")
	assert.Contains(t, string(data), "https://api.example.com")
}

// TestHandleExtract tests the extract command
func TestHandleExtract(t *testing.T) {
	t.Run("known operation", func(t *testing.T) {
		out := filepath.Join(t.TempDir(), "out.yaml")
		err := HandleExtract([]string{"-ops", "listPets", "-o", out, writeSpec(t, cleanSpec)})
		require.NoError(t, err)

		data, err := os.ReadFile(out)
		require.NoError(t, err)
		assert.Contains(t, string(data), "listPets")
	})

	t.Run("unknown operation", func(t *testing.T) {
		err := HandleExtract([]string{"-ops", "nosuchOp", writeSpec(t, cleanSpec)})
		assert.Error(t, err)
	})

	t.Run("missing ops flag", func(t *testing.T) {
		assert.Error(t, HandleExtract([]string{writeSpec(t, cleanSpec)}))
	})
}

// TestHandleRepairCleanSpec tests that repair of a clean spec converges
// without a model client
func TestHandleRepairCleanSpec(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.yaml")
	err := HandleRepair([]string{"-q", "-o", out, writeSpec(t, cleanSpec)})
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "listPets")
}

// TestHandleRepairDryRun tests that -dry-run reports without a model client
func TestHandleRepairDryRun(t *testing.T) {
	t.Run("clean spec", func(t *testing.T) {
		assert.NoError(t, HandleRepair([]string{"-dry-run", "-q", writeSpec(t, cleanSpec)}))
	})

	t.Run("dirty spec", func(t *testing.T) {
		err := HandleRepair([]string{"-dry-run", "-q", writeSpec(t, dirtySpec)})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "needs repair")
	})
}

// TestRejectSymlinkOutput tests the symlink write guard
func TestRejectSymlinkOutput(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "target.yaml")
	require.NoError(t, os.WriteFile(target, []byte("x"), 0o600))
	link := filepath.Join(dir, "link.yaml")
	require.NoError(t, os.Symlink(target, link))

	assert.Error(t, RejectSymlinkOutput(link))
	assert.NoError(t, RejectSymlinkOutput(target))
	assert.NoError(t, RejectSymlinkOutput(filepath.Join(dir, "new.yaml")))
}

// TestLoadRulesTable tests rules resolution from flag values
func TestLoadRulesTable(t *testing.T) {
	table, err := LoadRulesTable("")
	require.NoError(t, err)
	assert.Equal(t, 5, table.MaxSchemaDepth)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max-schema-depth: 3\n"), 0o600))
	table, err = LoadRulesTable(path)
	require.NoError(t, err)
	assert.Equal(t, 3, table.MaxSchemaDepth)

	_, err = LoadRulesTable("/nonexistent/rules.yaml")
	assert.Error(t, err)
}
