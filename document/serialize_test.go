package document

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMarshalYAML_RoundTrip tests that a document survives a YAML round trip
func TestMarshalYAML_RoundTrip(t *testing.T) {
	doc, err := Load([]byte(minimalOAS3))
	require.NoError(t, err)

	out, err := doc.MarshalYAML()
	require.NoError(t, err)

	reloaded, err := Load(out)
	require.NoError(t, err)
	title, ok := reloaded.Lookup(Path{"info", "title"})
	require.True(t, ok)
	assert.Equal(t, "Test API", title.Value)
}

// TestMarshalJSON_ValidAndOrdered tests the ordered JSON encoder
func TestMarshalJSON_ValidAndOrdered(t *testing.T) {
	input := `{"openapi": "3.0.0", "info": {"title": "T", "version": "1"}, "paths": {}, "zfirst": true, "alast": null}`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	out, err := doc.MarshalJSON()
	require.NoError(t, err)

	// Output must be valid JSON
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, "3.0.0", decoded["openapi"])
	assert.Equal(t, true, decoded["zfirst"])

	// Source key order is preserved: zfirst before alast
	s := string(out)
	assert.Less(t, strings.Index(s, "zfirst"), strings.Index(s, "alast"))
}

// TestMarshalJSON_ScalarTypes tests typed scalar rendering
func TestMarshalJSON_ScalarTypes(t *testing.T) {
	input := `openapi: "3.0.0"
info: {title: T, version: "1"}
paths: {}
x-count: 42
x-rate: 0.5
x-on: true
x-none: null
x-text: "42"
`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	out, err := doc.MarshalJSON()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.EqualValues(t, 42, decoded["x-count"])
	assert.EqualValues(t, 0.5, decoded["x-rate"])
	assert.Equal(t, true, decoded["x-on"])
	assert.Nil(t, decoded["x-none"])
	assert.Equal(t, "42", decoded["x-text"], "quoted scalars stay strings")
}

// TestMarshal_MatchesSourceFormat tests the format preference routing
func TestMarshal_MatchesSourceFormat(t *testing.T) {
	jsonDoc, err := Load([]byte(`{"openapi": "3.0.0", "info": {"title": "T", "version": "1"}, "paths": {}}`))
	require.NoError(t, err)
	out, err := jsonDoc.Marshal(FormatUnknown)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(strings.TrimSpace(string(out)), "{"))

	yamlDoc, err := Load([]byte(minimalOAS3))
	require.NoError(t, err)
	out, err = yamlDoc.Marshal(FormatUnknown)
	require.NoError(t, err)
	assert.False(t, strings.HasPrefix(strings.TrimSpace(string(out)), "{"))
}
