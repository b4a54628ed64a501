package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petSwagger = `swagger: "2.0"
info:
  title: Petstore
  version: 1.0.0
host: api.example.com
basePath: /v1
schemes:
  - https
consumes:
  - application/json
produces:
  - application/json
paths:
  /pets:
    get:
      operationId: listPets
      responses:
        "200":
          description: pets
          schema:
            type: array
            items:
              $ref: "#/definitions/Pet"
    post:
      operationId: createPet
      parameters:
        - name: pet
          in: body
          required: true
          schema:
            $ref: "#/definitions/Pet"
      responses:
        "201":
          description: created
definitions:
  Pet:
    type: object
    properties:
      id:
        type: integer
      name:
        type: string
`

// TestNormalize_DefinitionsBecomeComponentSchemas tests the definitions
// migration and $ref rewriting scenario
func TestNormalize_DefinitionsBecomeComponentSchemas(t *testing.T) {
	doc, err := Load([]byte(petSwagger))
	require.NoError(t, err)
	assert.Equal(t, "3.0.3", doc.Version())
	assert.Equal(t, "2.0", doc.SourceVersion())

	// definitions.Pet moved to components.schemas.Pet with content intact
	pet, ok := doc.Lookup(Path{"components", "schemas", "Pet"})
	require.True(t, ok, "components.schemas.Pet should exist")
	typ, ok := MapGet(pet, "type")
	require.True(t, ok)
	assert.Equal(t, "object", typ.Value)
	props, ok := MapGet(pet, "properties")
	require.True(t, ok)
	require.Len(t, MapEntries(props), 2)

	// the old definitions section is gone
	assert.False(t, doc.Has(Path{"definitions"}))

	// the array items $ref was rewritten to the components form
	ref, ok := doc.Lookup(Path{"paths", "/pets", "get", "responses", "200", "content",
		"application/json", "schema", "items", "$ref"})
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/Pet", ref.Value)
}

// TestNormalize_BodyParameterBecomesRequestBody tests body parameter conversion
func TestNormalize_BodyParameterBecomesRequestBody(t *testing.T) {
	doc, err := Load([]byte(petSwagger))
	require.NoError(t, err)

	body, ok := doc.Lookup(Path{"paths", "/pets", "post", "requestBody"})
	require.True(t, ok, "post should have a requestBody")

	required, ok := MapGet(body, "required")
	require.True(t, ok)
	assert.Equal(t, "true", required.Value)

	ref, ok := doc.Lookup(Path{"paths", "/pets", "post", "requestBody", "content",
		"application/json", "schema", "$ref"})
	require.True(t, ok)
	assert.Equal(t, "#/components/schemas/Pet", ref.Value)

	// the body parameter left no parameters list behind
	assert.False(t, doc.Has(Path{"paths", "/pets", "post", "parameters"}))
}

// TestNormalize_Servers tests host/basePath/schemes conversion
func TestNormalize_Servers(t *testing.T) {
	doc, err := Load([]byte(petSwagger))
	require.NoError(t, err)

	url, ok := doc.Lookup(Path{"servers", "0", "url"})
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com/v1", url.Value)

	assert.False(t, doc.Has(Path{"host"}))
	assert.False(t, doc.Has(Path{"basePath"}))
	assert.False(t, doc.Has(Path{"schemes"}))
}

// TestNormalize_ResponseSchemaBecomesContent tests produces-scoped content
func TestNormalize_ResponseSchemaBecomesContent(t *testing.T) {
	input := `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /things:
    get:
      produces:
        - application/json
        - application/xml
      responses:
        "200":
          description: ok
          schema:
            type: string
`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	for _, mediaType := range []string{"application/json", "application/xml"} {
		schema, ok := doc.Lookup(Path{"paths", "/things", "get", "responses", "200",
			"content", mediaType, "schema", "type"})
		require.True(t, ok, "content for %s should exist", mediaType)
		assert.Equal(t, "string", schema.Value)
	}

	assert.False(t, doc.Has(Path{"paths", "/things", "get", "responses", "200", "schema"}))
	assert.False(t, doc.Has(Path{"paths", "/things", "get", "produces"}))
}

// TestNormalize_NonBodyParameterSchema tests type keyword nesting
func TestNormalize_NonBodyParameterSchema(t *testing.T) {
	input := `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /pets/{petId}:
    get:
      parameters:
        - name: petId
          in: path
          required: true
          type: integer
          format: int64
      responses:
        "200":
          description: ok
`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	param, ok := doc.Lookup(Path{"paths", "/pets/{petId}", "get", "parameters", "0"})
	require.True(t, ok)

	// type keywords moved under schema
	_, hasType := MapGet(param, "type")
	assert.False(t, hasType)
	schema, ok := MapGet(param, "schema")
	require.True(t, ok)
	typ, ok := MapGet(schema, "type")
	require.True(t, ok)
	assert.Equal(t, "integer", typ.Value)
	format, ok := MapGet(schema, "format")
	require.True(t, ok)
	assert.Equal(t, "int64", format.Value)
}

// TestNormalize_FormDataParameters tests formData merging into a requestBody
func TestNormalize_FormDataParameters(t *testing.T) {
	input := `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /upload:
    post:
      consumes:
        - application/x-www-form-urlencoded
      parameters:
        - name: label
          in: formData
          required: true
          type: string
        - name: count
          in: formData
          type: integer
      responses:
        "204":
          description: ok
`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	schema, ok := doc.Lookup(Path{"paths", "/upload", "post", "requestBody", "content",
		"application/x-www-form-urlencoded", "schema"})
	require.True(t, ok)

	props, ok := MapGet(schema, "properties")
	require.True(t, ok)
	assert.Len(t, MapEntries(props), 2)

	required, ok := MapGet(schema, "required")
	require.True(t, ok)
	require.Len(t, required.Content, 1)
	assert.Equal(t, "label", required.Content[0].Value)
}

// TestNormalize_SecurityDefinitions tests security scheme conversion
func TestNormalize_SecurityDefinitions(t *testing.T) {
	input := `swagger: "2.0"
info: {title: T, version: "1"}
paths: {}
securityDefinitions:
  basicAuth:
    type: basic
  keyAuth:
    type: apiKey
    name: X-API-Key
    in: header
  oauth:
    type: oauth2
    flow: accessCode
    authorizationUrl: https://example.com/auth
    tokenUrl: https://example.com/token
    scopes:
      read: read access
`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	basic, ok := doc.Lookup(Path{"components", "securitySchemes", "basicAuth"})
	require.True(t, ok)
	typ, _ := MapGet(basic, "type")
	assert.Equal(t, "http", typ.Value)
	scheme, _ := MapGet(basic, "scheme")
	assert.Equal(t, "basic", scheme.Value)

	// apiKey passes through unchanged
	key, ok := doc.Lookup(Path{"components", "securitySchemes", "keyAuth", "name"})
	require.True(t, ok)
	assert.Equal(t, "X-API-Key", key.Value)

	// accessCode flow renamed to authorizationCode
	tokenURL, ok := doc.Lookup(Path{"components", "securitySchemes", "oauth", "flows",
		"authorizationCode", "tokenUrl"})
	require.True(t, ok)
	assert.Equal(t, "https://example.com/token", tokenURL.Value)
}

// TestNormalize_TypeFile tests the file-to-binary-string conversion note
func TestNormalize_TypeFile(t *testing.T) {
	input := `swagger: "2.0"
info: {title: T, version: "1"}
paths:
  /upload:
    post:
      consumes: [multipart/form-data]
      parameters:
        - name: doc
          in: formData
          type: file
      responses:
        "204": {description: ok}
`
	doc, err := Load([]byte(input))
	require.NoError(t, err)

	typ, ok := doc.Lookup(Path{"paths", "/upload", "post", "requestBody", "content",
		"multipart/form-data", "schema", "properties", "doc", "type"})
	require.True(t, ok)
	assert.Equal(t, "string", typ.Value)

	var found bool
	for _, note := range doc.Notes() {
		if note.Message == "type 'file' converted to string with format binary" {
			found = true
		}
	}
	assert.True(t, found, "expected a note about the file type conversion")
}

// TestNormalize_LoadedDocumentIsStructurallyOAS3 tests that normalization
// produces every required top-level 3.0 field
func TestNormalize_LoadedDocumentIsStructurallyOAS3(t *testing.T) {
	doc, err := Load([]byte(petSwagger))
	require.NoError(t, err)

	openapi, ok := doc.Lookup(Path{"openapi"})
	require.True(t, ok)
	assert.Equal(t, "3.0.3", openapi.Value)
	assert.False(t, doc.Has(Path{"swagger"}))
	assert.True(t, doc.Has(Path{"info", "title"}))
	assert.True(t, doc.Has(Path{"info", "version"}))
	assert.True(t, doc.Has(Path{"paths"}))
	assert.False(t, doc.Has(Path{"consumes"}))
	assert.False(t, doc.Has(Path{"produces"}))
}
