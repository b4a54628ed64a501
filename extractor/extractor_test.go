package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.yaml.in/yaml/v4"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/specerrors"
)

const storeSpec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
servers:
  - url: https://api.example.com/v1
security:
  - apiKey: []
tags:
  - name: pets
    description: Pet operations
  - name: orders
    description: Order operations
paths:
  /pets:
    parameters:
      - name: traceId
        in: header
        description: Trace header
        schema:
          type: string
    get:
      operationId: listPets
      summary: List all pets
      tags: [pets]
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: '#/components/schemas/Pet'
    post:
      operationId: createPet
      summary: Create a pet
      tags: [pets]
      requestBody:
        content:
          application/json:
            schema:
              $ref: '#/components/schemas/Pet'
      responses:
        '201':
          description: Created
  /orders:
    get:
      operationId: listOrders
      summary: List orders
      tags: [orders]
      security:
        - oauth: [read]
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Order'
components:
  schemas:
    Category:
      type: object
      properties:
        name:
          type: string
    Pet:
      type: object
      properties:
        name:
          type: string
        category:
          $ref: '#/components/schemas/Category'
    Order:
      type: object
      properties:
        petId:
          type: integer
  securitySchemes:
    apiKey:
      type: apiKey
      name: X-API-Key
      in: header
    oauth:
      type: http
      scheme: bearer
`

func loadStoreSpec(t *testing.T) *document.Document {
	t.Helper()
	doc, err := document.Load([]byte(storeSpec))
	require.NoError(t, err)
	return doc
}

// TestExtractUnknownOperation tests the unknown-id error
func TestExtractUnknownOperation(t *testing.T) {
	doc := loadStoreSpec(t)

	_, err := Extract(doc, Request{OperationIDs: []string{"listPets", "nosuchOp"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, specerrors.ErrUnknownOperation)

	var unknown *specerrors.UnknownOperationError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "nosuchOp", unknown.OperationID)
}

// TestExtractEmptyRequest tests that at least one id must be requested
func TestExtractEmptyRequest(t *testing.T) {
	_, err := Extract(loadStoreSpec(t), Request{})
	assert.Error(t, err)
}

// TestExtractSingleOperation tests the shape of a one-operation extract
func TestExtractSingleOperation(t *testing.T) {
	doc := loadStoreSpec(t)
	out, err := Extract(doc, Request{OperationIDs: []string{"listPets"}})
	require.NoError(t, err)

	// Kept: the selected operation and the path item's shared keys.
	assert.True(t, out.Has(document.Path{"paths", "/pets", "get"}))
	assert.True(t, out.Has(document.Path{"paths", "/pets", "parameters"}))
	// Dropped: the sibling operation and the unrelated path.
	assert.False(t, out.Has(document.Path{"paths", "/pets", "post"}))
	assert.False(t, out.Has(document.Path{"paths", "/orders"}))

	// Metadata carries over.
	assert.True(t, out.Has(document.Path{"info", "title"}))
	assert.True(t, out.Has(document.Path{"servers"}))
	assert.True(t, out.Has(document.Path{"security"}))

	// Transitive closure: Pet pulls in Category; Order stays out.
	assert.True(t, out.Has(document.Path{"components", "schemas", "Pet"}))
	assert.True(t, out.Has(document.Path{"components", "schemas", "Category"}))
	assert.False(t, out.Has(document.Path{"components", "schemas", "Order"}))

	// Global security keeps its scheme; the unused one is dropped.
	assert.True(t, out.Has(document.Path{"components", "securitySchemes", "apiKey"}))
	assert.False(t, out.Has(document.Path{"components", "securitySchemes", "oauth"}))

	// Only the pets tag survives.
	tags, ok := out.Lookup(document.Path{"tags"})
	require.True(t, ok)
	require.Len(t, tags.Content, 1)
	name, _ := document.MapGet(tags.Content[0], "name")
	assert.Equal(t, "pets", name.Value)
}

// TestExtractOperationSecurity tests that operation-level security pulls
// in its scheme
func TestExtractOperationSecurity(t *testing.T) {
	out, err := Extract(loadStoreSpec(t), Request{OperationIDs: []string{"listOrders"}})
	require.NoError(t, err)

	assert.True(t, out.Has(document.Path{"components", "securitySchemes", "oauth"}))
	assert.True(t, out.Has(document.Path{"components", "schemas", "Order"}))
	assert.False(t, out.Has(document.Path{"components", "schemas", "Pet"}))
}

// TestExtractClosureHasNoDanglingRefs tests the closure property: every
// local ref in an extract resolves within the extract
func TestExtractClosureHasNoDanglingRefs(t *testing.T) {
	for _, ids := range [][]string{
		{"listPets"},
		{"createPet"},
		{"listOrders"},
		{"listPets", "listOrders"},
	} {
		out, err := Extract(loadStoreSpec(t), Request{OperationIDs: ids})
		require.NoError(t, err)

		collectRefs(out.Root(), func(ref string) {
			key, ok := componentKey(ref)
			require.True(t, ok, "unexpected non-component ref %q", ref)
			section, name, _ := cutKey(key)
			assert.True(t, out.Has(document.Path{"components", section, name}),
				"extract for %v has dangling ref %q", ids, ref)
		})
	}
}

// TestExtractPreservesSourceOrder tests that components keep their source
// ordering
func TestExtractPreservesSourceOrder(t *testing.T) {
	out, err := Extract(loadStoreSpec(t), Request{OperationIDs: []string{"listPets"}})
	require.NoError(t, err)

	schemas, ok := out.Lookup(document.Path{"components", "schemas"})
	require.True(t, ok)
	entries := document.MapEntries(schemas)
	require.Len(t, entries, 2)
	assert.Equal(t, "Category", entries[0].Key, "source order, not request order")
	assert.Equal(t, "Pet", entries[1].Key)
}

// TestExtractIsolation tests that the extract shares no nodes with the
// source document
func TestExtractIsolation(t *testing.T) {
	doc := loadStoreSpec(t)
	out, err := Extract(doc, Request{OperationIDs: []string{"listPets"}})
	require.NoError(t, err)

	title, ok := out.Lookup(document.Path{"info", "title"})
	require.True(t, ok)
	title.Value = "Mutated"

	original, _ := doc.Lookup(document.Path{"info", "title"})
	assert.Equal(t, "Pet Store", original.Value)
}

// TestExtractMarshals tests that an extract serializes cleanly
func TestExtractMarshals(t *testing.T) {
	out, err := Extract(loadStoreSpec(t), Request{OperationIDs: []string{"createPet"}})
	require.NoError(t, err)

	data, err := out.Marshal(document.FormatYAML)
	require.NoError(t, err)

	var roundTrip yaml.Node
	require.NoError(t, yaml.Unmarshal(data, &roundTrip))
}

func cutKey(key string) (section, name string, ok bool) {
	for i := range key {
		if key[i] == '/' {
			return key[:i], key[i+1:], true
		}
	}
	return key, "", false
}
