package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/specmend/specmend/document"
	"github.com/specmend/specmend/rules"
)

// cleanSpec satisfies both rule tiers with the default constraint table.
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
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Pet'
  /pets/{petId}:
    get:
      operationId: getPetById
      description: Fetch one pet by id
      parameters:
        - name: petId
          in: path
          required: true
          description: Pet identifier
          schema:
            type: string
      responses:
        '200':
          description: OK
components:
  schemas:
    Pet:
      type: object
      properties:
        name:
          type: string
`

func mustLoad(t *testing.T, data string) *document.Document {
	t.Helper()
	doc, err := document.Load([]byte(data))
	require.NoError(t, err)
	return doc
}

// TestValidatorNew tests the New constructor
func TestValidatorNew(t *testing.T) {
	v := New(nil)
	require.NotNil(t, v)
	assert.True(t, v.IncludeWarnings, "warnings should be reported by default")
	assert.NotNil(t, v.Rules, "nil table should select defaults")
}

// TestValidateClean tests that a conforming document yields no violations
func TestValidateClean(t *testing.T) {
	v := New(nil)
	violations := v.Validate(mustLoad(t, cleanSpec))
	assert.Empty(t, violations)
}

// TestValidateConvertedSwagger tests that a Swagger 2.0 document converts
// on load into a structurally valid 3.0 document, refs rewritten included
func TestValidateConvertedSwagger(t *testing.T) {
	const swagger = `swagger: "2.0"
info:
  title: Petstore
  version: 1.0.0
host: api.example.com
basePath: /v1
paths:
  /pets:
    post:
      operationId: createPet
      description: Register a pet
      parameters:
        - name: pet
          in: body
          description: Pet to register
          schema:
            $ref: '#/definitions/Pet'
      responses:
        '201':
          description: Created
          schema:
            $ref: '#/definitions/Pet'
definitions:
  Pet:
    type: object
    properties:
      name:
        type: string
`
	doc := mustLoad(t, swagger)
	require.True(t, doc.Has(document.Path{"components", "schemas", "Pet"}))

	violations := New(nil).Validate(doc)
	assert.Zero(t, ErrorCount(violations),
		"converted document should have no structural or gateway errors: %v", violations)
}

// TestValidateDeterministic tests that repeated runs produce identical output
func TestValidateDeterministic(t *testing.T) {
	const messy = `openapi: 3.0.3
info:
  title: Messy
  version: 1.0.0
paths:
  /b:
    get:
      responses:
        '200':
          description: OK
  /a:
    get:
      responses:
        '200':
          description: OK
`
	v := New(nil)
	doc := mustLoad(t, messy)

	first := v.Validate(doc)
	second := v.Validate(doc)
	require.NotEmpty(t, first)
	assert.Equal(t, first, second)

	// Errors before warnings, then lexical by path.
	for i := 1; i < len(first); i++ {
		prev, curr := first[i-1], first[i]
		if prev.Severity == curr.Severity {
			assert.LessOrEqual(t, prev.Path, curr.Path)
		} else {
			assert.Less(t, int(prev.Severity), int(curr.Severity))
		}
	}
}

// TestValidateMissingOperationID tests that an operation without an
// operationId produces exactly one error at the operation node
func TestValidateMissingOperationID(t *testing.T) {
	const spec = `openapi: 3.0.3
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
	v := New(nil)
	violations := v.Validate(mustLoad(t, spec))

	var matches []Violation
	for _, viol := range violations {
		if viol.RuleID == RuleOperationIDRequired {
			matches = append(matches, viol)
		}
	}
	require.Len(t, matches, 1)
	assert.Equal(t, SeverityError, matches[0].Severity)
	assert.Equal(t, "paths./pets.get", matches[0].Path)
	assert.Contains(t, matches[0].Message, "getPets", "suggestion should derive from method and path")
	assert.Greater(t, matches[0].Line, 0, "provenance should point at the operation node")
}

// TestValidateOperationIDPattern tests rejection of ids outside the
// configured pattern
func TestValidateOperationIDPattern(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: "list pets!"
      summary: List all pets
      responses:
        '200':
          description: OK
`
	v := New(nil)
	violations := v.Validate(mustLoad(t, spec))

	found := false
	for _, viol := range violations {
		if viol.RuleID == RuleOperationIDPattern {
			found = true
			assert.Equal(t, SeverityError, viol.Severity)
			assert.Equal(t, "paths./pets.get.operationId", viol.Path)
			assert.Equal(t, "list pets!", viol.Value)
		}
	}
	assert.True(t, found, "expected a pattern violation")
}

// TestValidateDuplicateOperationID tests that reused ids are reported once
// per duplicate occurrence
func TestValidateDuplicateOperationID(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      summary: List
      responses:
        '200':
          description: OK
    post:
      operationId: listPets
      summary: Create
      responses:
        '201':
          description: Created
`
	v := New(nil)
	violations := v.Validate(mustLoad(t, spec))

	count := 0
	for _, viol := range violations {
		if viol.RuleID == RuleDuplicateOperationID {
			count++
			assert.Equal(t, "paths./pets.post.operationId", viol.Path)
		}
	}
	assert.Equal(t, 1, count)
}

// TestValidateStructuralRoot tests root-level required field checks
func TestValidateStructuralRoot(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: ""
paths:
  pets:
    get:
      operationId: listPets
      summary: List
      responses: {}
`
	v := New(nil)
	violations := v.Validate(mustLoad(t, spec))

	byRule := make(map[string]int)
	for _, viol := range violations {
		byRule[viol.RuleID]++
	}
	assert.Equal(t, 1, byRule[RuleInfoTitle])
	assert.Equal(t, 1, byRule[RuleInfoVersion])
	assert.Equal(t, 1, byRule[RulePathLeadingSlash])
	assert.Equal(t, 1, byRule[RuleOperationResponses])
}

// TestValidatePathParamRequired tests that path parameters must declare
// required: true
func TestValidatePathParamRequired(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets/{petId}:
    get:
      operationId: getPetById
      summary: Fetch
      parameters:
        - name: petId
          in: path
          description: Pet identifier
          schema:
            type: string
      responses:
        '200':
          description: OK
`
	v := New(nil)
	violations := v.Validate(mustLoad(t, spec))

	found := false
	for _, viol := range violations {
		if viol.RuleID == RulePathParamRequired {
			found = true
			assert.Equal(t, "paths./pets/{petId}.get.parameters.0", viol.Path)
		}
	}
	assert.True(t, found)
}

// TestValidateRefs tests reference resolution, cycles, and external refs
func TestValidateRefs(t *testing.T) {
	t.Run("dangling ref is an error", func(t *testing.T) {
		const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      summary: List
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: '#/components/schemas/Missing'
`
		violations := New(nil).Validate(mustLoad(t, spec))
		found := false
		for _, viol := range violations {
			if viol.RuleID == RuleRefResolution {
				found = true
				assert.Equal(t, SeverityError, viol.Severity)
				assert.Equal(t, "#/components/schemas/Missing", viol.Value)
			}
		}
		assert.True(t, found)
	})

	t.Run("cyclic pure-ref chain is an error", func(t *testing.T) {
		const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths: {}
components:
  schemas:
    A:
      $ref: '#/components/schemas/B'
    B:
      $ref: '#/components/schemas/A'
`
		violations := New(nil).Validate(mustLoad(t, spec))
		found := false
		for _, viol := range violations {
			if viol.RuleID == RuleRefCycle {
				found = true
			}
		}
		assert.True(t, found)
	})

	t.Run("external ref is a warning", func(t *testing.T) {
		const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      summary: List
      responses:
        '200':
          description: OK
          content:
            application/json:
              schema:
                $ref: 'common.yaml#/Pet'
`
		v := New(nil)
		violations := v.Validate(mustLoad(t, spec))
		found := false
		for _, viol := range violations {
			if viol.RuleID == RuleRefExternal {
				found = true
				assert.Equal(t, SeverityWarning, viol.Severity)
			}
		}
		assert.True(t, found)

		v.IncludeWarnings = false
		for _, viol := range v.Validate(mustLoad(t, spec)) {
			assert.NotEqual(t, RuleRefExternal, viol.RuleID, "warnings should be filtered")
		}
	})
}

// TestValidateSchemaDepth tests the nesting depth limit
func TestValidateSchemaDepth(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths: {}
components:
  schemas:
    Deep:
      type: object
      properties:
        a:
          type: object
          properties:
            b:
              type: object
              properties:
                c:
                  type: string
`
	table := rules.Default()
	table.MaxSchemaDepth = 2
	violations := New(table).Validate(mustLoad(t, spec))

	found := false
	for _, viol := range violations {
		if viol.RuleID == RuleSchemaDepth {
			found = true
			assert.Equal(t, "components.schemas.Deep", viol.Path)
			assert.Equal(t, 4, viol.Value)
		}
	}
	require.True(t, found)

	table.MaxSchemaDepth = 4
	for _, viol := range New(table).Validate(mustLoad(t, spec)) {
		assert.NotEqual(t, RuleSchemaDepth, viol.RuleID)
	}
}

// TestValidateDisallowedKeyword tests the gateway keyword blocklist
func TestValidateDisallowedKeyword(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths: {}
components:
  schemas:
    Pet:
      type: object
      properties:
        tag:
          not:
            type: integer
`
	table := rules.Default()
	table.DisallowedKeywords = []string{"not"}
	violations := New(table).Validate(mustLoad(t, spec))

	found := false
	for _, viol := range violations {
		if viol.RuleID == RuleDisallowedKeyword {
			found = true
			assert.Equal(t, "components.schemas.Pet.properties.tag.not", viol.Path)
			assert.Equal(t, "not", viol.Value)
		}
	}
	assert.True(t, found)
}

// TestValidateDescriptionRequired tests operation and parameter
// description requirements
func TestValidateDescriptionRequired(t *testing.T) {
	const spec = `openapi: 3.0.3
info:
  title: Pet Store
  version: 1.0.0
paths:
  /pets:
    get:
      operationId: listPets
      parameters:
        - name: limit
          in: query
          schema:
            type: integer
      responses:
        '200':
          description: OK
`
	violations := New(nil).Validate(mustLoad(t, spec))

	paths := make(map[string]bool)
	for _, viol := range violations {
		if viol.RuleID == RuleDescriptionRequired {
			paths[viol.Path] = true
		}
	}
	assert.True(t, paths["paths./pets.get"], "operation needs a description or summary")
	assert.True(t, paths["paths./pets.get.parameters.0"], "parameter needs a description")

	table := rules.Default()
	table.RequireDescriptions = false
	for _, viol := range New(table).Validate(mustLoad(t, spec)) {
		assert.NotEqual(t, RuleDescriptionRequired, viol.RuleID)
	}
}

// TestSuggestOperationID tests id suggestions derived from method and path
func TestSuggestOperationID(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{"get", "/pets", "getPets"},
		{"get", "/pets/{petId}", "getPetsByPetId"},
		{"post", "/v1/pet-store/orders", "postV1PetstoreOrders"},
		{"delete", "/", "delete"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, suggestOperationID(tc.method, tc.path), "%s %s", tc.method, tc.path)
	}
}

// TestViolationString tests the rendered form of a violation
func TestViolationString(t *testing.T) {
	viol := Violation{
		Path:     "paths./pets.get",
		RuleID:   RuleOperationIDRequired,
		Message:  "Operation must have an operationId",
		Severity: SeverityError,
		Line:     6,
		Column:   5,
	}
	s := viol.String()
	assert.Contains(t, s, "paths./pets.get")
	assert.Contains(t, s, "line 6")
	assert.Contains(t, s, RuleOperationIDRequired)
}
