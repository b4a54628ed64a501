package document

import (
	"strconv"
	"strings"

	"github.com/specmend/specmend/internal/severity"
	"go.yaml.in/yaml/v4"
)

// normalizedVersion is the OpenAPI version 2.0 documents are converted to.
const normalizedVersion = "3.0.3"

// defaultMediaType is assumed when a 2.0 document declares no consumes or
// produces for an operation with a body or response schema.
const defaultMediaType = "application/json"

// operationMethods are the HTTP methods a 2.0 path item may carry.
var operationMethods = []string{"get", "put", "post", "delete", "options", "head", "patch"}

// refRewrites maps 2.0 local reference prefixes to their 3.0 equivalents.
// Order matters only for readability; prefixes do not overlap.
var refRewrites = [][2]string{
	{"#/definitions/", "#/components/schemas/"},
	{"#/parameters/", "#/components/parameters/"},
	{"#/responses/", "#/components/responses/"},
}

// normalizeOAS2 rewrites a Swagger 2.0 node tree into OpenAPI 3.0 in place.
// The mapping is fixed and deterministic; lossy steps are recorded as notes.
func normalizeOAS2(doc *Document, log Logger) {
	root := doc.root

	// swagger: "2.0" -> openapi: "3.0.3", keeping the marker's position.
	if keyNode, ok := MapKeyNode(root, "swagger"); ok {
		keyNode.Value = "openapi"
		if valNode, ok := MapGet(root, "openapi"); ok {
			valNode.Value = normalizedVersion
			valNode.Tag = "!!str"
			valNode.Style = 0
		}
	}

	normalizeServers(doc)

	globalConsumes := takeStringList(root, "consumes")
	globalProduces := takeStringList(root, "produces")

	normalizeComponents(doc, globalConsumes)

	if paths, ok := MapGet(root, "paths"); ok {
		for _, entry := range MapEntries(paths) {
			normalizePathItem(doc, entry.Value, Path{"paths", entry.Key}, globalConsumes, globalProduces, log)
		}
	}

	rewriteRefs(root)
}

// normalizeServers converts host/basePath/schemes into a servers array.
func normalizeServers(doc *Document) {
	root := doc.root
	host := takeScalar(root, "host")
	basePath := takeScalar(root, "basePath")
	schemes := takeStringList(root, "schemes")

	if host == "" && basePath == "" {
		return
	}

	servers := SequenceNode()
	if host == "" {
		server := MappingNode()
		MapSet(server, "url", ScalarNode(basePath))
		servers.Content = append(servers.Content, server)
	} else {
		if len(schemes) == 0 {
			schemes = []string{"https"}
			doc.addNote("servers", "no schemes declared, assuming https", severity.SeverityInfo)
		}
		for _, scheme := range schemes {
			server := MappingNode()
			MapSet(server, "url", ScalarNode(scheme+"://"+host+basePath))
			servers.Content = append(servers.Content, server)
		}
	}
	MapSet(root, "servers", servers)
}

// normalizeComponents moves 2.0 root-level component sections under
// components, converting security definitions to 3.0 scheme objects and
// shared body parameters to request bodies.
func normalizeComponents(doc *Document, globalConsumes []string) {
	root := doc.root
	components := MappingNode()

	if definitions, ok := MapGet(root, "definitions"); ok {
		MapSet(components, "schemas", definitions)
		MapDelete(root, "definitions")
	}

	if params, ok := MapGet(root, "parameters"); ok {
		shared := MappingNode()
		requestBodies := MappingNode()
		for _, entry := range MapEntries(params) {
			in, _ := MapGet(entry.Value, "in")
			if in != nil && in.Value == "body" {
				body := convertBodyParameter(doc, entry.Value, globalConsumes,
					Path{"components", "requestBodies", entry.Key})
				MapSet(requestBodies, entry.Key, body)
				doc.addNote("components.requestBodies."+entry.Key,
					"shared body parameter moved to components/requestBodies; $refs to it must be updated manually",
					severity.SeverityWarning)
				continue
			}
			convertNonBodyParameter(doc, entry.Value, Path{"components", "parameters", entry.Key})
			MapSet(shared, entry.Key, entry.Value)
		}
		if len(shared.Content) > 0 {
			MapSet(components, "parameters", shared)
		}
		if len(requestBodies.Content) > 0 {
			MapSet(components, "requestBodies", requestBodies)
		}
		MapDelete(root, "parameters")
	}

	if responses, ok := MapGet(root, "responses"); ok {
		for _, entry := range MapEntries(responses) {
			convertResponse(doc, entry.Value, nil, Path{"components", "responses", entry.Key})
		}
		MapSet(components, "responses", responses)
		MapDelete(root, "responses")
	}

	if secDefs, ok := MapGet(root, "securityDefinitions"); ok {
		for _, entry := range MapEntries(secDefs) {
			convertSecurityScheme(doc, entry.Value, Path{"components", "securitySchemes", entry.Key})
		}
		MapSet(components, "securitySchemes", secDefs)
		MapDelete(root, "securityDefinitions")
	}

	if len(components.Content) > 0 {
		MapSet(root, "components", components)
	}
}

// convertSecurityScheme rewrites a 2.0 security definition in place.
func convertSecurityScheme(doc *Document, scheme *yaml.Node, path Path) {
	typ, ok := MapGet(scheme, "type")
	if !ok {
		return
	}
	switch typ.Value {
	case "basic":
		typ.Value = "http"
		MapSet(scheme, "scheme", ScalarNode("basic"))
	case "oauth2":
		flowName := takeScalar(scheme, "flow")
		flow := MappingNode()
		for _, key := range []string{"authorizationUrl", "tokenUrl", "scopes"} {
			if v, ok := MapGet(scheme, key); ok {
				MapSet(flow, key, v)
				MapDelete(scheme, key)
			}
		}
		// Scopes are required on a 3.0 flow object even when empty.
		if _, ok := MapGet(flow, "scopes"); !ok {
			MapSet(flow, "scopes", MappingNode())
		}
		flows := MappingNode()
		MapSet(flows, oauthFlowName(flowName), flow)
		MapSet(scheme, "flows", flows)
		if flowName == "application" || flowName == "accessCode" {
			doc.addNote(path.String(), "oauth2 flow '"+flowName+"' renamed to '"+oauthFlowName(flowName)+"'",
				severity.SeverityInfo)
		}
	}
}

// oauthFlowName maps 2.0 oauth2 flow names to their 3.0 equivalents.
func oauthFlowName(name string) string {
	switch name {
	case "application":
		return "clientCredentials"
	case "accessCode":
		return "authorizationCode"
	case "password", "implicit":
		return name
	default:
		return "implicit"
	}
}

// normalizePathItem converts a single path item and its operations.
func normalizePathItem(doc *Document, pathItem *yaml.Node, at Path, globalConsumes, globalProduces []string, log Logger) {
	if pathItem == nil || pathItem.Kind != yaml.MappingNode {
		return
	}

	// Path-level parameters: convert non-body params in place; a body or
	// formData param at path level becomes a requestBody pushed down into
	// each operation that lacks one.
	var pathLevelBody *yaml.Node
	if params, ok := MapGet(pathItem, "parameters"); ok && params.Kind == yaml.SequenceNode {
		kept := params.Content[:0]
		for i, param := range params.Content {
			paramPath := at.Child("parameters").Child(itoa(i))
			switch parameterIn(param) {
			case "body":
				pathLevelBody = convertBodyParameter(doc, param, globalConsumes, paramPath)
			case "formData":
				pathLevelBody = convertFormDataParameters(doc, []*yaml.Node{param}, globalConsumes, paramPath)
			default:
				convertNonBodyParameter(doc, param, paramPath)
				kept = append(kept, param)
			}
		}
		params.Content = kept
		if len(params.Content) == 0 {
			MapDelete(pathItem, "parameters")
		}
	}

	for _, method := range operationMethods {
		op, ok := MapGet(pathItem, method)
		if !ok || op.Kind != yaml.MappingNode {
			continue
		}
		opPath := at.Child(method)
		normalizeOperation(doc, op, opPath, globalConsumes, globalProduces)
		if pathLevelBody != nil {
			if _, hasBody := MapGet(op, "requestBody"); !hasBody {
				MapSet(op, "requestBody", CopyNode(pathLevelBody))
				log.Debug("distributed path-level body parameter to operation", "path", opPath.String())
			}
		}
	}
}

// normalizeOperation converts one operation's parameters and responses.
func normalizeOperation(doc *Document, op *yaml.Node, at Path, globalConsumes, globalProduces []string) {
	consumes := takeStringList(op, "consumes")
	if consumes == nil {
		consumes = globalConsumes
	}
	produces := takeStringList(op, "produces")
	if produces == nil {
		produces = globalProduces
	}

	if params, ok := MapGet(op, "parameters"); ok && params.Kind == yaml.SequenceNode {
		var formData []*yaml.Node
		kept := params.Content[:0]
		for i, param := range params.Content {
			paramPath := at.Child("parameters").Child(itoa(i))
			switch parameterIn(param) {
			case "body":
				body := convertBodyParameter(doc, param, consumes, paramPath)
				MapSet(op, "requestBody", body)
			case "formData":
				formData = append(formData, param)
			default:
				convertNonBodyParameter(doc, param, paramPath)
				kept = append(kept, param)
			}
		}
		params.Content = kept
		if len(formData) > 0 {
			body := convertFormDataParameters(doc, formData, consumes, at.Child("parameters"))
			MapSet(op, "requestBody", body)
		}
		if len(params.Content) == 0 {
			MapDelete(op, "parameters")
		}
	}

	if responses, ok := MapGet(op, "responses"); ok {
		for _, entry := range MapEntries(responses) {
			convertResponse(doc, entry.Value, produces, at.Child("responses").Child(entry.Key))
		}
	}
}

// convertBodyParameter builds a 3.0 requestBody from a 2.0 body parameter.
func convertBodyParameter(doc *Document, param *yaml.Node, consumes []string, at Path) *yaml.Node {
	body := MappingNode()
	if desc, ok := MapGet(param, "description"); ok {
		MapSet(body, "description", desc)
	}
	if req, ok := MapGet(param, "required"); ok {
		MapSet(body, "required", req)
	}

	schema, hasSchema := MapGet(param, "schema")
	if !hasSchema {
		schema = MappingNode()
		doc.addNote(at.String(), "body parameter without schema, using empty schema", severity.SeverityWarning)
	}

	if len(consumes) == 0 {
		consumes = []string{defaultMediaType}
		doc.addNote(at.String(), "no consumes declared, assuming "+defaultMediaType, severity.SeverityInfo)
	}

	content := MappingNode()
	for i, mediaType := range consumes {
		media := MappingNode()
		if i == 0 {
			MapSet(media, "schema", schema)
		} else {
			MapSet(media, "schema", CopyNode(schema))
		}
		MapSet(content, mediaType, media)
	}
	MapSet(body, "content", content)
	return body
}

// convertFormDataParameters merges 2.0 formData parameters into a single
// 3.0 requestBody with an object schema.
func convertFormDataParameters(doc *Document, params []*yaml.Node, consumes []string, at Path) *yaml.Node {
	properties := MappingNode()
	required := SequenceNode()
	for _, param := range params {
		name := scalarValue(param, "name")
		if name == "" {
			continue
		}
		schema := extractParameterSchema(doc, param, at.Child(name))
		if desc, ok := MapGet(param, "description"); ok {
			MapSet(schema, "description", desc)
		}
		MapSet(properties, name, schema)
		if scalarValue(param, "required") == "true" {
			required.Content = append(required.Content, ScalarNode(name))
		}
	}

	schema := MappingNode()
	MapSet(schema, "type", ScalarNode("object"))
	MapSet(schema, "properties", properties)
	if len(required.Content) > 0 {
		MapSet(schema, "required", required)
	}

	mediaType := "application/x-www-form-urlencoded"
	for _, c := range consumes {
		if strings.HasPrefix(c, "multipart/") {
			mediaType = c
			break
		}
	}

	media := MappingNode()
	MapSet(media, "schema", schema)
	content := MappingNode()
	MapSet(content, mediaType, media)

	body := MappingNode()
	MapSet(body, "content", content)
	return body
}

// schemaKeywords are the 2.0 parameter fields that move into the nested
// schema object in 3.0.
var schemaKeywords = []string{
	"type", "format", "items", "default", "maximum", "exclusiveMaximum",
	"minimum", "exclusiveMinimum", "maxLength", "minLength", "pattern",
	"maxItems", "minItems", "uniqueItems", "enum", "multipleOf",
}

// convertNonBodyParameter moves a 2.0 parameter's type keywords into a
// nested schema object in place.
func convertNonBodyParameter(doc *Document, param *yaml.Node, at Path) {
	if param == nil || param.Kind != yaml.MappingNode {
		return
	}
	if _, isRef := MapGet(param, "$ref"); isRef {
		return
	}
	if _, hasSchema := MapGet(param, "schema"); hasSchema {
		return
	}
	schema := extractParameterSchema(doc, param, at)
	if len(schema.Content) > 0 {
		MapSet(param, "schema", schema)
	}
	if format := takeScalar(param, "collectionFormat"); format != "" {
		doc.addNote(at.String(), "collectionFormat '"+format+"' dropped (use style/explode in 3.0)",
			severity.SeverityWarning)
	}
}

// extractParameterSchema removes type keywords from a parameter node and
// returns them as a schema node, translating type:file to a binary string.
func extractParameterSchema(doc *Document, param *yaml.Node, at Path) *yaml.Node {
	schema := MappingNode()
	for _, key := range schemaKeywords {
		if v, ok := MapGet(param, key); ok {
			MapSet(schema, key, v)
			MapDelete(param, key)
		}
	}
	if typ, ok := MapGet(schema, "type"); ok && typ.Value == "file" {
		typ.Value = "string"
		MapSet(schema, "format", ScalarNode("binary"))
		doc.addNote(at.String(), "type 'file' converted to string with format binary", severity.SeverityInfo)
	}
	return schema
}

// convertResponse moves a 2.0 response schema into a content object and
// normalizes header type keywords.
func convertResponse(doc *Document, response *yaml.Node, produces []string, at Path) {
	if response == nil || response.Kind != yaml.MappingNode {
		return
	}
	if _, isRef := MapGet(response, "$ref"); isRef {
		return
	}

	if schema, ok := MapGet(response, "schema"); ok {
		MapDelete(response, "schema")
		if len(produces) == 0 {
			produces = []string{defaultMediaType}
		}
		content := MappingNode()
		for i, mediaType := range produces {
			media := MappingNode()
			if i == 0 {
				MapSet(media, "schema", schema)
			} else {
				MapSet(media, "schema", CopyNode(schema))
			}
			MapSet(content, mediaType, media)
		}
		MapSet(response, "content", content)
	}

	if headers, ok := MapGet(response, "headers"); ok {
		for _, entry := range MapEntries(headers) {
			convertNonBodyParameter(doc, entry.Value, at.Child("headers").Child(entry.Key))
		}
	}
}

// rewriteRefs rewrites all local 2.0 $ref prefixes to their 3.0 form,
// walking the entire tree.
func rewriteRefs(n *yaml.Node) {
	if n == nil {
		return
	}
	if n.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(n.Content); i += 2 {
			if n.Content[i].Value == "$ref" && n.Content[i+1].Kind == yaml.ScalarNode {
				n.Content[i+1].Value = rewriteRef(n.Content[i+1].Value)
			}
		}
	}
	for _, child := range n.Content {
		rewriteRefs(child)
	}
}

// rewriteRef rewrites a single reference string.
func rewriteRef(ref string) string {
	for _, rw := range refRewrites {
		if strings.HasPrefix(ref, rw[0]) {
			return rw[1] + strings.TrimPrefix(ref, rw[0])
		}
	}
	return ref
}

// takeScalar removes key from a mapping and returns its scalar value.
func takeScalar(n *yaml.Node, key string) string {
	v, ok := MapGet(n, key)
	if !ok {
		return ""
	}
	MapDelete(n, key)
	return v.Value
}

// takeStringList removes key from a mapping and returns its sequence of
// scalar values. Returns nil when the key is absent.
func takeStringList(n *yaml.Node, key string) []string {
	v, ok := MapGet(n, key)
	if !ok {
		return nil
	}
	MapDelete(n, key)
	if v.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]string, 0, len(v.Content))
	for _, item := range v.Content {
		out = append(out, item.Value)
	}
	return out
}

// scalarValue returns the scalar value of key without removing it.
func scalarValue(n *yaml.Node, key string) string {
	v, ok := MapGet(n, key)
	if !ok {
		return ""
	}
	return v.Value
}

func parameterIn(param *yaml.Node) string {
	return scalarValue(param, "in")
}

func itoa(i int) string {
	return strconv.Itoa(i)
}
