// Package document loads OpenAPI specification documents into an ordered
// node tree and normalizes OpenAPI 2.0 (Swagger) input to OpenAPI 3.0.
//
// The tree is the yaml AST, so every node carries its source line and column
// for diagnostics, and key order from the source document is preserved
// through mutation and re-serialization. JSON input is parsed by the same
// engine (JSON is a subset of YAML); the detected source format is recorded
// so output can match the input encoding.
//
// Loading a 2.0 document applies a fixed, deterministic mapping to 3.0
// constructs: definitions become components/schemas, body and formData
// parameters become request bodies with consumes-derived media types,
// response schemas become content objects with produces-derived media types,
// host/basePath/schemes become servers, and all local $ref values are
// rewritten to their components-based form. Lossy steps are recorded as
// notes on the returned Document.
package document
