// Package extractor carves a self-contained sub-document out of a
// specification, keeping only the requested operations and everything
// they transitively reference.
//
// Extraction walks the $ref closure of the selected operations, so the
// resulting document never contains a dangling local reference. Top-level
// metadata (openapi, info, servers, global security) is carried over,
// components are emitted in source order, and every node is deep-copied;
// the source document is never mutated and shares no nodes with the
// extract.
package extractor
