// Package domain defines the core business entities for contentbuilder.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - ContentChunk: A unit of extracted or authored text
//   - Category: A named group of question/answer pairs (legacy model)
//   - Version: An immutable snapshot of the workspace
//   - Record: A key/value pair held by a storage backend
//   - Workspace: The editable state produced by the collection stores
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
