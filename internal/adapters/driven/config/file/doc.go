// Package file provides the TOML-backed ConfigStore used by the binary.
// Settings live in ~/.contentbuilder/config.toml as nested tables and are
// addressed in code with dot-notation keys such as "chunking.size".
package file
