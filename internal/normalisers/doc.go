// Package normalisers provides implementations of the Normaliser interface
// for the document formats the importer accepts. Each normaliser extracts
// plain text (and headings, when the format has them) from one family of
// MIME types.
//
// Normalisers are registered with a Registry at startup; RegisterDefaults
// adds every built-in one.
package normalisers
