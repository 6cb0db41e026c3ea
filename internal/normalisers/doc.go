// Package normalisers holds implementations that turn raw note files
// into indexable entries. Each normaliser understands a specific note
// format and produces entries with a compiled form ready for search.
//
// Org-mode is the reference format; further formats plug in behind the
// same extractor and normaliser ports.
package normalisers
