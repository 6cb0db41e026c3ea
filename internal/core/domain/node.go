package domain

import (
	"strings"
	"unicode"
)

// OrgNode is an intermediate parse unit produced by the org-mode extractor,
// before normalisation into an Entry.
type OrgNode struct {
	// File is the source path this node was parsed from.
	File string

	// Level is the heading nesting depth. 0 means a whole-file preamble
	// node (text before the first heading).
	Level int

	// Heading is the heading text, without markers, keywords, priority or
	// tags. Empty for preamble nodes.
	Heading string

	// Todo is the TODO/DONE keyword, if present on the heading line.
	Todo string

	// Priority is the priority cookie letter (e.g. "A"), if present.
	Priority string

	// Tags are the trailing heading tags, in document order.
	Tags []string

	// Properties holds the key/value pairs of the property drawer, in
	// drawer order. The drawer is excluded from Body.
	Properties []Property

	// Body is the node text excluding the heading line and property drawer.
	Body string

	// Raw is the verbatim source text of the node, heading and drawer
	// included.
	Raw string
}

// Property is one key/value line of an org property drawer. A slice of
// properties preserves drawer order, unlike a map.
type Property struct {
	Key   string
	Value string
}

// HasBody reports whether the node has any body content once whitespace and
// control characters are stripped. Property drawers never count as body.
func (n *OrgNode) HasBody() bool {
	return !IsEmptyText(n.Body)
}

// IsEmptyText reports whether s contains nothing but whitespace and control
// characters.
func IsEmptyText(s string) bool {
	return strings.IndexFunc(s, func(r rune) bool {
		return !unicode.IsSpace(r) && !unicode.IsControl(r)
	}) < 0
}
