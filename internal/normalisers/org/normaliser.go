package org

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.EntryNormaliser = (*Normaliser)(nil)

// Normaliser converts structured org nodes into flat entries with a
// search-oriented compiled rendering.
type Normaliser struct {
	indexHeadingEntries bool
}

// Option configures a Normaliser.
type Option func(*Normaliser)

// WithHeadingEntries makes the normaliser emit entries for heading nodes
// whose body is empty. By default such nodes are dropped.
func WithHeadingEntries() Option {
	return func(n *Normaliser) {
		n.indexHeadingEntries = true
	}
}

// New creates a new org node normaliser.
func New(opts ...Option) *Normaliser {
	n := &Normaliser{}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalise converts nodes into entries. A node yields an entry iff its
// body is non-empty after stripping whitespace and control characters,
// or the normaliser was configured to index heading entries.
//
// Each entry's compiled text opens with a heading-path header: a
// "* Path: <file>" line, then the node's ancestor headings joined with
// the current one. A node's parent is the nearest preceding node of
// lower level within the same file; the chain is tracked with an
// explicit stack while walking document order.
func (n *Normaliser) Normalise(nodes []domain.OrgNode) []domain.Entry {
	var entries []domain.Entry

	type stackFrame struct {
		level   int
		heading string
	}
	var stack []stackFrame
	currentFile := ""

	for _, node := range nodes {
		if node.File != currentFile {
			currentFile = node.File
			stack = stack[:0]
		}

		var ancestors []string
		if node.Level > 0 {
			for len(stack) > 0 && stack[len(stack)-1].level >= node.Level {
				stack = stack[:len(stack)-1]
			}
			for _, frame := range stack {
				ancestors = append(ancestors, frame.heading)
			}
			stack = append(stack, stackFrame{level: node.Level, heading: node.Heading})
		}

		if !n.indexHeadingEntries && domain.IsEmptyText(node.Body) {
			continue
		}

		header := compiledHeader(node, ancestors)
		entry := domain.Entry{
			Raw:      node.Raw,
			Compiled: compile(node, header),
			File:     node.File,
			Heading:  header,
		}
		entry.ID = domain.EntryID(entry.Raw, entry.File)
		entries = append(entries, entry)
	}
	return entries
}

// compiledHeader renders the heading-path header block for a node. Nodes
// without a heading (file preambles) get the path line alone.
func compiledHeader(node domain.OrgNode, ancestors []string) string {
	header := fmt.Sprintf("* Path: %s", node.File)
	if node.Heading != "" {
		path := strings.Join(append(ancestors, node.Heading), " / ")
		header += fmt.Sprintf("\n** %s", path)
	}
	return header
}

// compile renders a node's search-oriented text: header, properties,
// then the cleaned body.
func compile(node domain.OrgNode, header string) string {
	parts := []string{header}
	for _, prop := range node.Properties {
		parts = append(parts, fmt.Sprintf(":%s: %s", prop.Key, prop.Value))
	}
	if body := cleanBody(node.Body); body != "" {
		parts = append(parts, body)
	}
	return strings.Join(parts, "\n")
}

// cleanBody strips control characters and surrounding whitespace from
// each body line and drops lines left empty.
func cleanBody(body string) string {
	var lines []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.Map(func(r rune) rune {
			if unicode.IsControl(r) {
				return -1
			}
			return r
		}, line)
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return strings.Join(lines, "\n")
}
