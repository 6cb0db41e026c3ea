// Package org parses org-mode documents into structured nodes and
// normalises those nodes into index-ready entries.
package org

import (
	"regexp"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/core/ports/driven"
	"github.com/jaytoday/khoj/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.EntryExtractor = (*Extractor)(nil)

// Extractor parses org documents into structured nodes.
type Extractor struct{}

// NewExtractor creates a new org extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract implements the extractor port.
func (e *Extractor) Extract(files map[string]string) []domain.OrgNode {
	return Extract(files)
}

var (
	headingPattern  = regexp.MustCompile(`^(\*+)\s+(.*)$`)
	propertyPattern = regexp.MustCompile(`^\s*:([^:\s]+):\s*(.*)$`)
	tagsPattern     = regexp.MustCompile(`\s+(:[\w@#%:]+:)\s*$`)
	priorityPattern = regexp.MustCompile(`^\[#([A-Z])\]\s+`)
)

// todoKeywords are the heading state keywords recognised after the stars.
var todoKeywords = []string{"TODO", "DONE"}

const (
	drawerStart = ":PROPERTIES:"
	drawerEnd   = ":END:"
)

// Extract parses the given org files into an ordered node sequence. Map
// keys are source file paths, values raw file contents. Files are
// processed in sorted path order so output is deterministic; node order
// within a file is document order. A file that is not valid UTF-8 is
// skipped with a warning and the batch continues.
func Extract(files map[string]string) []domain.OrgNode {
	paths := make([]string, 0, len(files))
	for path := range files {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var nodes []domain.OrgNode
	for _, path := range paths {
		content := files[path]
		if !utf8.ValidString(content) {
			logger.Warn("skipping %s: not valid UTF-8", path)
			continue
		}
		fileNodes := extractFile(path, content)
		logger.Debug("extracted %d nodes from %s", len(fileNodes), path)
		nodes = append(nodes, fileNodes...)
	}
	return nodes
}

// extractFile parses a single org document into nodes. Text before the
// first heading becomes a level-0 preamble node when it is more than
// whitespace and control characters.
func extractFile(path, content string) []domain.OrgNode {
	var nodes []domain.OrgNode
	var current *domain.OrgNode
	var rawLines []string
	inDrawer := false

	flush := func() {
		if current == nil {
			return
		}
		current.Raw = strings.Join(rawLines, "\n")
		current.Body = bodyOf(current.Raw, current.Level)
		if current.Level == 0 && domain.IsEmptyText(current.Body) {
			current = nil
			rawLines = nil
			return
		}
		nodes = append(nodes, *current)
		current = nil
		rawLines = nil
	}

	for _, line := range strings.Split(content, "\n") {
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			flush()
			node := domain.OrgNode{
				File:  path,
				Level: len(m[1]),
			}
			parseHeadline(&node, m[2])
			current = &node
			rawLines = []string{line}
			inDrawer = false
			continue
		}

		if current == nil {
			// Preamble territory: open a level-0 node on first text.
			current = &domain.OrgNode{File: path, Level: 0}
			rawLines = nil
		}
		rawLines = append(rawLines, line)

		trimmed := strings.TrimSpace(line)
		switch {
		// A property drawer only counts when it opens on the line
		// directly under the headline; later drawers are body text.
		case !inDrawer && trimmed == drawerStart && current.Level > 0 && len(rawLines) == 2:
			inDrawer = true
		case inDrawer && trimmed == drawerEnd:
			inDrawer = false
		case inDrawer:
			if m := propertyPattern.FindStringSubmatch(line); m != nil {
				current.Properties = append(current.Properties, domain.Property{
					Key:   m[1],
					Value: strings.TrimSpace(m[2]),
				})
			}
		}
	}
	flush()
	return nodes
}

// parseHeadline splits a headline's text into todo keyword, priority
// cookie, heading text and trailing tags.
func parseHeadline(node *domain.OrgNode, text string) {
	if m := tagsPattern.FindStringSubmatch(text); m != nil {
		text = strings.TrimSuffix(text, m[0])
		node.Tags = strings.FieldsFunc(m[1], func(r rune) bool { return r == ':' })
	}
	for _, kw := range todoKeywords {
		if strings.HasPrefix(text, kw+" ") {
			node.Todo = kw
			text = strings.TrimPrefix(text, kw+" ")
			break
		}
	}
	if m := priorityPattern.FindStringSubmatch(text); m != nil {
		node.Priority = m[1]
		text = strings.TrimPrefix(text, m[0])
	}
	node.Heading = strings.TrimSpace(text)
}

// bodyOf strips the heading line and the property drawer from a node's
// raw text, leaving only body content. The drawer is only recognised
// when it opens on the line directly under the headline.
func bodyOf(raw string, level int) string {
	lines := strings.Split(raw, "\n")
	if level > 0 && len(lines) > 0 {
		lines = lines[1:]
	}

	if level > 0 && len(lines) > 0 && strings.TrimSpace(lines[0]) == drawerStart {
		rest := lines[1:]
		lines = nil
		for i, line := range rest {
			if strings.TrimSpace(line) == drawerEnd {
				lines = rest[i+1:]
				break
			}
		}
	}
	return strings.Join(lines, "\n")
}
