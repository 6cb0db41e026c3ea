package domain

import (
	"bufio"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
)

// Entry is the normalised, indexable unit of text derived from one or more
// source nodes. It is the canonical representation handed to the
// embedding/index collaborator over the JSONL boundary.
type Entry struct {
	// ID is a stable identifier derived from Raw and File, so re-indexing
	// unchanged content is idempotent.
	ID string `json:"id"`

	// Raw is the verbatim original source text of the entry, preserved for
	// display and provenance.
	Raw string `json:"raw"`

	// Compiled is the search-optimised rendering: heading path header,
	// rendered properties and body, with control characters scrubbed.
	Compiled string `json:"compiled"`

	// File is the source path the entry was extracted from.
	File string `json:"file"`

	// Heading is the heading-path header block ("* Path: <file>" plus the
	// ancestor trail line). Empty for entries without one.
	Heading string `json:"heading,omitempty"`
}

// EntryID computes the stable identifier for an entry: a SHA-256 digest over
// the raw text and source file.
func EntryID(raw, file string) string {
	sum := sha256.Sum256([]byte(raw + "\n" + file))
	return hex.EncodeToString(sum[:])
}

// EntriesToJSONL renders entries as line-delimited JSON, one object per line.
// This is the ingestion boundary with the embedding/index collaborator.
func EntriesToJSONL(entries []Entry) (string, error) {
	var sb strings.Builder
	for i := range entries {
		line, err := json.Marshal(&entries[i])
		if err != nil {
			return "", fmt.Errorf("marshal entry %d: %w", i, err)
		}
		sb.Write(line)
		sb.WriteByte('\n')
	}
	return sb.String(), nil
}

// EntriesFromJSONL parses line-delimited JSON back into entries. It is the
// exact inverse of EntriesToJSONL for the fields that codec emits. Blank
// lines are ignored.
func EntriesFromJSONL(data string) ([]Entry, error) {
	var entries []Entry

	scanner := bufio.NewScanner(strings.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			return nil, fmt.Errorf("parse jsonl line %d: %w", lineNo, err)
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl: %w", err)
	}

	return entries, nil
}
