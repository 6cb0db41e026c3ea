package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jaytoday/khoj/internal/core/domain"
	"github.com/jaytoday/khoj/internal/normalisers/org"
	"github.com/jaytoday/khoj/internal/postprocessors/splitter"
)

func TestIngestor_EndToEnd(t *testing.T) {
	ingestor := NewIngestor(org.NewExtractor(), org.New(), splitter.New())

	files := map[string]string{
		"/notes/journal.org": "* May\n** Hiking\nClimbed a mountain with friends.\n",
	}

	entries, err := ingestor.Ingest(context.Background(), files)

	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "/notes/journal.org", entries[0].File)
	assert.True(t, strings.HasPrefix(entries[0].Compiled, "* Path: /notes/journal.org\n** May / Hiking"))
}

func TestIngestor_SplitsLongEntries(t *testing.T) {
	ingestor := NewIngestor(org.NewExtractor(), org.New(), splitter.New(splitter.WithMaxTokens(4)))

	files := map[string]string{
		"/tmp/test.org": "*** Heading\n\t\r\nBody Line\n",
	}

	entries, err := ingestor.Ingest(context.Background(), files)

	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, entry := range entries {
		assert.True(t, strings.HasPrefix(entry.Compiled, "* Path: /tmp/test.org\n** Heading"))
	}
}

func TestIngestor_JSONLRoundTrip(t *testing.T) {
	ingestor := NewIngestor(org.NewExtractor(), org.New(), splitter.New())

	files := map[string]string{
		"/notes/a.org": "* Heading\nBody text here.\n",
	}

	jsonl, err := ingestor.IngestToJSONL(context.Background(), files)
	require.NoError(t, err)

	decoded, err := domain.EntriesFromJSONL(jsonl)
	require.NoError(t, err)

	entries, err := ingestor.Ingest(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)
}

func TestIngestor_CancelledContext(t *testing.T) {
	ingestor := NewIngestor(org.NewExtractor(), org.New())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ingestor.Ingest(ctx, map[string]string{"/notes/a.org": "* H\nbody\n"})

	assert.ErrorIs(t, err, context.Canceled)
}
