package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/lexicheck/internal/domain"
)

type fakeStore struct {
	records  []domain.LanguageRecord
	saveErr  error
	loadErr  error
	loadHook func([]domain.LanguageRecord) []domain.LanguageRecord
}

func (s *fakeStore) SaveRecords(_ context.Context, records []domain.LanguageRecord) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.records = records
	return nil
}

func (s *fakeStore) LoadRecords(_ context.Context) ([]domain.LanguageRecord, error) {
	if s.loadErr != nil {
		return nil, s.loadErr
	}
	if s.loadHook != nil {
		return s.loadHook(s.records), nil
	}
	return s.records, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeCorpus(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "french.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const messyCorpus = `# Vocabulary corpus
> French: English
chat (m): cat
acheter: to buy
acheter: to buy
`

func TestPipeline_Run(t *testing.T) {
	path := writeCorpus(t, messyCorpus)
	store := &fakeStore{}
	p := NewPipeline(discardLogger(), store)

	res, err := p.Run(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, 1, res.DuplicatesRemoved)
	assert.True(t, res.CorpusRewritten)
	assert.Equal(t, "remove duplicates and sort", res.UpdateReason)
	assert.Equal(t, 2, res.Stored)
	assert.NotEqual(t, res.RunID.String(), "00000000-0000-0000-0000-000000000000")

	require.Len(t, store.records, 2)
	assert.Equal(t, "acheter", store.records[0].SourcePhrase)
	assert.Equal(t, "chat (m)", store.records[1].SourcePhrase)

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "# Vocabulary corpus\n> French: English\nacheter: to buy\nchat (m): cat\n", string(content))
}

func TestPipeline_RunCanonicalCorpus(t *testing.T) {
	path := writeCorpus(t, "> French: English\nacheter: to buy\nchat (m): cat\n")
	store := &fakeStore{}
	p := NewPipeline(discardLogger(), store)

	res, err := p.Run(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, res.CorpusRewritten)
	assert.Zero(t, res.DuplicatesRemoved)
	assert.Len(t, store.records, 2)
}

func TestPipeline_RunParseError(t *testing.T) {
	path := writeCorpus(t, "acheter: to buy\n")
	p := NewPipeline(discardLogger(), &fakeStore{})

	_, err := p.Run(context.Background(), path)
	require.Error(t, err)
}

func TestPipeline_RunSaveError(t *testing.T) {
	path := writeCorpus(t, "> French: English\nacheter: to buy\n")
	p := NewPipeline(discardLogger(), &fakeStore{saveErr: errors.New("disk full")})

	_, err := p.Run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPipeline_RunDetectsStoreDrift(t *testing.T) {
	path := writeCorpus(t, "> French: English\nacheter: to buy\n")
	store := &fakeStore{
		loadHook: func(records []domain.LanguageRecord) []domain.LanguageRecord {
			drifted := append([]domain.LanguageRecord(nil), records...)
			drifted[0].TargetPhrase = "to sell"
			return drifted
		},
	}
	p := NewPipeline(discardLogger(), store)

	_, err := p.Run(context.Background(), path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrIntegrity))
}
