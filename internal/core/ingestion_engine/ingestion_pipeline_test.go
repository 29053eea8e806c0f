package ingestion_engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/models"
)

type chunkRecorder struct {
	core.DbClient
	rows []models.KnowledgeChunk
}

func (r *chunkRecorder) InsertKnowledgeChunks(ctx context.Context, chunks []models.KnowledgeChunk) error {
	r.rows = append(r.rows, chunks...)
	return nil
}

type fixedDimEmbedder struct {
	dim int
}

func (e fixedDimEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = make([]float32, e.dim)
	}
	return out, nil
}

func feedChunks(texts ...string) chan chunk {
	ch := make(chan chunk, len(texts))
	for i, t := range texts {
		ch <- chunk{Pos: i, Text: t, TokenCnt: 1}
	}
	close(ch)
	return ch
}

func TestEmbedAndPersistAcceptsMatchingDimension(t *testing.T) {
	db := &chunkRecorder{}
	ing := &KnowledgeIngestor{
		db:       db,
		embedder: fixedDimEmbedder{dim: 768},
		cfg:      &IngestConfig{EmbedDim: 768},
	}

	err := ing.embedAndPersist(context.Background(), "doc1", feedChunks("alpha", "beta"), 16)
	require.NoError(t, err)
	require.Len(t, db.rows, 2)
	assert.Equal(t, "alpha", db.rows[0].Text)
	assert.Len(t, db.rows[0].Embedding, 768)
}

func TestEmbedAndPersistRejectsDimensionMismatch(t *testing.T) {
	db := &chunkRecorder{}
	ing := &KnowledgeIngestor{
		db:       db,
		embedder: fixedDimEmbedder{dim: 1536},
		cfg:      &IngestConfig{EmbedDim: 768},
	}

	err := ing.embedAndPersist(context.Background(), "doc1", feedChunks("alpha"), 16)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
	assert.Empty(t, db.rows, "mismatched vectors must never reach the database")
}

func TestEmbedAndPersistSkipsCheckWhenUnconfigured(t *testing.T) {
	db := &chunkRecorder{}
	ing := &KnowledgeIngestor{
		db:       db,
		embedder: fixedDimEmbedder{dim: 3},
		cfg:      &IngestConfig{},
	}

	err := ing.embedAndPersist(context.Background(), "doc1", feedChunks("alpha"), 16)
	require.NoError(t, err)
	assert.Len(t, db.rows, 1)
}
