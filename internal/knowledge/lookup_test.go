package knowledge

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/spediak/spediak-backend/internal/models"
)

type fakeEmbedder struct {
	delay time.Duration
	err   error
}

func (f *fakeEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if f.err != nil {
		return nil, f.err
	}
	return [][]float32{{0.1, 0.2, 0.3}}, nil
}

type fakeSearch struct {
	chunks []models.KnowledgeChunk
	err    error
	limit  int
}

func (f *fakeSearch) SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error) {
	f.limit = limit
	return f.chunks, f.err
}

func TestSnippetJoinsTopChunks(t *testing.T) {
	store := &fakeSearch{chunks: []models.KnowledgeChunk{
		{Text: "first passage"},
		{Text: "second passage"},
		{Text: "third passage"},
	}}
	l := NewLookup(store, &fakeEmbedder{}, time.Second)

	got := l.Snippet(context.Background(), "roof flashing defect")
	assert.Equal(t, "first passage\n---\nsecond passage\n---\nthird passage", got)
	assert.Equal(t, 3, store.limit, "searches for the top three chunks")
}

func TestSnippetTimesOutOnSlowLookup(t *testing.T) {
	l := NewLookup(&fakeSearch{}, &fakeEmbedder{delay: 500 * time.Millisecond}, 50*time.Millisecond)

	start := time.Now()
	got := l.Snippet(context.Background(), "query")
	assert.Empty(t, got)
	assert.Less(t, time.Since(start), 300*time.Millisecond, "timeout wins, slow lookup is abandoned")
}

func TestSnippetEmptyOnEmbeddingFailure(t *testing.T) {
	l := NewLookup(&fakeSearch{}, &fakeEmbedder{err: errors.New("quota")}, time.Second)
	assert.Empty(t, l.Snippet(context.Background(), "query"))
}

func TestSnippetEmptyOnSearchFailure(t *testing.T) {
	l := NewLookup(&fakeSearch{err: errors.New("db down")}, &fakeEmbedder{}, time.Second)
	assert.Empty(t, l.Snippet(context.Background(), "query"))
}

func TestSnippetEmptyOnNoResults(t *testing.T) {
	l := NewLookup(&fakeSearch{}, &fakeEmbedder{}, time.Second)
	assert.Empty(t, l.Snippet(context.Background(), "query"))
}

func TestSnippetSkipsBlankQuery(t *testing.T) {
	emb := &fakeEmbedder{err: errors.New("should not be called")}
	l := NewLookup(&fakeSearch{}, emb, time.Second)
	assert.Empty(t, l.Snippet(context.Background(), "   "))
}
