// Package knowledge does best-effort retrieval of short grounding passages
// from the embedded knowledge base.
package knowledge

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/models"
)

const (
	topK             = 3
	snippetSeparator = "\n---\n"
)

// Store is the chunk search the lookup needs; *db.DatabaseClient satisfies it.
type Store interface {
	SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error)
}

type Lookup struct {
	db       Store
	embedder core.EmbeddingProvider
	timeout  time.Duration
}

func NewLookup(db Store, embedder core.EmbeddingProvider, timeout time.Duration) *Lookup {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &Lookup{db: db, embedder: embedder, timeout: timeout}
}

// Snippet returns up to three nearest passages for the query, joined with a
// separator, racing the real lookup against the timeout. First result wins;
// a late lookup result is simply discarded, not cancelled. Any failure
// (embedding, empty result, database) degrades to "".
func (l *Lookup) Snippet(ctx context.Context, query string) string {
	if strings.TrimSpace(query) == "" {
		return ""
	}

	resCh := make(chan string, 1)
	go func() {
		resCh <- l.fetch(ctx, query)
	}()

	select {
	case s := <-resCh:
		return s
	case <-time.After(l.timeout):
		log.Printf("knowledge: lookup timed out after %s, continuing without snippet", l.timeout)
		return ""
	case <-ctx.Done():
		return ""
	}
}

func (l *Lookup) fetch(ctx context.Context, query string) string {
	vecs, err := l.embedder.EmbedTexts(ctx, []string{query})
	if err != nil || len(vecs) == 0 {
		log.Printf("knowledge: embedding failed: %v", err)
		return ""
	}

	chunks, err := l.db.SearchKnowledgeChunks(ctx, vecs[0], topK)
	if err != nil {
		log.Printf("knowledge: search failed: %v", err)
		return ""
	}
	if len(chunks) == 0 {
		return ""
	}

	parts := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		parts = append(parts, ch.Text)
	}
	return strings.Join(parts, snippetSeparator)
}
