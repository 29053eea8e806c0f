package ingestion_engine

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/models"
)

// NewKnowledgeIngestor constructs the ingestor with a bounded job queue (64).
func NewKnowledgeIngestor(db core.DbClient, obj core.ObjectClient, emb core.EmbeddingProvider, extractor core.DocumentExtractor, cfg *IngestConfig) *KnowledgeIngestor {
	return &KnowledgeIngestor{
		db: db, obj: obj, embedder: emb, extractor: extractor, cfg: cfg,
		jobs: make(chan string, 64),
	}
}

var _ Ingestor = (*KnowledgeIngestor)(nil)

// Start runs worker goroutines reading from the jobs channel. Each worker
// runs the extract -> chunk -> embed -> persist pipeline for one document.
func (i *KnowledgeIngestor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("KnowledgeIngestor: worker shutting down.")
					return
				case docID := <-i.jobs:
					log.Printf("KnowledgeIngestor: processing document %s on worker %d", docID, w)
					if err := i.processOne(ctx, docID); err != nil {
						log.Printf("KnowledgeIngestor: error processing document %s: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

// Enqueue schedules a knowledge document ID for ingestion.
// If the queue is full, this call will block until space frees up.
func (i *KnowledgeIngestor) Enqueue(docID string) {
	i.jobs <- docID
}

// processOne streams, chunks, embeds and persists for a single document ID.
func (i *KnowledgeIngestor) processOne(ctx context.Context, docID string) error {
	proctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	doc, err := i.db.GetKnowledgeDocument(proctx, docID)
	if err != nil || doc == nil {
		return fmt.Errorf("knowledge document not found: %w", err)
	}

	_ = i.db.UpdateKnowledgeDocumentStatus(proctx, docID, "processing")

	bucket, key := ParseS3URL(doc.StorageURL)

	data, err := i.obj.GetFile(proctx, bucket, key)
	if err != nil {
		_ = i.db.UpdateKnowledgeDocumentStatus(proctx, docID, "failed")
		return fmt.Errorf("get object: %w", err)
	}

	g, gctx := errgroup.WithContext(proctx)

	fragCh, err := i.extractor.ExtractText(gctx, g, data, contentTypeFor(doc.FileName))
	if err != nil {
		_ = i.db.UpdateKnowledgeDocumentStatus(proctx, docID, "failed")
		return fmt.Errorf("extract: %w", err)
	}

	chunkCh := i.streamChunk(gctx, g, fragCh, i.cfg.TargetTokens, i.cfg.OverlapTokens)

	g.Go(func() error {
		return i.embedAndPersist(gctx, docID, chunkCh, i.cfg.BatchSize)
	})

	if err := g.Wait(); err != nil {
		_ = i.db.UpdateKnowledgeDocumentStatus(proctx, docID, "failed")
		return err
	}

	return i.db.UpdateKnowledgeDocumentStatus(proctx, docID, "ready")
}

// embedAndPersist consumes chunks, embeds them in batches, and writes to DB.
func (i *KnowledgeIngestor) embedAndPersist(
	ctx context.Context,
	docID string,
	in <-chan chunk,
	batchSize int,
) error {
	batch := make([]chunk, 0, batchSize)

	flush := func(items []chunk) error {
		if len(items) == 0 {
			return nil
		}

		texts := make([]string, len(items))
		for idx := range items {
			texts[idx] = items[idx].Text
		}

		vecs, err := i.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return fmt.Errorf("embed: %w", err)
		}
		if len(vecs) != len(items) {
			return fmt.Errorf("embed size mismatch: got %d want %d", len(vecs), len(items))
		}
		for idx := range vecs {
			if i.cfg.EmbedDim > 0 && len(vecs[idx]) != i.cfg.EmbedDim {
				return fmt.Errorf("embedding dimension mismatch: model returned %d, schema expects %d", len(vecs[idx]), i.cfg.EmbedDim)
			}
		}

		rows := make([]models.KnowledgeChunk, len(items))
		for k := range items {
			rows[k] = models.KnowledgeChunk{
				ID:         uuid.NewString(),
				DocumentID: docID,
				Text:       items[k].Text,
				Embedding:  vecs[k],
				Position:   items[k].Pos,
				TokenCount: items[k].TokenCnt,
			}
		}
		if err := i.db.InsertKnowledgeChunks(ctx, rows); err != nil {
			return fmt.Errorf("insert chunks: %w", err)
		}
		return nil
	}

	for c := range in {
		batch = append(batch, c)
		if len(batch) == batchSize {
			if err := flush(batch); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	return flush(batch)
}

// ParseS3URL extracts the bucket and key from a virtual-hosted-style S3 URL.
// Example: https://my-bucket.s3.us-east-2.amazonaws.com/path/to/file.pdf
func ParseS3URL(u string) (bucket, key string) {
	hostPath := strings.SplitN(strings.TrimPrefix(u, "https://"), "/", 2)
	host := hostPath[0]
	if len(hostPath) == 2 {
		key = hostPath[1]
	}
	parts := strings.Split(host, ".")
	if len(parts) > 0 {
		bucket = parts[0]
	}
	return bucket, key
}

// contentTypeFor guesses a docconv content type from the file name.
func contentTypeFor(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.HasSuffix(lower, ".pdf"):
		return "application/pdf"
	case strings.HasSuffix(lower, ".docx"):
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case strings.HasSuffix(lower, ".txt"):
		return "text/plain"
	default:
		return "application/octet-stream"
	}
}
