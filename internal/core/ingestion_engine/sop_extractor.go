package ingestion_engine

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/models"
)

// NewSopExtractor constructs the SOP extraction worker with a bounded queue.
func NewSopExtractor(db core.DbClient, obj core.ObjectClient, extractor core.DocumentExtractor) *SopExtractor {
	return &SopExtractor{
		db: db, obj: obj, extractor: extractor,
		jobs: make(chan string, 64),
	}
}

var _ Ingestor = (*SopExtractor)(nil)

func (s *SopExtractor) Start(ctx context.Context, numWorkers int) {
	for w := 1; w <= numWorkers; w++ {
		go func(w int) {
			for {
				select {
				case <-ctx.Done():
					log.Println("SopExtractor: worker shutting down.")
					return
				case docID := <-s.jobs:
					log.Printf("SopExtractor: extracting document %s on worker %d", docID, w)
					if err := s.processOne(ctx, docID); err != nil {
						log.Printf("SopExtractor: error extracting document %s: %v", docID, err)
					}
				}
			}
		}(w)
	}
}

func (s *SopExtractor) Enqueue(docID string) {
	s.jobs <- docID
}

// processOne pulls the raw file, extracts its full text, and stores it on the
// document row. Status moves pending -> processing -> completed|failed.
func (s *SopExtractor) processOne(ctx context.Context, docID string) error {
	proctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	doc, err := s.db.GetSopDocumentByID(proctx, docID)
	if err != nil || doc == nil {
		return fmt.Errorf("sop document not found: %w", err)
	}

	if err := s.db.UpdateSopExtraction(proctx, docID, models.ExtractionProcessing, ""); err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}

	bucket, key := ParseS3URL(doc.StorageURL)

	body, err := s.obj.GetObjectReader(proctx, bucket, key)
	if err != nil {
		_ = s.db.UpdateSopExtraction(proctx, docID, models.ExtractionFailed, "")
		return fmt.Errorf("get object: %w", err)
	}
	data, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		_ = s.db.UpdateSopExtraction(proctx, docID, models.ExtractionFailed, "")
		return fmt.Errorf("read object: %w", err)
	}

	g, gctx := errgroup.WithContext(proctx)

	fragCh, err := s.extractor.ExtractText(gctx, g, data, doc.ContentType)
	if err != nil {
		_ = s.db.UpdateSopExtraction(proctx, docID, models.ExtractionFailed, "")
		return fmt.Errorf("extract: %w", err)
	}

	var b strings.Builder
	g.Go(func() error {
		for frag := range fragCh {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(frag)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		_ = s.db.UpdateSopExtraction(proctx, docID, models.ExtractionFailed, "")
		return err
	}

	text := b.String()
	if text == "" {
		_ = s.db.UpdateSopExtraction(proctx, docID, models.ExtractionFailed, "")
		return fmt.Errorf("no text extracted from %s", doc.Name)
	}

	return s.db.UpdateSopExtraction(proctx, docID, models.ExtractionCompleted, text)
}
