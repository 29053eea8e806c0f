package core

import (
	"context"
	"io"
	"time"

	"github.com/spediak/spediak-backend/internal/models"
)

// DbClient defines all persistence operations the services need.
// It abstracts Postgres/pgvector so higher layers never depend on a specific DB.
type DbClient interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)

	CreateSopDocument(ctx context.Context, doc *models.SopDocument) error
	GetSopDocumentByID(ctx context.Context, id string) (*models.SopDocument, error)
	ListSopDocuments(ctx context.Context) ([]models.SopDocument, error)
	UpdateSopExtraction(ctx context.Context, id, status, text string) error
	DeleteSopDocument(ctx context.Context, id string) error

	GetSopAssignment(ctx context.Context, scopeKind, scopeValue string) (*models.SopAssignment, error)
	GetAssignedSopDocument(ctx context.Context, scopeKind, scopeValue string) (*models.SopDocument, error)
	ReplaceSopAssignment(ctx context.Context, a *models.SopAssignment) error
	DeleteSopAssignment(ctx context.Context, id string) error
	GetDefaultSopSetting(ctx context.Context) (*models.DefaultSopSetting, error)
	UpsertDefaultSopSetting(ctx context.Context, s *models.DefaultSopSetting) error
	AppendSopHistory(ctx context.Context, h *models.SopHistory) error

	GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error)
	ResetSubscriptionUsage(ctx context.Context, userID string, resetAt time.Time) error
	IncrementStatementsUsed(ctx context.Context, userID string) error

	CreateInspection(ctx context.Context, ins *models.Inspection) error
	GetInspectionByID(ctx context.Context, id string) (*models.Inspection, error)
	ListInspectionsByUser(ctx context.Context, userID string) ([]models.Inspection, error)
	DeleteInspection(ctx context.Context, id, userID string) error

	CreateKnowledgeDocument(ctx context.Context, doc *models.KnowledgeDocument) error
	GetKnowledgeDocument(ctx context.Context, id string) (*models.KnowledgeDocument, error)
	UpdateKnowledgeDocumentStatus(ctx context.Context, id, status string) error
	DeleteKnowledgeDocument(ctx context.Context, id string) error
	InsertKnowledgeChunks(ctx context.Context, chunks []models.KnowledgeChunk) error
	SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error)

	GetPromptTemplate(ctx context.Context, name string) (*models.PromptTemplate, error)
	UpdatePromptTemplate(ctx context.Context, name, body, actorID string) (*models.PromptTemplate, error)
	ListPromptVersions(ctx context.Context, templateID string) ([]models.PromptVersion, error)

	AcquireLease(ctx context.Context, resource, token string, ttl time.Duration) (bool, error)
	ReleaseLease(ctx context.Context, resource, token string) error

	Close() error
}

// ObjectClient defines interactions with S3 or any object storage.
// It's abstract so AWS can be swapped for MinIO, GCP, etc. easily.
type ObjectClient interface {
	UploadFile(ctx context.Context, bucket, key string, data []byte, contentType string) (url string, err error)
	DeleteFile(ctx context.Context, bucket, key string) error
	GetFile(ctx context.Context, bucket, key string) ([]byte, error)

	GetObjectReader(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}
