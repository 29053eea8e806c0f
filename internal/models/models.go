package models

import (
	"time"
)

// Plan tiers for a user subscription.
const (
	PlanFree     = "free"
	PlanTrial    = "trial"
	PlanPro      = "pro"
	PlanPlatinum = "platinum"
)

// Extraction states for an uploaded SOP document.
const (
	ExtractionPending    = "pending"
	ExtractionProcessing = "processing"
	ExtractionCompleted  = "completed"
	ExtractionFailed     = "failed"
)

// Assignment scopes.
const (
	ScopeState        = "state"
	ScopeOrganization = "organization"
)

// User represents an authenticated user of the system.
type User struct {
	ID           string    `db:"id" json:"id"`
	FirstName    string    `db:"first_name" json:"first_name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	IsAdmin      bool      `db:"is_admin" json:"is_admin"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// SopDocument is an uploaded standards-of-practice reference (a state code,
// an organizational standard). The full text is populated asynchronously by
// the extraction worker; only status and text mutate after creation.
type SopDocument struct {
	ID               string    `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	DocType          string    `db:"doc_type" json:"doc_type"` // e.g. "state_code", "org_standard"
	StorageURL       string    `db:"storage_url" json:"storage_url"`
	ContentType      string    `db:"content_type" json:"content_type"`
	ExtractedText    string    `db:"extracted_text" json:"-"`
	ExtractionStatus string    `db:"extraction_status" json:"extraction_status"`
	CreatedAt        time.Time `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// SopAssignment binds one document to a scope ("state"/"NC", "organization"/"ASHI").
// At most one active assignment exists per (scope kind, scope value) pair.
type SopAssignment struct {
	ID         string    `db:"id" json:"id"`
	ScopeKind  string    `db:"scope_kind" json:"scope_kind"`
	ScopeValue string    `db:"scope_value" json:"scope_value"`
	DocumentID string    `db:"document_id" json:"document_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// DefaultSopSetting is the singleton global fallback: one document applied to
// any state without its own assignment, minus the excluded states.
type DefaultSopSetting struct {
	ID             string    `db:"id" json:"id"`
	DocumentID     string    `db:"document_id" json:"document_id"`
	ExcludedStates []string  `db:"excluded_states" json:"excluded_states"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// SopHistory is an append-only audit entry for assignment/default changes.
type SopHistory struct {
	ID        string    `db:"id" json:"id"`
	Action    string    `db:"action" json:"action"` // "assign", "unassign", "set_default", "delete_document"
	Scope     string    `db:"scope" json:"scope"`
	Detail    string    `db:"detail" json:"detail"`
	ActorID   string    `db:"actor_id" json:"actor_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// UserSubscription tracks per-user plan state and the rolling statement quota.
// For capped tiers statements_used resets to 0 once 30 days have elapsed since
// last_reset_date; the reset is applied lazily on read.
type UserSubscription struct {
	UserID          string    `db:"user_id" json:"user_id"`
	PlanType        string    `db:"plan_type" json:"plan_type"`
	StatementsUsed  int       `db:"statements_used" json:"statements_used"`
	StatementsLimit int       `db:"statements_limit" json:"statements_limit"`
	LastResetDate   time.Time `db:"last_reset_date" json:"last_reset_date"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// Inspection is one persisted generated statement. Records are created after a
// successful generation, never updated, and deleted only by their owner.
type Inspection struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Description string    `db:"description" json:"description"`
	Statement   string    `db:"ddid" json:"ddid"`
	ImageURL    string    `db:"image_url" json:"image_url"`
	UserState   string    `db:"user_state" json:"user_state"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// KnowledgeDocument is a reference document ingested into the knowledge base.
type KnowledgeDocument struct {
	ID         string    `db:"id" json:"id"`
	FileName   string    `db:"file_name" json:"file_name"`
	StorageURL string    `db:"storage_url" json:"storage_url"`
	Status     string    `db:"status" json:"status"` // uploaded | processing | ready | failed
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}

// KnowledgeChunk is one embedded slice of a knowledge document, immutable once
// written; deleted with its parent document.
type KnowledgeChunk struct {
	ID         string    `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	Text       string    `db:"text" json:"text"`
	Embedding  []float32 `db:"embedding" json:"embedding"` // pgvector column
	Position   int       `db:"position" json:"position"`
	TokenCount int       `db:"token_count" json:"token_count"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// PromptTemplate is the stored base instruction template the assembler builds
// on. Edits go through the lease service and append a PromptVersion row.
type PromptTemplate struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Body      string    `db:"body" json:"body"`
	Version   int       `db:"version" json:"version"`
	UpdatedBy string    `db:"updated_by" json:"updated_by"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// PromptVersion is one historical revision of a template.
type PromptVersion struct {
	ID         string    `db:"id" json:"id"`
	TemplateID string    `db:"template_id" json:"template_id"`
	Version    int       `db:"version" json:"version"`
	Body       string    `db:"body" json:"body"`
	CreatedBy  string    `db:"created_by" json:"created_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// Unlimited reports whether the subscription bypasses the statement quota.
func (s *UserSubscription) Unlimited() bool {
	return s.PlanType == PlanPro || s.PlanType == PlanPlatinum
}
