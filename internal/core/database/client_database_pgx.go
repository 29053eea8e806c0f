package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/spediak/spediak-backend/internal/config"
	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(ctx context.Context, cfg *config.Config) (core.DbClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database client configuration is nil")
	}
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is empty")
	}

	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Sensible pool settings for an API service; adjust as needed.
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(10 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := EnsureBootstrapped(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrap: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

func (c *DatabaseClient) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}

// Users

func (c *DatabaseClient) CreateUser(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("nil user")
	}
	const q = `
		INSERT INTO users (id, first_name, email, password_hash, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()), COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		user.ID, user.FirstName, user.Email, user.PasswordHash, user.IsAdmin, user.CreatedAt, user.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE email = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, email).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *DatabaseClient) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	const q = `
		SELECT id, first_name, email, password_hash, is_admin, created_at, updated_at
		FROM users WHERE id = $1
	`
	var u models.User
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&u.ID, &u.FirstName, &u.Email, &u.PasswordHash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// SOP documents

func (c *DatabaseClient) CreateSopDocument(ctx context.Context, doc *models.SopDocument) error {
	if doc == nil {
		return errors.New("nil sop document")
	}
	const q = `
		INSERT INTO sop_documents
			(id, name, doc_type, storage_url, content_type, extraction_status, created_at, updated_at)
		VALUES
			($1, $2, $3, $4, $5, $6, COALESCE($7, now()), COALESCE($8, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.Name, doc.DocType, doc.StorageURL, doc.ContentType, doc.ExtractionStatus, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetSopDocumentByID(ctx context.Context, id string) (*models.SopDocument, error) {
	const q = `
		SELECT id, name, doc_type, storage_url, content_type, COALESCE(extracted_text, ''), extraction_status, created_at, updated_at
		FROM sop_documents
		WHERE id = $1
	`
	var d models.SopDocument
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.Name, &d.DocType, &d.StorageURL, &d.ContentType, &d.ExtractedText, &d.ExtractionStatus, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) ListSopDocuments(ctx context.Context) ([]models.SopDocument, error) {
	const q = `
		SELECT id, name, doc_type, storage_url, content_type, extraction_status, created_at, updated_at
		FROM sop_documents
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SopDocument
	for rows.Next() {
		var d models.SopDocument
		if err := rows.Scan(
			&d.ID, &d.Name, &d.DocType, &d.StorageURL, &d.ContentType, &d.ExtractionStatus, &d.CreatedAt, &d.UpdatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (c *DatabaseClient) UpdateSopExtraction(ctx context.Context, id, status, text string) error {
	const q = `
		UPDATE sop_documents
		SET extraction_status = $2, extracted_text = NULLIF($3, ''), updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status, text)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("sop document not found: %s", id)
	}
	return nil
}

// DeleteSopDocument removes the document; assignments and default settings
// referencing it go with it via ON DELETE CASCADE.
func (c *DatabaseClient) DeleteSopDocument(ctx context.Context, id string) error {
	const q = `DELETE FROM sop_documents WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("sop document not found: %s", id)
	}
	return nil
}

// SOP assignments

func (c *DatabaseClient) GetSopAssignment(ctx context.Context, scopeKind, scopeValue string) (*models.SopAssignment, error) {
	const q = `
		SELECT id, scope_kind, scope_value, document_id, created_at
		FROM sop_assignments
		WHERE scope_kind = $1 AND scope_value = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	var a models.SopAssignment
	err := c.db.QueryRowContext(ctx, q, scopeKind, scopeValue).Scan(
		&a.ID, &a.ScopeKind, &a.ScopeValue, &a.DocumentID, &a.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (c *DatabaseClient) GetAssignedSopDocument(ctx context.Context, scopeKind, scopeValue string) (*models.SopDocument, error) {
	const q = `
		SELECT d.id, d.name, d.doc_type, d.storage_url, d.content_type, COALESCE(d.extracted_text, ''), d.extraction_status, d.created_at, d.updated_at
		FROM sop_assignments a
		JOIN sop_documents d ON d.id = a.document_id
		WHERE a.scope_kind = $1 AND a.scope_value = $2
		ORDER BY a.created_at DESC
		LIMIT 1
	`
	var d models.SopDocument
	err := c.db.QueryRowContext(ctx, q, scopeKind, scopeValue).Scan(
		&d.ID, &d.Name, &d.DocType, &d.StorageURL, &d.ContentType, &d.ExtractedText, &d.ExtractionStatus, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ReplaceSopAssignment enforces "at most one assignment per scope" with a
// delete-then-insert, matching the admin look-up-then-replace flow.
func (c *DatabaseClient) ReplaceSopAssignment(ctx context.Context, a *models.SopAssignment) error {
	if a == nil {
		return errors.New("nil assignment")
	}
	const del = `DELETE FROM sop_assignments WHERE scope_kind = $1 AND scope_value = $2`
	if _, err := c.db.ExecContext(ctx, del, a.ScopeKind, a.ScopeValue); err != nil {
		return err
	}
	const ins = `
		INSERT INTO sop_assignments (id, scope_kind, scope_value, document_id, created_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()))
	`
	_, err := c.db.ExecContext(ctx, ins, a.ID, a.ScopeKind, a.ScopeValue, a.DocumentID, a.CreatedAt)
	return err
}

func (c *DatabaseClient) DeleteSopAssignment(ctx context.Context, id string) error {
	const q = `DELETE FROM sop_assignments WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("sop assignment not found: %s", id)
	}
	return nil
}

func (c *DatabaseClient) GetDefaultSopSetting(ctx context.Context) (*models.DefaultSopSetting, error) {
	const q = `
		SELECT id, document_id, excluded_states, updated_at
		FROM default_sop_settings
		LIMIT 1
	`
	var (
		s        models.DefaultSopSetting
		excluded []byte
	)
	err := c.db.QueryRowContext(ctx, q).Scan(&s.ID, &s.DocumentID, &excluded, &s.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if len(excluded) > 0 {
		if err := json.Unmarshal(excluded, &s.ExcludedStates); err != nil {
			return nil, fmt.Errorf("decode excluded_states: %w", err)
		}
	}
	return &s, nil
}

func (c *DatabaseClient) UpsertDefaultSopSetting(ctx context.Context, s *models.DefaultSopSetting) error {
	if s == nil {
		return errors.New("nil default sop setting")
	}
	excluded, err := json.Marshal(s.ExcludedStates)
	if err != nil {
		return fmt.Errorf("encode excluded_states: %w", err)
	}
	const q = `
		INSERT INTO default_sop_settings (id, document_id, excluded_states, updated_at)
		VALUES ('default', $1, $2, now())
		ON CONFLICT (id) DO UPDATE
		SET document_id = EXCLUDED.document_id, excluded_states = EXCLUDED.excluded_states, updated_at = now()
	`
	_, err = c.db.ExecContext(ctx, q, s.DocumentID, excluded)
	return err
}

func (c *DatabaseClient) AppendSopHistory(ctx context.Context, h *models.SopHistory) error {
	if h == nil {
		return errors.New("nil history entry")
	}
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO sop_history (id, action, scope, detail, actor_id, created_at)
		VALUES ($1, $2, $3, $4, $5, COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q, h.ID, h.Action, h.Scope, h.Detail, h.ActorID, h.CreatedAt)
	return err
}

// Subscriptions

// GetSubscription returns the user's subscription row, creating a default
// free-tier row on first read.
func (c *DatabaseClient) GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	const q = `
		SELECT user_id, plan_type, statements_used, statements_limit, last_reset_date, updated_at
		FROM user_subscriptions
		WHERE user_id = $1
	`
	var s models.UserSubscription
	err := c.db.QueryRowContext(ctx, q, userID).Scan(
		&s.UserID, &s.PlanType, &s.StatementsUsed, &s.StatementsLimit, &s.LastResetDate, &s.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		const ins = `
			INSERT INTO user_subscriptions (user_id, plan_type, statements_used, statements_limit, last_reset_date, updated_at)
			VALUES ($1, 'free', 0, 10, now(), now())
			ON CONFLICT (user_id) DO NOTHING
			RETURNING user_id, plan_type, statements_used, statements_limit, last_reset_date, updated_at
		`
		err = c.db.QueryRowContext(ctx, ins, userID).Scan(
			&s.UserID, &s.PlanType, &s.StatementsUsed, &s.StatementsLimit, &s.LastResetDate, &s.UpdatedAt,
		)
		if err == sql.ErrNoRows {
			// Lost the insert race; the row exists now.
			err = c.db.QueryRowContext(ctx, q, userID).Scan(
				&s.UserID, &s.PlanType, &s.StatementsUsed, &s.StatementsLimit, &s.LastResetDate, &s.UpdatedAt,
			)
		}
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *DatabaseClient) ResetSubscriptionUsage(ctx context.Context, userID string, resetAt time.Time) error {
	const q = `
		UPDATE user_subscriptions
		SET statements_used = 0, last_reset_date = $2, updated_at = now()
		WHERE user_id = $1
	`
	_, err := c.db.ExecContext(ctx, q, userID, resetAt)
	return err
}

func (c *DatabaseClient) IncrementStatementsUsed(ctx context.Context, userID string) error {
	const q = `
		UPDATE user_subscriptions
		SET statements_used = statements_used + 1, updated_at = now()
		WHERE user_id = $1
	`
	_, err := c.db.ExecContext(ctx, q, userID)
	return err
}

// Inspections

func (c *DatabaseClient) CreateInspection(ctx context.Context, ins *models.Inspection) error {
	if ins == nil {
		return errors.New("nil inspection")
	}
	const q = `
		INSERT INTO inspections (id, user_id, description, ddid, image_url, user_state, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		ins.ID, ins.UserID, ins.Description, ins.Statement, ins.ImageURL, ins.UserState, ins.CreatedAt)
	return err
}

func (c *DatabaseClient) GetInspectionByID(ctx context.Context, id string) (*models.Inspection, error) {
	const q = `
		SELECT id, user_id, description, ddid, image_url, user_state, created_at
		FROM inspections
		WHERE id = $1
	`
	var ins models.Inspection
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&ins.ID, &ins.UserID, &ins.Description, &ins.Statement, &ins.ImageURL, &ins.UserState, &ins.CreatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ins, nil
}

func (c *DatabaseClient) ListInspectionsByUser(ctx context.Context, userID string) ([]models.Inspection, error) {
	const q = `
		SELECT id, user_id, description, ddid, image_url, user_state, created_at
		FROM inspections
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := c.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Inspection
	for rows.Next() {
		var ins models.Inspection
		if err := rows.Scan(
			&ins.ID, &ins.UserID, &ins.Description, &ins.Statement, &ins.ImageURL, &ins.UserState, &ins.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, ins)
	}
	return out, rows.Err()
}

// DeleteInspection only removes records owned by userID.
func (c *DatabaseClient) DeleteInspection(ctx context.Context, id, userID string) error {
	const q = `DELETE FROM inspections WHERE id = $1 AND user_id = $2`
	res, err := c.db.ExecContext(ctx, q, id, userID)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("inspection not found: %s", id)
	}
	return nil
}

// Knowledge base

func (c *DatabaseClient) CreateKnowledgeDocument(ctx context.Context, doc *models.KnowledgeDocument) error {
	if doc == nil {
		return errors.New("nil knowledge document")
	}
	const q = `
		INSERT INTO knowledge_documents (id, file_name, storage_url, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, COALESCE($5, now()), COALESCE($6, now()))
	`
	_, err := c.db.ExecContext(ctx, q,
		doc.ID, doc.FileName, doc.StorageURL, doc.Status, doc.CreatedAt, doc.UpdatedAt)
	return err
}

func (c *DatabaseClient) GetKnowledgeDocument(ctx context.Context, id string) (*models.KnowledgeDocument, error) {
	const q = `
		SELECT id, file_name, storage_url, status, created_at, updated_at
		FROM knowledge_documents
		WHERE id = $1
	`
	var d models.KnowledgeDocument
	err := c.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.FileName, &d.StorageURL, &d.Status, &d.CreatedAt, &d.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *DatabaseClient) UpdateKnowledgeDocumentStatus(ctx context.Context, id, status string) error {
	const q = `
		UPDATE knowledge_documents
		SET status = $2, updated_at = now()
		WHERE id = $1
	`
	res, err := c.db.ExecContext(ctx, q, id, status)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("knowledge document not found: %s", id)
	}
	return nil
}

// DeleteKnowledgeDocument cascades to its chunks.
func (c *DatabaseClient) DeleteKnowledgeDocument(ctx context.Context, id string) error {
	const q = `DELETE FROM knowledge_documents WHERE id = $1`
	res, err := c.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("knowledge document not found: %s", id)
	}
	return nil
}

// InsertKnowledgeChunks inserts chunks in a single transaction.
func (c *DatabaseClient) InsertKnowledgeChunks(ctx context.Context, chunks []models.KnowledgeChunk) error {
	if len(chunks) == 0 {
		return nil
	}
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return err
	}

	const q = `
		INSERT INTO knowledge_chunks
			(id, document_id, position, text, embedding, token_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
	`
	stmt, err := tx.PrepareContext(ctx, q)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()

	for i := range chunks {
		ch := &chunks[i]
		vec := pgvector.NewVector(ch.Embedding)

		if _, err := stmt.ExecContext(ctx,
			ch.ID, ch.DocumentID, ch.Position, ch.Text, vec, ch.TokenCount, ch.CreatedAt,
		); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// SearchKnowledgeChunks finds the top-k chunks nearest to the query embedding.
func (c *DatabaseClient) SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error) {
	const q = `
		SELECT id, document_id, position, text, embedding, token_count
		FROM knowledge_chunks
		ORDER BY embedding <-> $1
		LIMIT $2
	`
	vec := pgvector.NewVector(queryVec)
	rows, err := c.db.QueryContext(ctx, q, vec, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.KnowledgeChunk
	for rows.Next() {
		var (
			ch  models.KnowledgeChunk
			emb pgvector.Vector
		)
		if err := rows.Scan(&ch.ID, &ch.DocumentID, &ch.Position, &ch.Text, &emb, &ch.TokenCount); err != nil {
			return nil, err
		}
		ch.Embedding = emb.Slice()
		out = append(out, ch)
	}
	return out, rows.Err()
}

// Prompt templates

func (c *DatabaseClient) GetPromptTemplate(ctx context.Context, name string) (*models.PromptTemplate, error) {
	const q = `
		SELECT id, name, body, version, updated_by, updated_at
		FROM prompt_templates
		WHERE name = $1
	`
	var t models.PromptTemplate
	err := c.db.QueryRowContext(ctx, q, name).Scan(
		&t.ID, &t.Name, &t.Body, &t.Version, &t.UpdatedBy, &t.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// UpdatePromptTemplate bumps the template and appends the version-history row
// in one transaction. This is the only multi-statement write in the system.
func (c *DatabaseClient) UpdatePromptTemplate(ctx context.Context, name, body, actorID string) (*models.PromptTemplate, error) {
	tx, err := c.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, err
	}

	const upd = `
		INSERT INTO prompt_templates (id, name, body, version, updated_by, updated_at)
		VALUES ($1, $2, $3, 1, $4, now())
		ON CONFLICT (name) DO UPDATE
		SET body = EXCLUDED.body, version = prompt_templates.version + 1, updated_by = EXCLUDED.updated_by, updated_at = now()
		RETURNING id, name, body, version, updated_by, updated_at
	`
	var t models.PromptTemplate
	if err := tx.QueryRowContext(ctx, upd, uuid.NewString(), name, body, actorID).Scan(
		&t.ID, &t.Name, &t.Body, &t.Version, &t.UpdatedBy, &t.UpdatedAt,
	); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	const ver = `
		INSERT INTO prompt_versions (id, template_id, version, body, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	if _, err := tx.ExecContext(ctx, ver, uuid.NewString(), t.ID, t.Version, t.Body, actorID); err != nil {
		_ = tx.Rollback()
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (c *DatabaseClient) ListPromptVersions(ctx context.Context, templateID string) ([]models.PromptVersion, error) {
	const q = `
		SELECT id, template_id, version, body, created_by, created_at
		FROM prompt_versions
		WHERE template_id = $1
		ORDER BY version DESC
	`
	rows, err := c.db.QueryContext(ctx, q, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.PromptVersion
	for rows.Next() {
		var v models.PromptVersion
		if err := rows.Scan(&v.ID, &v.TemplateID, &v.Version, &v.Body, &v.CreatedBy, &v.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Leases

// AcquireLease grants the resource lease when it is free, expired, or already
// held by the same token. Returns false when another holder is still live.
func (c *DatabaseClient) AcquireLease(ctx context.Context, resource, token string, ttl time.Duration) (bool, error) {
	const q = `
		INSERT INTO resource_leases (resource, token, acquired_at, ttl_seconds)
		VALUES ($1, $2, now(), $3)
		ON CONFLICT (resource) DO UPDATE
		SET token = EXCLUDED.token, acquired_at = now(), ttl_seconds = EXCLUDED.ttl_seconds
		WHERE resource_leases.token = $2
		   OR resource_leases.acquired_at + make_interval(secs => resource_leases.ttl_seconds) <= now()
		RETURNING token
	`
	var got string
	err := c.db.QueryRowContext(ctx, q, resource, token, int(ttl.Seconds())).Scan(&got)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (c *DatabaseClient) ReleaseLease(ctx context.Context, resource, token string) error {
	const q = `DELETE FROM resource_leases WHERE resource = $1 AND token = $2`
	_, err := c.db.ExecContext(ctx, q, resource, token)
	return err
}
