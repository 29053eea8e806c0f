package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/spediak/spediak-backend/internal/config"
	"github.com/spediak/spediak-backend/internal/core"
	ingestor "github.com/spediak/spediak-backend/internal/core/ingestion_engine"
	"github.com/spediak/spediak-backend/internal/lease"
	"github.com/spediak/spediak-backend/internal/models"
	"github.com/spediak/spediak-backend/internal/prompt"
)

// promptLeaseResource is the lease key guarding prompt template edits.
const promptLeaseResource = "prompt-template:" + prompt.TemplateName

// AdminHandler groups the administrative surface: SOP document management,
// knowledge-base ingestion, and prompt template editing.
type AdminHandler struct {
	dbclient     core.DbClient
	objectclient core.ObjectClient
	sopExtractor ingestor.Ingestor
	knIngestor   ingestor.Ingestor
	leases       *lease.Manager
	cfg          *config.Config
}

func NewAdminHandler(dbclient core.DbClient, objectclient core.ObjectClient, sopExtractor, knIngestor ingestor.Ingestor, leases *lease.Manager, cfg *config.Config) *AdminHandler {
	return &AdminHandler{
		dbclient:     dbclient,
		objectclient: objectclient,
		sopExtractor: sopExtractor,
		knIngestor:   knIngestor,
		leases:       leases,
		cfg:          cfg,
	}
}

// UploadSopDocument handles multipart upload of a standards document. The file
// goes to object storage immediately; text extraction runs in the background.
func (h *AdminHandler) UploadSopDocument(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(52 << 20)

	userID, _ := r.Context().Value("user_id").(string)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	name := r.FormValue("name")
	if name == "" {
		name = header.Filename
	}
	docType := r.FormValue("doc_type")
	if docType == "" {
		docType = "state_code"
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	docID := uuid.NewString()
	cleanFilename := filepath.Base(header.Filename)
	key := fmt.Sprintf("sop/%s/%s", docID, cleanFilename)

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	url, err := h.objectclient.UploadFile(uploadctx, h.cfg.BucketName, key, data, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("upload failed: %v", err))
		return
	}

	doc := &models.SopDocument{
		ID:               docID,
		Name:             name,
		DocType:          docType,
		StorageURL:       url,
		ContentType:      contentType,
		ExtractionStatus: models.ExtractionPending,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	if err := h.dbclient.CreateSopDocument(uploadctx, doc); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store document metadata: %v", err))
		return
	}

	_ = h.dbclient.AppendSopHistory(r.Context(), &models.SopHistory{
		Action:  "upload_document",
		Detail:  fmt.Sprintf("uploaded %q (%s)", name, docID),
		ActorID: userID,
	})

	h.sopExtractor.Enqueue(doc.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

func (h *AdminHandler) ListSopDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := h.dbclient.ListSopDocuments(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(docs)
}

// DeleteSopDocument removes a document; assignments cascade with it. The
// stored file is deleted best-effort after the row.
func (h *AdminHandler) DeleteSopDocument(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	id := chi.URLParam(r, "id")

	doc, _ := h.dbclient.GetSopDocumentByID(r.Context(), id)

	if err := h.dbclient.DeleteSopDocument(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "sop document not found")
		return
	}

	if doc != nil && doc.StorageURL != "" {
		bucket, key := ingestor.ParseS3URL(doc.StorageURL)
		if err := h.objectclient.DeleteFile(r.Context(), bucket, key); err != nil {
			log.Printf("admin: could not delete stored object for %s: %v", id, err)
		}
	}

	_ = h.dbclient.AppendSopHistory(r.Context(), &models.SopHistory{
		Action:  "delete_document",
		Detail:  fmt.Sprintf("deleted document %s", id),
		ActorID: userID,
	})

	w.WriteHeader(http.StatusNoContent)
}

type assignmentRequest struct {
	ScopeKind  string `json:"scope_kind"`
	ScopeValue string `json:"scope_value"`
	DocumentID string `json:"document_id"`
}

// PutAssignment replaces the assignment for one (scope kind, scope value) pair.
func (h *AdminHandler) PutAssignment(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	var req assignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.ScopeKind != models.ScopeState && req.ScopeKind != models.ScopeOrganization {
		writeError(w, http.StatusBadRequest, "scope_kind must be state or organization")
		return
	}
	if req.ScopeValue == "" || req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "scope_value and document_id are required")
		return
	}

	doc, err := h.dbclient.GetSopDocumentByID(r.Context(), req.DocumentID)
	if err != nil || doc == nil {
		writeError(w, http.StatusNotFound, "sop document not found")
		return
	}

	a := &models.SopAssignment{
		ID:         uuid.NewString(),
		ScopeKind:  req.ScopeKind,
		ScopeValue: req.ScopeValue,
		DocumentID: req.DocumentID,
		CreatedAt:  time.Now(),
	}
	if err := h.dbclient.ReplaceSopAssignment(r.Context(), a); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = h.dbclient.AppendSopHistory(r.Context(), &models.SopHistory{
		Action:  "assign",
		Scope:   fmt.Sprintf("%s/%s", req.ScopeKind, req.ScopeValue),
		Detail:  fmt.Sprintf("assigned document %q", doc.Name),
		ActorID: userID,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

// GetAssignment answers which document backs one (scope kind, scope value)
// pair, or 404 when nothing is assigned.
func (h *AdminHandler) GetAssignment(w http.ResponseWriter, r *http.Request) {
	scopeKind := r.URL.Query().Get("scope_kind")
	scopeValue := r.URL.Query().Get("scope_value")
	if scopeKind == "" || scopeValue == "" {
		writeError(w, http.StatusBadRequest, "scope_kind and scope_value are required")
		return
	}

	a, err := h.dbclient.GetSopAssignment(r.Context(), scopeKind, scopeValue)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if a == nil {
		writeError(w, http.StatusNotFound, "no assignment for scope")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(a)
}

func (h *AdminHandler) DeleteAssignment(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)
	id := chi.URLParam(r, "id")

	if err := h.dbclient.DeleteSopAssignment(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "sop assignment not found")
		return
	}

	_ = h.dbclient.AppendSopHistory(r.Context(), &models.SopHistory{
		Action:  "unassign",
		Detail:  fmt.Sprintf("removed assignment %s", id),
		ActorID: userID,
	})

	w.WriteHeader(http.StatusNoContent)
}

type defaultSopRequest struct {
	DocumentID     string   `json:"document_id"`
	ExcludedStates []string `json:"excluded_states"`
}

// PutDefault upserts the singleton default-SOP setting.
func (h *AdminHandler) PutDefault(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	var req defaultSopRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DocumentID == "" {
		writeError(w, http.StatusBadRequest, "document_id is required")
		return
	}

	doc, err := h.dbclient.GetSopDocumentByID(r.Context(), req.DocumentID)
	if err != nil || doc == nil {
		writeError(w, http.StatusNotFound, "sop document not found")
		return
	}

	setting := &models.DefaultSopSetting{
		DocumentID:     req.DocumentID,
		ExcludedStates: req.ExcludedStates,
	}
	if err := h.dbclient.UpsertDefaultSopSetting(r.Context(), setting); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	_ = h.dbclient.AppendSopHistory(r.Context(), &models.SopHistory{
		Action:  "set_default",
		Detail:  fmt.Sprintf("default document %q, %d excluded states", doc.Name, len(req.ExcludedStates)),
		ActorID: userID,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(setting)
}

// UploadKnowledgeDocument ingests a reference document into the knowledge base.
func (h *AdminHandler) UploadKnowledgeDocument(w http.ResponseWriter, r *http.Request) {
	r.ParseMultipartForm(52 << 20)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid file")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusBadRequest, "could not read file")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	docID := uuid.NewString()
	key := fmt.Sprintf("knowledge/%s/%s", docID, filepath.Base(header.Filename))

	uploadctx, cancel := context.WithTimeout(r.Context(), 5*time.Minute)
	defer cancel()

	url, err := h.objectclient.UploadFile(uploadctx, h.cfg.BucketName, key, data, contentType)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("upload failed: %v", err))
		return
	}

	doc := &models.KnowledgeDocument{
		ID:         docID,
		FileName:   header.Filename,
		StorageURL: url,
		Status:     "uploaded",
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := h.dbclient.CreateKnowledgeDocument(uploadctx, doc); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to store document metadata: %v", err))
		return
	}

	h.knIngestor.Enqueue(doc.ID)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(doc)
}

// DeleteKnowledgeDocument removes a knowledge document and all its chunks.
// The stored file is deleted best-effort after the row.
func (h *AdminHandler) DeleteKnowledgeDocument(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	doc, _ := h.dbclient.GetKnowledgeDocument(r.Context(), id)

	if err := h.dbclient.DeleteKnowledgeDocument(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "knowledge document not found")
		return
	}

	if doc != nil && doc.StorageURL != "" {
		bucket, key := ingestor.ParseS3URL(doc.StorageURL)
		if err := h.objectclient.DeleteFile(r.Context(), bucket, key); err != nil {
			log.Printf("admin: could not delete stored object for %s: %v", id, err)
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

// GetPromptTemplate returns the stored base template, falling back to the
// built-in default when none has been saved yet.
func (h *AdminHandler) GetPromptTemplate(w http.ResponseWriter, r *http.Request) {
	t, err := h.dbclient.GetPromptTemplate(r.Context(), prompt.TemplateName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if t == nil {
		json.NewEncoder(w).Encode(map[string]any{
			"name":    prompt.TemplateName,
			"body":    prompt.DefaultBaseTemplate,
			"version": 0,
		})
		return
	}
	json.NewEncoder(w).Encode(t)
}

// ListPromptVersions returns the revision history of the base template,
// newest first. An unsaved template has no history.
func (h *AdminHandler) ListPromptVersions(w http.ResponseWriter, r *http.Request) {
	t, err := h.dbclient.GetPromptTemplate(r.Context(), prompt.TemplateName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	versions := []models.PromptVersion{}
	if t != nil {
		versions, err = h.dbclient.ListPromptVersions(r.Context(), t.ID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(versions)
}

type putPromptRequest struct {
	Body string `json:"body"`
}

// PutPromptTemplate updates the base template. Concurrent admin edits are
// serialized by an expiring lease; a held lease answers 409.
func (h *AdminHandler) PutPromptTemplate(w http.ResponseWriter, r *http.Request) {
	userID, _ := r.Context().Value("user_id").(string)

	var req putPromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Body == "" {
		writeError(w, http.StatusBadRequest, "body is required")
		return
	}

	token, err := h.leases.Acquire(r.Context(), promptLeaseResource)
	if err == lease.ErrHeld {
		writeError(w, http.StatusConflict, "template is being edited by someone else")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	defer h.leases.Release(r.Context(), promptLeaseResource, token)

	t, err := h.dbclient.UpdatePromptTemplate(r.Context(), prompt.TemplateName, req.Body, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(t)
}
