package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spediak/spediak-backend/internal/generation"
	"github.com/spediak/spediak-backend/internal/knowledge"
	"github.com/spediak/spediak-backend/internal/models"
	"github.com/spediak/spediak-backend/internal/sop"
	"github.com/spediak/spediak-backend/internal/tasks"
	"github.com/spediak/spediak-backend/internal/usage"
)

type stubStore struct {
	user *models.User
	sub  *models.UserSubscription
}

func (s *stubStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return s.user, nil
}

func (s *stubStore) CreateInspection(ctx context.Context, ins *models.Inspection) error {
	return nil
}

func (s *stubStore) GetPromptTemplate(ctx context.Context, name string) (*models.PromptTemplate, error) {
	return nil, nil
}

func (s *stubStore) GetSubscription(ctx context.Context, userID string) (*models.UserSubscription, error) {
	return s.sub, nil
}

func (s *stubStore) ResetSubscriptionUsage(ctx context.Context, userID string, resetAt time.Time) error {
	return nil
}

func (s *stubStore) IncrementStatementsUsed(ctx context.Context, userID string) error {
	return nil
}

func (s *stubStore) GetAssignedSopDocument(ctx context.Context, scopeKind, scopeValue string) (*models.SopDocument, error) {
	return nil, nil
}

func (s *stubStore) GetDefaultSopSetting(ctx context.Context) (*models.DefaultSopSetting, error) {
	return nil, nil
}

func (s *stubStore) GetSopDocumentByID(ctx context.Context, id string) (*models.SopDocument, error) {
	return nil, nil
}

func (s *stubStore) SearchKnowledgeChunks(ctx context.Context, queryVec []float32, limit int) ([]models.KnowledgeChunk, error) {
	return nil, nil
}

type stubLLM struct {
	reply string
}

func (s *stubLLM) Generate(ctx context.Context, system, user string) (string, error) {
	return s.reply, nil
}

func (s *stubLLM) GenerateWithImage(ctx context.Context, system, user, imageFormat string, image []byte) (string, error) {
	return s.reply, nil
}

type stubEmbedder struct{}

func (stubEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	return [][]float32{{0.1}}, nil
}

func newGenerateHandler(store *stubStore, llm *stubLLM) *GenerateHandler {
	svc := generation.NewService(
		store,
		llm,
		sop.NewResolver(store, 15000),
		knowledge.NewLookup(store, stubEmbedder{}, time.Second),
		usage.NewGate(store, tasks.NewRunner(4)),
	)
	return NewGenerateHandler(svc)
}

func authedRequest(method, target, body string) *http.Request {
	r := httptest.NewRequest(method, target, strings.NewReader(body))
	return r.WithContext(context.WithValue(r.Context(), "user_id", "u1"))
}

func TestGenerateStatementEndpoint(t *testing.T) {
	store := &stubStore{
		user: &models.User{ID: "u1"},
		sub: &models.UserSubscription{
			PlanType: models.PlanFree,
			StatementsUsed:   0,
			StatementsLimit:  10,
			LastResetDate:    time.Now(),
		},
	}
	h := newGenerateHandler(store, &stubLLM{reply: "The statement."})

	img := base64.StdEncoding.EncodeToString([]byte("img"))
	body := `{"imageBase64":"` + img + `","userState":"NC","notes":"crack"}`
	w := httptest.NewRecorder()
	h.GenerateStatement(w, authedRequest(http.MethodPost, "/api/generate-statement", body))

	require.Equal(t, http.StatusOK, w.Code)
	var resp generation.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "The statement.", resp.Statement)
	assert.Equal(t, "NC", resp.State)
}

func TestGenerateStatementQuotaReturns403(t *testing.T) {
	store := &stubStore{
		user: &models.User{ID: "u1"},
		sub: &models.UserSubscription{
			PlanType: models.PlanFree,
			StatementsUsed:   10,
			StatementsLimit:  10,
			LastResetDate:    time.Now(),
		},
	}
	h := newGenerateHandler(store, &stubLLM{reply: "unreachable"})

	img := base64.StdEncoding.EncodeToString([]byte("img"))
	body := `{"imageBase64":"` + img + `","userState":"NC"}`
	w := httptest.NewRecorder()
	h.GenerateStatement(w, authedRequest(http.MethodPost, "/api/generate-statement", body))

	require.Equal(t, http.StatusForbidden, w.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, float64(10), resp["statements_used"])
	assert.Equal(t, float64(10), resp["statements_limit"])
	assert.NotEmpty(t, resp["message"])
}

func TestGenerateStatementValidationReturns400(t *testing.T) {
	store := &stubStore{user: &models.User{ID: "u1"}}
	h := newGenerateHandler(store, &stubLLM{})

	w := httptest.NewRecorder()
	h.GenerateStatement(w, authedRequest(http.MethodPost, "/api/generate-statement", `{"userState":"NC"}`))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGenerateStatementRequiresAuth(t *testing.T) {
	h := newGenerateHandler(&stubStore{}, &stubLLM{})

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/generate-statement", strings.NewReader(`{}`))
	h.GenerateStatement(w, r)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGenerateDDIDUsesDescriptionAsNotes(t *testing.T) {
	store := &stubStore{
		user: &models.User{ID: "u1"},
		sub: &models.UserSubscription{
			PlanType: models.PlanPro,
			LastResetDate:    time.Now(),
		},
	}
	h := newGenerateHandler(store, &stubLLM{reply: "DDID statement."})

	img := base64.StdEncoding.EncodeToString([]byte("img"))
	body := `{"imageBase64":"` + img + `","userState":"NC","description":"confirmed defect"}`
	w := httptest.NewRecorder()
	h.GenerateDDID(w, authedRequest(http.MethodPost, "/api/generate-ddid", body))

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "DDID statement.", resp["ddid"])
}
