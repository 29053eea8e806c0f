package sop

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spediak/spediak-backend/internal/models"
)

type fakeStore struct {
	assignments map[string]*models.SopDocument // "kind/value" -> doc
	defaultSet  *models.DefaultSopSetting
	documents   map[string]*models.SopDocument
	failState   bool
	failDefault bool
	failOrg     bool
}

func (f *fakeStore) GetAssignedSopDocument(ctx context.Context, scopeKind, scopeValue string) (*models.SopDocument, error) {
	if scopeKind == models.ScopeState && f.failState {
		return nil, errors.New("boom")
	}
	if scopeKind == models.ScopeOrganization && f.failOrg {
		return nil, errors.New("boom")
	}
	return f.assignments[scopeKind+"/"+scopeValue], nil
}

func (f *fakeStore) GetDefaultSopSetting(ctx context.Context) (*models.DefaultSopSetting, error) {
	if f.failDefault {
		return nil, errors.New("boom")
	}
	return f.defaultSet, nil
}

func (f *fakeStore) GetSopDocumentByID(ctx context.Context, id string) (*models.SopDocument, error) {
	return f.documents[id], nil
}

func doc(id, name, text string) *models.SopDocument {
	return &models.SopDocument{
		ID:               id,
		Name:             name,
		ExtractedText:    text,
		ExtractionStatus: models.ExtractionCompleted,
	}
}

func TestResolveNothingConfigured(t *testing.T) {
	r := NewResolver(&fakeStore{assignments: map[string]*models.SopDocument{}}, 15000)

	res := r.Resolve(context.Background(), "NC", "ASHI")
	assert.Empty(t, res.Text)
	assert.False(t, res.UsedAny)
	assert.NoError(t, res.Err)
}

func TestResolveStateAssignment(t *testing.T) {
	text := strings.Repeat("x", 500)
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC": doc("d1", "NC Standards", text),
		},
	}
	r := NewResolver(store, 15000)

	res := r.Resolve(context.Background(), "NC", "ASHI")
	require.True(t, res.UsedAny)
	assert.Contains(t, res.Text, "PRIMARY SOP: NC Standards")
	assert.Contains(t, res.Text, text)
	assert.NoError(t, res.Err)
}

func TestResolveTruncatesToBudget(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC": doc("d1", "NC Standards", strings.Repeat("a", 20000)),
		},
	}
	r := NewResolver(store, 100)

	res := r.Resolve(context.Background(), "NC", "")
	require.True(t, res.UsedAny)
	assert.Contains(t, res.Text, strings.Repeat("a", 100))
	assert.NotContains(t, res.Text, strings.Repeat("a", 101))
}

func TestResolveDefaultExclusion(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{},
		defaultSet:  &models.DefaultSopSetting{DocumentID: "d9", ExcludedStates: []string{"WY"}},
		documents: map[string]*models.SopDocument{
			"d9": doc("d9", "InterNACHI Guide", "fallback text"),
		},
	}
	r := NewResolver(store, 15000)

	res := r.Resolve(context.Background(), "WY", "")
	assert.Empty(t, res.Text)
	assert.False(t, res.UsedAny)

	// A state that is not excluded gets the fallback, regardless of organization.
	res = r.Resolve(context.Background(), "SC", "ASHI")
	require.True(t, res.UsedAny)
	assert.Contains(t, res.Text, "DEFAULT SOP: InterNACHI Guide")
}

func TestResolveDeduplicatesByDocumentID(t *testing.T) {
	shared := doc("d1", "Shared Manual", "shared text")
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC":          shared,
			"organization/ASHI": shared,
		},
	}
	r := NewResolver(store, 15000)

	res := r.Resolve(context.Background(), "NC", "ASHI")
	require.True(t, res.UsedAny)
	assert.Equal(t, 1, strings.Count(res.Text, "Shared Manual"))
	assert.Contains(t, res.Text, "PRIMARY")
	assert.NotContains(t, res.Text, "SUPPLEMENTARY")
}

func TestResolveOrganizationSupplement(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC":          doc("d1", "NC Standards", "state text"),
			"organization/ASHI": doc("d2", "ASHI SOP", "org text"),
		},
	}
	r := NewResolver(store, 15000)

	res := r.Resolve(context.Background(), "NC", "ASHI")
	require.True(t, res.UsedAny)
	primary := strings.Index(res.Text, "PRIMARY SOP: NC Standards")
	supp := strings.Index(res.Text, "SUPPLEMENTARY SOP: ASHI SOP")
	require.GreaterOrEqual(t, primary, 0)
	require.Greater(t, supp, primary, "organization section must come after state section")
}

func TestResolveNoneSentinelSkipsOrgLookup(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC": doc("d1", "NC Standards", "state text"),
		},
		failOrg: true, // would error if the org branch ran
	}
	r := NewResolver(store, 15000)

	res := r.Resolve(context.Background(), "NC", "None")
	assert.True(t, res.UsedAny)
	assert.NoError(t, res.Err)
}

func TestResolveSkipsDocumentWithoutText(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC": {ID: "d1", Name: "NC Standards", ExtractionStatus: models.ExtractionPending},
		},
	}
	r := NewResolver(store, 15000)

	res := r.Resolve(context.Background(), "NC", "")
	assert.False(t, res.UsedAny)
	assert.Empty(t, res.Text)
}

func TestResolveLookupFailureNeverThrows(t *testing.T) {
	r := NewResolver(&fakeStore{failState: true}, 15000)

	res := r.Resolve(context.Background(), "NC", "ASHI")
	assert.Empty(t, res.Text)
	assert.False(t, res.UsedAny)
	assert.ErrorIs(t, res.Err, ErrStateLookup)
}

func TestTruncateIdempotent(t *testing.T) {
	s := strings.Repeat("z", 5000)
	once := Truncate(s, 1000)
	twice := Truncate(once, 1000)
	assert.Equal(t, once, twice)
	assert.Len(t, once, 1000)

	short := "tiny"
	assert.Equal(t, short, Truncate(short, 1000))
}

func TestActiveReportsAssignmentMetadata(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{
			"state/NC":          doc("d1", "NC Standards", "state text"),
			"organization/ASHI": doc("d2", "ASHI SOP", "org text"),
		},
	}
	r := NewResolver(store, 15000)

	stateMeta, orgMeta := r.Active(context.Background(), "NC", "ASHI")
	require.NotNil(t, stateMeta)
	assert.Equal(t, "NC Standards", stateMeta.Name)
	require.NotNil(t, orgMeta)
	assert.Equal(t, "ASHI SOP", orgMeta.Name)
}

func TestActiveFallsBackToDefault(t *testing.T) {
	store := &fakeStore{
		assignments: map[string]*models.SopDocument{},
		defaultSet:  &models.DefaultSopSetting{DocumentID: "d9", ExcludedStates: []string{"WY"}},
		documents: map[string]*models.SopDocument{
			"d9": doc("d9", "InterNACHI Guide", "fallback text"),
		},
	}
	r := NewResolver(store, 15000)

	stateMeta, orgMeta := r.Active(context.Background(), "SC", "None")
	require.NotNil(t, stateMeta)
	assert.Equal(t, "InterNACHI Guide", stateMeta.Name)
	assert.Nil(t, orgMeta)

	stateMeta, _ = r.Active(context.Background(), "WY", "")
	assert.Nil(t, stateMeta, "excluded state gets no default")
}

func TestNormalizeOrganization(t *testing.T) {
	assert.Equal(t, "", NormalizeOrganization("None"))
	assert.Equal(t, "", NormalizeOrganization("none"))
	assert.Equal(t, "", NormalizeOrganization("  "))
	assert.Equal(t, "ASHI", NormalizeOrganization(" ASHI "))
}
