package sop

import (
	"context"

	"github.com/spediak/spediak-backend/internal/models"
)

// DocumentMeta is assignment metadata without the extracted text body.
type DocumentMeta struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	DocType          string `json:"doc_type"`
	ExtractionStatus string `json:"extraction_status"`
}

// Active reports which documents would back a (state, organization) request,
// without materializing the merged text. Lookup errors degrade to nil entries,
// mirroring Resolve.
func (r *Resolver) Active(ctx context.Context, state, organization string) (stateMeta, orgMeta *DocumentMeta) {
	organization = NormalizeOrganization(organization)

	if doc, err := r.db.GetAssignedSopDocument(ctx, models.ScopeState, state); err == nil && doc != nil {
		stateMeta = metaOf(doc)
	} else if doc == nil && err == nil {
		// Fall back to the default document when the state is not excluded.
		if setting, err := r.db.GetDefaultSopSetting(ctx); err == nil && setting != nil && !excluded(setting.ExcludedStates, state) {
			if def, err := r.db.GetSopDocumentByID(ctx, setting.DocumentID); err == nil && def != nil {
				stateMeta = metaOf(def)
			}
		}
	}

	if organization != "" {
		if doc, err := r.db.GetAssignedSopDocument(ctx, models.ScopeOrganization, organization); err == nil && doc != nil {
			orgMeta = metaOf(doc)
		}
	}
	return stateMeta, orgMeta
}

func metaOf(d *models.SopDocument) *DocumentMeta {
	return &DocumentMeta{ID: d.ID, Name: d.Name, DocType: d.DocType, ExtractionStatus: d.ExtractionStatus}
}
