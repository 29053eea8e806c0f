// Package sop resolves the layered standards-of-practice context for a
// generation request: state-assigned document first, the global default for
// states without one (minus exclusions), then an organization supplement.
package sop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/spediak/spediak-backend/internal/models"
)

// Store is the slice of persistence the resolver needs; *db.DatabaseClient
// satisfies it.
type Store interface {
	GetAssignedSopDocument(ctx context.Context, scopeKind, scopeValue string) (*models.SopDocument, error)
	GetDefaultSopSetting(ctx context.Context) (*models.DefaultSopSetting, error)
	GetSopDocumentByID(ctx context.Context, id string) (*models.SopDocument, error)
}

// Authority labels, in priority order.
const (
	LabelPrimary       = "PRIMARY"
	LabelDefault       = "DEFAULT"
	LabelSupplementary = "SUPPLEMENTARY"
)

// sectionDelimiter separates merged SOP sections.
const sectionDelimiter = "\n\n==========\n\n"

// Lookup failure kinds. Resolve never propagates them; they are observable on
// Result.Err so callers and tests can tell "nothing configured" from "lookup
// failed".
var (
	ErrStateLookup   = errors.New("sop: state assignment lookup failed")
	ErrDefaultLookup = errors.New("sop: default setting lookup failed")
	ErrOrgLookup     = errors.New("sop: organization assignment lookup failed")
)

// Result is the resolver output. Text is empty when nothing applies or any
// lookup failed; UsedAny is true only when at least one document was merged.
type Result struct {
	Text    string
	UsedAny bool
	Err     error
}

type section struct {
	label string
	name  string
	note  string
	text  string
}

type Resolver struct {
	db         Store
	charBudget int
}

// NewResolver builds a resolver with the canonical per-document character
// budget. Every included document is truncated to this budget independently.
func NewResolver(db Store, charBudget int) *Resolver {
	if charBudget <= 0 {
		charBudget = 15000
	}
	return &Resolver{db: db, charBudget: charBudget}
}

// Budget reports the per-document character cap applied during resolution.
func (r *Resolver) Budget() int { return r.charBudget }

// Resolve produces the merged SOP context for (state, organization).
// It never returns an error: failures degrade to an empty context with the
// failure recorded on Result.Err.
func (r *Resolver) Resolve(ctx context.Context, state, organization string) Result {
	organization = NormalizeOrganization(organization)

	var (
		sections []section
		included = map[string]bool{}
	)

	// 1. State-scoped assignment: the authoritative document.
	stateDoc, err := r.db.GetAssignedSopDocument(ctx, models.ScopeState, state)
	if err != nil {
		log.Printf("sop: state lookup failed for %q: %v", state, err)
		return Result{Err: fmt.Errorf("%w: %v", ErrStateLookup, err)}
	}
	if stateDoc != nil && stateDoc.ExtractedText != "" {
		sections = append(sections, section{
			label: LabelPrimary,
			name:  stateDoc.Name,
			note:  fmt.Sprintf("assigned standards for %s", state),
			text:  Truncate(stateDoc.ExtractedText, r.charBudget),
		})
		included[stateDoc.ID] = true
	}

	// 2. Global default, only when the state has no document of its own and
	// is not excluded from the fallback.
	if stateDoc == nil {
		setting, err := r.db.GetDefaultSopSetting(ctx)
		if err != nil {
			log.Printf("sop: default lookup failed: %v", err)
			return Result{Err: fmt.Errorf("%w: %v", ErrDefaultLookup, err)}
		}
		if setting != nil && !excluded(setting.ExcludedStates, state) {
			defDoc, err := r.db.GetSopDocumentByID(ctx, setting.DocumentID)
			if err != nil {
				log.Printf("sop: default document lookup failed: %v", err)
				return Result{Err: fmt.Errorf("%w: %v", ErrDefaultLookup, err)}
			}
			if defDoc != nil && defDoc.ExtractedText != "" && !included[defDoc.ID] {
				sections = append(sections, section{
					label: LabelDefault,
					name:  defDoc.Name,
					note:  "global fallback standards",
					text:  Truncate(defDoc.ExtractedText, r.charBudget),
				})
				included[defDoc.ID] = true
			}
		}
	}

	// 3. Organization supplement, de-duplicated by document id.
	if organization != "" {
		orgDoc, err := r.db.GetAssignedSopDocument(ctx, models.ScopeOrganization, organization)
		if err != nil {
			log.Printf("sop: organization lookup failed for %q: %v", organization, err)
			return Result{Err: fmt.Errorf("%w: %v", ErrOrgLookup, err)}
		}
		if orgDoc != nil && orgDoc.ExtractedText != "" && !included[orgDoc.ID] {
			sections = append(sections, section{
				label: LabelSupplementary,
				name:  orgDoc.Name,
				note:  fmt.Sprintf("organizational standards for %s", organization),
				text:  Truncate(orgDoc.ExtractedText, r.charBudget),
			})
			included[orgDoc.ID] = true
		}
	}

	if len(sections) == 0 {
		return Result{}
	}

	// Sections were appended in priority order already; render them.
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		parts = append(parts, fmt.Sprintf("--- %s SOP: %s (%s) ---\n%s", s.label, s.name, s.note, s.text))
	}
	return Result{Text: strings.Join(parts, sectionDelimiter), UsedAny: true}
}

// Truncate caps s at budget characters. Truncating an already-capped string
// returns it unchanged.
func Truncate(s string, budget int) string {
	if budget <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= budget {
		return s
	}
	return string(runes[:budget])
}

// NormalizeOrganization maps the legacy "None" sentinel (and whitespace) to
// the empty string so core logic only sees a real organization name or none.
func NormalizeOrganization(org string) string {
	org = strings.TrimSpace(org)
	if strings.EqualFold(org, "None") {
		return ""
	}
	return org
}

func excluded(states []string, state string) bool {
	for _, s := range states {
		if strings.EqualFold(s, state) {
			return true
		}
	}
	return false
}
