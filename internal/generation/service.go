// Package generation runs the statement pipeline: validate, gather context
// concurrently, assemble the prompt, call the vision model, clean and persist
// the result.
package generation

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/spediak/spediak-backend/internal/core"
	"github.com/spediak/spediak-backend/internal/knowledge"
	"github.com/spediak/spediak-backend/internal/models"
	"github.com/spediak/spediak-backend/internal/prompt"
	"github.com/spediak/spediak-backend/internal/sop"
	"github.com/spediak/spediak-backend/internal/usage"
)

// templateTTL bounds how stale the cached base template may be.
const templateTTL = 5 * time.Minute

// ErrValidation marks missing required request fields.
var ErrValidation = errors.New("generation: invalid request")

// QuotaError carries the usage counters so the client can render an upgrade
// prompt.
type QuotaError struct {
	Used  int
	Limit int
}

func (e *QuotaError) Error() string {
	return fmt.Sprintf("statement limit reached (%d of %d used)", e.Used, e.Limit)
}

// Request is the strict input schema for one generation. Organization is
// optional; the legacy "None" sentinel is normalized away at the boundary.
type Request struct {
	UserID       string
	ImageBase64  string
	Notes        string
	State        string
	Organization string
}

// Response mirrors the generate-statement payload.
type Response struct {
	Statement      string `json:"statement"`
	SopUsed        bool   `json:"sopUsed"`
	State          string `json:"state"`
	Organization   string `json:"organization,omitempty"`
	ProcessingTime string `json:"processingTime"`
}

// Store is the persistence slice the pipeline needs; *db.DatabaseClient
// satisfies it.
type Store interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateInspection(ctx context.Context, ins *models.Inspection) error
	GetPromptTemplate(ctx context.Context, name string) (*models.PromptTemplate, error)
}

type Service struct {
	db        Store
	llm       core.LLMProvider
	resolver  *sop.Resolver
	knowledge *knowledge.Lookup
	gate      *usage.Gate
	templates *prompt.TemplateCache
}

func NewService(db Store, llm core.LLMProvider, resolver *sop.Resolver, kn *knowledge.Lookup, gate *usage.Gate) *Service {
	s := &Service{db: db, llm: llm, resolver: resolver, knowledge: kn, gate: gate}
	s.templates = prompt.NewTemplateCache(func(ctx context.Context) (string, error) {
		t, err := db.GetPromptTemplate(ctx, prompt.TemplateName)
		if err != nil {
			return "", err
		}
		if t == nil {
			return prompt.DefaultBaseTemplate, nil
		}
		return t.Body, nil
	})
	return s
}

// GenerateStatement runs the full pipeline and persists the inspection record.
func (s *Service) GenerateStatement(ctx context.Context, req Request) (*Response, error) {
	started := time.Now()

	if strings.TrimSpace(req.ImageBase64) == "" {
		return nil, fmt.Errorf("%w: image is required", ErrValidation)
	}
	if strings.TrimSpace(req.State) == "" {
		return nil, fmt.Errorf("%w: userState is required", ErrValidation)
	}
	req.Organization = sop.NormalizeOrganization(req.Organization)

	image, format, err := decodeImage(req.ImageBase64)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidation, err)
	}

	user, err := s.db.GetUserByID(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	isAdmin := user != nil && user.IsAdmin

	// Gather the three context sources concurrently; generation waits on all
	// of them. The SOP and knowledge branches never fail, only the
	// subscription check can.
	var (
		sub     *models.UserSubscription
		sopRes  sop.Result
		snippet string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sub, err = s.gate.Current(gctx, req.UserID)
		return err
	})
	g.Go(func() error {
		sopRes = s.resolver.Resolve(gctx, req.State, req.Organization)
		return nil
	})
	g.Go(func() error {
		snippet = s.knowledge.Snippet(gctx, req.Notes)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("subscription check: %w", err)
	}

	if !usage.CanGenerate(sub, isAdmin) {
		qe := &QuotaError{}
		if sub != nil {
			qe.Used, qe.Limit = sub.StatementsUsed, sub.StatementsLimit
		}
		return nil, qe
	}

	base, err := s.templates.GetOrRefresh(ctx, templateTTL)
	if err != nil {
		log.Printf("generation: template load failed, using built-in default: %v", err)
		base = prompt.DefaultBaseTemplate
	}

	userPrompt := prompt.Assemble(prompt.Input{
		Base:         base,
		State:        req.State,
		Organization: req.Organization,
		Notes:        req.Notes,
		SopContext:   sopRes.Text,
		Knowledge:    snippet,
		SopBudget:    s.resolver.Budget(),
	})

	raw, err := s.llm.GenerateWithImage(ctx, "", userPrompt, format, image)
	if err != nil {
		return nil, fmt.Errorf("statement generation failed: %w", err)
	}
	statement := prompt.CleanStatement(raw)
	if statement == "" {
		return nil, errors.New("statement generation returned an empty response")
	}

	ins := &models.Inspection{
		ID:          uuid.NewString(),
		UserID:      req.UserID,
		Description: req.Notes,
		Statement:   statement,
		UserState:   req.State,
	}
	if err := s.db.CreateInspection(ctx, ins); err != nil {
		// The statement already exists; losing the record is worse than
		// returning it, so log and continue.
		log.Printf("generation: persist inspection failed: %v", err)
	}

	if !isAdmin && sub != nil && !sub.Unlimited() {
		s.gate.RecordUsage(req.UserID)
	}

	return &Response{
		Statement:      statement,
		SopUsed:        sopRes.UsedAny,
		State:          req.State,
		Organization:   req.Organization,
		ProcessingTime: time.Since(started).Round(time.Millisecond).String(),
	}, nil
}

// GeneratePreDescription is step one of the legacy two-step flow: a short
// factual description of the defect in the photo, no quota charge.
func (s *Service) GeneratePreDescription(ctx context.Context, imageBase64 string) (string, error) {
	if strings.TrimSpace(imageBase64) == "" {
		return "", fmt.Errorf("%w: image is required", ErrValidation)
	}
	image, format, err := decodeImage(imageBase64)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrValidation, err)
	}

	const ask = `Describe the visible defect in this inspection photo in 1-2 plain sentences.
State only what is observable; do not speculate about causes or consequences.`
	raw, err := s.llm.GenerateWithImage(ctx, "", ask, format, image)
	if err != nil {
		return "", fmt.Errorf("pre-description generation failed: %w", err)
	}
	return prompt.CleanStatement(raw), nil
}

// GenerateDDID is step two of the legacy flow: the caller supplies the
// confirmed description and the pipeline runs with it as the notes.
func (s *Service) GenerateDDID(ctx context.Context, req Request) (*Response, error) {
	return s.GenerateStatement(ctx, req)
}

// decodeImage accepts a raw base64 payload or a data URL and returns the
// bytes plus the bare image format name the model client expects.
func decodeImage(payload string) (data []byte, format string, err error) {
	format = "jpeg"
	if strings.HasPrefix(payload, "data:") {
		rest := strings.TrimPrefix(payload, "data:")
		semi := strings.Index(rest, ";base64,")
		if semi < 0 {
			return nil, "", errors.New("malformed image data URL")
		}
		mime := rest[:semi]
		if f, ok := strings.CutPrefix(mime, "image/"); ok && f != "" {
			format = f
		}
		payload = rest[semi+len(";base64,"):]
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, "", fmt.Errorf("decode image: %w", err)
	}
	if len(data) == 0 {
		return nil, "", errors.New("empty image payload")
	}
	return data, format, nil
}
