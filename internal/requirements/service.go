package requirements

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/extract"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/shared/storage/object"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/technology"
)

const (
	requirementNamespace = "requirements"
	maxGenerateInput     = 2000
)

// Extractor is satisfied by *extraction.Pipeline.
type Extractor interface {
	Extract(ctx context.Context, text string, schema extraction.Schema) (extraction.Result, error)
	Vocabulary() *technology.Vocabulary
}

// Service contains business logic for requirements and the JD assistant.
type Service struct {
	Store     object.ObjectStore
	Repo      Repo
	Extractor Extractor
	Writer    extraction.TextAnalyzer
	Now       func() time.Time
}

// CreateFromFile extracts a requirement from a job description document.
func (s *Service) CreateFromFile(ctx context.Context, up Upload) (Requirement, error) {
	if strings.TrimSpace(up.FileName) == "" || len(up.Data) == 0 {
		return Requirement{}, fmt.Errorf("%w: file is required", ErrInvalidInput)
	}
	format, err := extract.DetectFormat(up.FileName, up.ContentType, up.Data)
	if err != nil {
		return Requirement{}, err
	}
	text, err := extract.ExtractText(ctx, up.Data, format)
	if err != nil {
		return Requirement{}, err
	}
	res, err := s.Extractor.Extract(ctx, text, extraction.RequirementSchema)
	if err != nil {
		return Requirement{}, err
	}

	fileKey, _, _, err := s.Store.Save(ctx, requirementNamespace, up.FileName, bytes.NewReader(up.Data))
	if err != nil {
		return Requirement{}, fmt.Errorf("store job description: %w", err)
	}

	req := s.newRequirement(fieldsFromRecord(res.Record), text)
	req.FileKey = fileKey
	if err := s.Repo.Create(ctx, req); err != nil {
		return Requirement{}, err
	}
	telemetry.Info("requirements.created", map[string]any{
		"requirement_id": req.ID,
		"fallback_used":  res.FallbackUsed,
		"technology":     req.Technology,
	})
	return req, nil
}

// Get returns a live requirement.
func (s *Service) Get(ctx context.Context, id string) (Requirement, error) {
	if strings.TrimSpace(id) == "" {
		return Requirement{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// List returns live requirements newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Requirement, error) {
	return s.Repo.List(ctx, limit, offset)
}

// Delete soft-deletes a requirement.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidInput
	}
	return s.Repo.SoftDelete(ctx, id)
}

// Analyze reads a free-form hiring message. Missing required fields are not
// an error: the caller is asked for more information instead.
func (s *Service) Analyze(ctx context.Context, message string) (Analysis, error) {
	if strings.TrimSpace(message) == "" {
		return Analysis{}, fmt.Errorf("%w: message is required", ErrInvalidInput)
	}
	res, err := s.Extractor.Extract(ctx, message, extraction.RequirementSchema)
	if err == nil {
		return Analysis{Fields: fieldsFromRecord(res.Record), Status: StatusReady, MissingFields: []string{}}, nil
	}
	var exErr *extraction.Error
	if errors.As(err, &exErr) && exErr.Kind == extraction.KindUnprocessable {
		return Analysis{
			Fields:        fieldsFromRecord(exErr.Partial),
			Status:        StatusNeedMoreInfo,
			MissingFields: exErr.Missing,
		}, nil
	}
	return Analysis{}, err
}

// Generate writes a plain-text job description from the given fields. An
// empty name becomes "<Technology> Developer".
func (s *Service) Generate(ctx context.Context, fields Fields) (Fields, string, error) {
	fields = s.normalizeFields(fields)
	if fields.Technology == "" || strings.TrimSpace(fields.Experience) == "" {
		return fields, "", fmt.Errorf("%w: technology and experience are required", ErrInvalidInput)
	}
	if fields.Name == "" {
		fields.Name = s.defaultName(fields.Technology)
	}
	if s.Writer == nil {
		return fields, "", extraction.ErrProviderUnavailable
	}
	text, err := s.Writer.Analyze(ctx, generatePrompt(fields, s.Extractor.Vocabulary()), llm.PlainText)
	if err != nil {
		if !errors.Is(err, extraction.ErrProviderUnavailable) {
			err = fmt.Errorf("%w: %w", extraction.ErrProviderUnavailable, err)
		}
		return fields, "", err
	}
	if strings.TrimSpace(text) == "" {
		return fields, "", fmt.Errorf("%w: empty job description", extraction.ErrProviderUnavailable)
	}
	return fields, text, nil
}

// Save persists assistant output. Required fields the caller left empty are
// recovered from jdText through the extraction pipeline. A failed extraction
// still contributes the fields it found, and the heuristics when the model
// produced nothing.
func (s *Service) Save(ctx context.Context, fields Fields, jdText string) (Requirement, error) {
	fields = s.normalizeFields(fields)
	if (fields.Technology == "" || fields.Experience == "") && strings.TrimSpace(jdText) != "" {
		recovered, err := s.recoverFields(ctx, jdText)
		if err != nil {
			return Requirement{}, err
		}
		fields = s.normalizeFields(mergeFields(fields, recovered))
	}
	if fields.Technology == "" || fields.Experience == "" {
		return Requirement{}, fmt.Errorf("%w: technology and experience are required", ErrInvalidInput)
	}
	if fields.Name == "" {
		fields.Name = s.defaultName(fields.Technology)
	}

	req := s.newRequirement(fields, jdText)
	if err := s.Repo.Create(ctx, req); err != nil {
		return Requirement{}, err
	}
	return req, nil
}

func (s *Service) recoverFields(ctx context.Context, jdText string) (Fields, error) {
	res, err := s.Extractor.Extract(ctx, jdText, extraction.RequirementSchema)
	if err == nil {
		return fieldsFromRecord(res.Record), nil
	}
	var exErr *extraction.Error
	if !errors.As(err, &exErr) {
		return Fields{}, err
	}
	telemetry.Warn("requirements.save_partial_extraction", map[string]any{
		"kind":    exErr.Kind.String(),
		"missing": exErr.Missing,
	})
	recovered := fieldsFromRecord(exErr.Partial)
	if exErr.Kind == extraction.KindProviderUnavailable {
		fallback := extraction.RequirementFallback(jdText, s.Extractor.Vocabulary())
		recovered = mergeFields(recovered, fieldsFromRecord(fallback))
	}
	return recovered, nil
}

func (s *Service) newRequirement(f Fields, text string) Requirement {
	return Requirement{
		ID:           uuid.NewString(),
		Name:         f.Name,
		Experience:   f.Experience,
		Technology:   f.Technology,
		NoOfOpenings: f.NoOfOpenings,
		NoticePeriod: f.NoticePeriod,
		Priority:     f.Priority,
		JDText:       text,
		CreatedAt:    s.now(),
	}
}

func (s *Service) normalizeFields(f Fields) Fields {
	f.Name = strings.TrimSpace(f.Name)
	f.Experience = strings.TrimSpace(f.Experience)
	f.Technology = technology.Join(s.Extractor.Vocabulary().Normalize(f.Technology))
	return f
}

func (s *Service) defaultName(tech string) string {
	labels := s.Extractor.Vocabulary().DisplayNames(technology.Split(tech))
	if len(labels) == 0 {
		return "Developer"
	}
	return labels[0] + " Developer"
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func fieldsFromRecord(rec extraction.Record) Fields {
	return Fields{
		Name:         rec.String("name"),
		Experience:   rec.String("experience"),
		Technology:   rec.String("technology"),
		NoOfOpenings: rec.Int("no_of_openings"),
		NoticePeriod: rec.Int("notice_period"),
		Priority:     rec.Bool("priority"),
	}
}

// mergeFields fills gaps in f from extracted.
func mergeFields(f, extracted Fields) Fields {
	if f.Name == "" {
		f.Name = extracted.Name
	}
	if f.Experience == "" {
		f.Experience = extracted.Experience
	}
	if f.Technology == "" {
		f.Technology = extracted.Technology
	}
	if f.NoOfOpenings == nil {
		f.NoOfOpenings = extracted.NoOfOpenings
	}
	if f.NoticePeriod == nil {
		f.NoticePeriod = extracted.NoticePeriod
	}
	if f.Priority == nil {
		f.Priority = extracted.Priority
	}
	return f
}

func generatePrompt(f Fields, vocab *technology.Vocabulary) string {
	var b strings.Builder
	b.WriteString("Write a concise job description in plain text, no markdown.\n")
	b.WriteString("Include a summary, responsibilities, required skills and nice-to-have skills.\n\n")
	b.WriteString("Title: " + f.Name + "\n")
	b.WriteString("Technology: " + strings.Join(vocab.DisplayNames(technology.Split(f.Technology)), ", ") + "\n")
	b.WriteString("Experience: " + f.Experience + "\n")
	if f.NoOfOpenings != nil {
		fmt.Fprintf(&b, "Openings: %d\n", *f.NoOfOpenings)
	}
	if f.NoticePeriod != nil {
		fmt.Fprintf(&b, "Notice period (days): %d\n", *f.NoticePeriod)
	}
	out := b.String()
	if r := []rune(out); len(r) > maxGenerateInput {
		out = string(r[:maxGenerateInput])
	}
	return out
}
