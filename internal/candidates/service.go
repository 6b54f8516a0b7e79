package candidates

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"recruit-backend/internal/extract"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/shared/storage/object"
	"recruit-backend/internal/shared/telemetry"
)

const resumeNamespace = "resumes"

// Extractor is satisfied by *extraction.Pipeline.
type Extractor interface {
	Extract(ctx context.Context, text string, schema extraction.Schema) (extraction.Result, error)
}

// Service contains business logic for candidate intake.
type Service struct {
	Store     object.ObjectStore
	Repo      Repo
	Extractor Extractor
	Now       func() time.Time
}

// Intake parses each résumé in order. Each file is fully processed and
// persisted before the next one starts; the first failure stops the batch and
// is returned as a *FileError. Candidates created before the failure stay.
func (s *Service) Intake(ctx context.Context, uploads []Upload) ([]Candidate, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: at least one file is required", ErrInvalidInput)
	}
	out := make([]Candidate, 0, len(uploads))
	for i, up := range uploads {
		c, err := s.intakeOne(ctx, up)
		if err != nil {
			telemetry.Warn("candidates.intake_failed", map[string]any{
				"file":  up.FileName,
				"index": i,
				"error": err.Error(),
			})
			return out, &FileError{FileName: up.FileName, Index: i, Err: err}
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Service) intakeOne(ctx context.Context, up Upload) (Candidate, error) {
	if strings.TrimSpace(up.FileName) == "" || len(up.Data) == 0 {
		return Candidate{}, fmt.Errorf("%w: empty file", ErrInvalidInput)
	}
	format, err := extract.DetectFormat(up.FileName, up.ContentType, up.Data)
	if err != nil {
		return Candidate{}, err
	}
	text, err := extract.ExtractText(ctx, up.Data, format)
	if err != nil {
		return Candidate{}, err
	}

	res, err := s.Extractor.Extract(ctx, text, extraction.ResumeSchema)
	if err != nil {
		return Candidate{}, err
	}
	rec := res.Record

	email := strings.TrimSpace(rec.String("email"))
	exists, err := s.Repo.EmailExists(ctx, email)
	if err != nil {
		return Candidate{}, err
	}
	if exists {
		return Candidate{}, ErrDuplicateEmail
	}

	fileKey, _, _, err := s.Store.Save(ctx, resumeNamespace, up.FileName, bytes.NewReader(up.Data))
	if err != nil {
		return Candidate{}, fmt.Errorf("store resume: %w", err)
	}

	now := s.now()
	c := Candidate{
		ID:         uuid.NewString(),
		Name:       rec.String("name"),
		Email:      email,
		Phone:      rec.String("phone"),
		Technology: rec.String("technology"),
		Experience: rec.String("experience"),
		Companies:  rec.Companies("companies"),
		RawText:    text,
		FileKey:    fileKey,
		FileName:   up.FileName,
		ShareToken: newShareToken(),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.Repo.Create(ctx, c); err != nil {
		return Candidate{}, err
	}
	telemetry.Info("candidates.created", map[string]any{
		"candidate_id":  c.ID,
		"fallback_used": res.FallbackUsed,
		"technology":    c.Technology,
		"companies":     len(c.Companies),
	})
	return c, nil
}

// Get returns a candidate by ID.
func (s *Service) Get(ctx context.Context, id string) (Candidate, error) {
	if strings.TrimSpace(id) == "" {
		return Candidate{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, id)
}

// Shared returns the candidate behind a share token.
func (s *Service) Shared(ctx context.Context, token string) (Candidate, error) {
	if strings.TrimSpace(token) == "" {
		return Candidate{}, ErrInvalidInput
	}
	return s.Repo.GetByShareToken(ctx, token)
}

// List returns candidates newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Candidate, error) {
	return s.Repo.List(ctx, limit, offset)
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func newShareToken() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		return strings.ReplaceAll(uuid.NewString(), "-", "")
	}
	return hex.EncodeToString(b[:])
}
