package interviews

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) AddPhoto(ctx context.Context, p Photo) error {
	const query = `
INSERT INTO candidate_photos (id, candidate_id, storage_key, file_name, mime_type, size_bytes, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.DB.ExecContext(ctx, query, p.ID, p.CandidateID, p.StorageKey, p.FileName, p.MimeType, p.SizeBytes, p.CreatedAt)
	return err
}

func (r *PGRepo) ListPhotos(ctx context.Context, candidateID string) ([]Photo, error) {
	const query = `
SELECT id, candidate_id, storage_key, file_name, mime_type, size_bytes, created_at
FROM candidate_photos
WHERE candidate_id = $1
ORDER BY created_at, id`
	rows, err := r.DB.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Photo
	for rows.Next() {
		var p Photo
		if err := rows.Scan(&p.ID, &p.CandidateID, &p.StorageKey, &p.FileName, &p.MimeType, &p.SizeBytes, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *PGRepo) SaveEmotionReport(ctx context.Context, rep EmotionReport) error {
	payload, err := json.Marshal(rep.Summary)
	if err != nil {
		return fmt.Errorf("encode emotion summary: %w", err)
	}
	const query = `
INSERT INTO emotion_summaries (candidate_id, summary, updated_at)
VALUES ($1, $2, $3)
ON CONFLICT (candidate_id) DO UPDATE SET summary = EXCLUDED.summary, updated_at = EXCLUDED.updated_at`
	_, err = r.DB.ExecContext(ctx, query, rep.CandidateID, payload, rep.UpdatedAt)
	return err
}

func (r *PGRepo) GetEmotionReport(ctx context.Context, candidateID string) (EmotionReport, error) {
	const query = `SELECT candidate_id, summary, updated_at FROM emotion_summaries WHERE candidate_id = $1`
	rep, err := scanEmotionReport(r.DB.QueryRowContext(ctx, query, candidateID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return EmotionReport{}, ErrNotFound
		}
		return EmotionReport{}, err
	}
	return rep, nil
}

func (r *PGRepo) ListEmotionReports(ctx context.Context) ([]EmotionReport, error) {
	const query = `SELECT candidate_id, summary, updated_at FROM emotion_summaries ORDER BY updated_at DESC, candidate_id`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EmotionReport
	for rows.Next() {
		rep, err := scanEmotionReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rep)
	}
	return out, rows.Err()
}

func (r *PGRepo) SaveCommunication(ctx context.Context, s CommunicationScore) error {
	const query = `
INSERT INTO communication_scores (candidate_id, grammar, professional_language, grammar_explanation, professional_language_explanation, language_used, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (candidate_id) DO UPDATE SET
    grammar = EXCLUDED.grammar,
    professional_language = EXCLUDED.professional_language,
    grammar_explanation = EXCLUDED.grammar_explanation,
    professional_language_explanation = EXCLUDED.professional_language_explanation,
    language_used = EXCLUDED.language_used,
    updated_at = EXCLUDED.updated_at`
	_, err := r.DB.ExecContext(ctx, query,
		s.CandidateID,
		s.Grammar,
		s.ProfessionalLanguage,
		nullString(s.GrammarExplanation),
		nullString(s.ProfessionalLanguageExplanation),
		nullString(s.LanguageUsed),
		s.UpdatedAt,
	)
	return err
}

func (r *PGRepo) GetCommunication(ctx context.Context, candidateID string) (CommunicationScore, error) {
	const query = `
SELECT candidate_id, grammar, professional_language, grammar_explanation, professional_language_explanation, language_used, updated_at
FROM communication_scores
WHERE candidate_id = $1`
	var s CommunicationScore
	var grammarExp, proExp, lang sql.NullString
	err := r.DB.QueryRowContext(ctx, query, candidateID).Scan(
		&s.CandidateID, &s.Grammar, &s.ProfessionalLanguage, &grammarExp, &proExp, &lang, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CommunicationScore{}, ErrNotFound
		}
		return CommunicationScore{}, err
	}
	s.GrammarExplanation = grammarExp.String
	s.ProfessionalLanguageExplanation = proExp.String
	s.LanguageUsed = lang.String
	return s, nil
}

// ReplaceQuestions swaps the whole question set of a candidate in one transaction.
func (r *PGRepo) ReplaceQuestions(ctx context.Context, candidateID string, qs []Question) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM interview_questions WHERE candidate_id = $1`, candidateID); err != nil {
		return err
	}
	const insert = `
INSERT INTO interview_questions (id, candidate_id, position, question, created_at)
VALUES ($1, $2, $3, $4, $5)`
	for _, q := range qs {
		if _, err = tx.ExecContext(ctx, insert, q.ID, candidateID, q.Position, q.Text, q.CreatedAt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

const questionColumns = `id, candidate_id, position, question, answer, rating, ai_response, rated_at, created_at`

func (r *PGRepo) ListQuestions(ctx context.Context, candidateID string) ([]Question, error) {
	query := `SELECT ` + questionColumns + ` FROM interview_questions WHERE candidate_id = $1 ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Question
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (r *PGRepo) GetQuestion(ctx context.Context, candidateID, questionID string) (Question, error) {
	query := `SELECT ` + questionColumns + ` FROM interview_questions WHERE candidate_id = $1 AND id = $2`
	q, err := scanQuestion(r.DB.QueryRowContext(ctx, query, candidateID, questionID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	return q, nil
}

func (r *PGRepo) SaveAnswer(ctx context.Context, candidateID, questionID, answer string) error {
	const query = `
UPDATE interview_questions SET answer = $3, rating = NULL, ai_response = NULL, rated_at = NULL
WHERE candidate_id = $1 AND id = $2`
	return expectOneRow(r.DB.ExecContext(ctx, query, candidateID, questionID, answer))
}

func (r *PGRepo) SaveRating(ctx context.Context, candidateID, questionID string, rating *int, aiResponse string, ratedAt time.Time) error {
	var value sql.NullInt64
	if rating != nil {
		value = sql.NullInt64{Int64: int64(*rating), Valid: true}
	}
	const query = `
UPDATE interview_questions SET rating = $3, ai_response = $4, rated_at = $5
WHERE candidate_id = $1 AND id = $2`
	return expectOneRow(r.DB.ExecContext(ctx, query, candidateID, questionID, value, aiResponse, ratedAt))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmotionReport(row rowScanner) (EmotionReport, error) {
	var rep EmotionReport
	var payload []byte
	if err := row.Scan(&rep.CandidateID, &payload, &rep.UpdatedAt); err != nil {
		return EmotionReport{}, err
	}
	if err := json.Unmarshal(payload, &rep.Summary); err != nil {
		return EmotionReport{}, fmt.Errorf("decode emotion summary: %w", err)
	}
	return rep, nil
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var answer sql.NullString
	var rating sql.NullInt64
	var aiResponse sql.NullString
	var ratedAt sql.NullTime
	if err := row.Scan(&q.ID, &q.CandidateID, &q.Position, &q.Text, &answer, &rating, &aiResponse, &ratedAt, &q.CreatedAt); err != nil {
		return Question{}, err
	}
	if answer.Valid {
		a := answer.String
		q.Answer = &a
	}
	if rating.Valid {
		v := int(rating.Int64)
		q.Rating = &v
	}
	if aiResponse.Valid {
		r := aiResponse.String
		q.AIResponse = &r
	}
	if ratedAt.Valid {
		t := ratedAt.Time
		q.RatedAt = &t
	}
	return q, nil
}

func expectOneRow(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

var _ Repo = (*PGRepo)(nil)
