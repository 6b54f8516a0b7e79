package candidates

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"recruit-backend/internal/extraction"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const candidateColumns = `id, name, email, phone, technology, experience, raw_text, file_key, file_name, share_token, created_at, updated_at`

// Create inserts the candidate and its employment history in one transaction.
func (r *PGRepo) Create(ctx context.Context, c Candidate) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const insertCandidate = `
INSERT INTO candidates (` + candidateColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err = tx.ExecContext(ctx, insertCandidate,
		c.ID,
		c.Name,
		c.Email,
		nullString(c.Phone),
		c.Technology,
		nullString(c.Experience),
		c.RawText,
		nullString(c.FileKey),
		nullString(c.FileName),
		c.ShareToken,
		c.CreatedAt,
		c.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateEmail
		}
		return err
	}

	const insertCompany = `
INSERT INTO candidate_companies (candidate_id, position, company_name, start_date, end_date)
VALUES ($1, $2, $3, $4, $5)`
	for i, co := range c.Companies {
		if _, err = tx.ExecContext(ctx, insertCompany, c.ID, i, co.CompanyName, co.StartDate, co.EndDate); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// GetByID fetches a candidate with its employment history.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Candidate, error) {
	const query = `SELECT ` + candidateColumns + ` FROM candidates WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByShareToken fetches the candidate behind a share link.
func (r *PGRepo) GetByShareToken(ctx context.Context, token string) (Candidate, error) {
	const query = `SELECT ` + candidateColumns + ` FROM candidates WHERE share_token = $1`
	return r.getOne(ctx, query, token)
}

// EmailExists checks the lower(email) unique index.
func (r *PGRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM candidates WHERE lower(email) = lower($1))`
	var exists bool
	if err := r.DB.QueryRowContext(ctx, query, strings.TrimSpace(email)).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// List returns candidates newest first. Employment history is not loaded.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + candidateColumns + `
FROM candidates
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Candidate
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *PGRepo) getOne(ctx context.Context, query string, arg string) (Candidate, error) {
	c, err := scanCandidate(r.DB.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Candidate{}, ErrNotFound
		}
		return Candidate{}, err
	}
	companies, err := r.companies(ctx, c.ID)
	if err != nil {
		return Candidate{}, err
	}
	c.Companies = companies
	return c, nil
}

func (r *PGRepo) companies(ctx context.Context, candidateID string) ([]extraction.CompanyHistoryEntry, error) {
	const query = `
SELECT company_name, start_date, end_date
FROM candidate_companies
WHERE candidate_id = $1
ORDER BY position`
	rows, err := r.DB.QueryContext(ctx, query, candidateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []extraction.CompanyHistoryEntry
	for rows.Next() {
		var (
			entry      extraction.CompanyHistoryEntry
			start, end sql.NullString
		)
		if err := rows.Scan(&entry.CompanyName, &start, &end); err != nil {
			return nil, err
		}
		if start.Valid {
			entry.StartDate = &start.String
		}
		if end.Valid {
			entry.EndDate = &end.String
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (Candidate, error) {
	var c Candidate
	var phone, experience, fileKey, fileName sql.NullString
	err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Email,
		&phone,
		&c.Technology,
		&experience,
		&c.RawText,
		&fileKey,
		&fileName,
		&c.ShareToken,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err != nil {
		return Candidate{}, err
	}
	c.Phone = phone.String
	c.Experience = experience.String
	c.FileKey = fileKey.String
	c.FileName = fileName.String
	return c, nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repo = (*PGRepo)(nil)
