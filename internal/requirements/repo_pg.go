package requirements

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const requirementColumns = `id, name, experience, technology, no_of_openings, notice_period, priority, jd_text, file_key, created_at`

func (r *PGRepo) Create(ctx context.Context, req Requirement) error {
	const query = `
INSERT INTO requirements (` + requirementColumns + `)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	var fileKey sql.NullString
	if req.FileKey != "" {
		fileKey = sql.NullString{String: req.FileKey, Valid: true}
	}
	_, err := r.DB.ExecContext(ctx, query,
		req.ID,
		req.Name,
		req.Experience,
		req.Technology,
		req.NoOfOpenings,
		req.NoticePeriod,
		req.Priority,
		req.JDText,
		fileKey,
		req.CreatedAt,
	)
	return err
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (Requirement, error) {
	const query = `SELECT ` + requirementColumns + ` FROM requirements WHERE id = $1 AND NOT is_deleted`
	req, err := scanRequirement(r.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Requirement{}, ErrNotFound
		}
		return Requirement{}, err
	}
	return req, nil
}

func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Requirement, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `SELECT ` + requirementColumns + `
FROM requirements
WHERE NOT is_deleted
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Requirement
	for rows.Next() {
		req, err := scanRequirement(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *PGRepo) SoftDelete(ctx context.Context, id string) error {
	const query = `UPDATE requirements SET is_deleted = TRUE WHERE id = $1 AND NOT is_deleted`
	res, err := r.DB.ExecContext(ctx, query, id)
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

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequirement(row rowScanner) (Requirement, error) {
	var req Requirement
	var openings, notice sql.NullInt64
	var priority sql.NullBool
	var fileKey sql.NullString
	if err := row.Scan(
		&req.ID,
		&req.Name,
		&req.Experience,
		&req.Technology,
		&openings,
		&notice,
		&priority,
		&req.JDText,
		&fileKey,
		&req.CreatedAt,
	); err != nil {
		return Requirement{}, err
	}
	if openings.Valid {
		v := int(openings.Int64)
		req.NoOfOpenings = &v
	}
	if notice.Valid {
		v := int(notice.Int64)
		req.NoticePeriod = &v
	}
	if priority.Valid {
		v := priority.Bool
		req.Priority = &v
	}
	req.FileKey = fileKey.String
	return req, nil
}

var _ Repo = (*PGRepo)(nil)
