package candidates

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"recruit-backend/internal/extraction"
)

func strPtr(s string) *string { return &s }

func TestPGRepoCreateWritesCompaniesInOrder(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	c := Candidate{
		ID:         "cand-1",
		Name:       "Asha Patel",
		Email:      "asha@example.com",
		Technology: "python,aws",
		RawText:    "raw",
		ShareToken: "tok",
		CreatedAt:  now,
		UpdatedAt:  now,
		Companies: []extraction.CompanyHistoryEntry{
			{CompanyName: "Globalia Soft LLP", StartDate: strPtr("2023-11"), EndDate: strPtr("running")},
			{CompanyName: "Acme Systems", StartDate: strPtr("2019")},
		},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").
		WithArgs(c.ID, c.Name, c.Email, nil, c.Technology, nil, c.RawText, nil, nil, c.ShareToken, now, now).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO candidate_companies").
		WithArgs(c.ID, 0, "Globalia Soft LLP", "2023-11", "running").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("INSERT INTO candidate_companies").
		WithArgs(c.ID, 1, "Acme Systems", "2019", nil).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), c); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO candidates").
		WillReturnError(&pgconn.PgError{Code: "23505"})
	mock.ExpectRollback()

	err = repo.Create(context.Background(), Candidate{ID: "c", Email: "dup@example.com"})
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoEmailExists(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("Asha@Example.com").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.EmailExists(context.Background(), " Asha@Example.com ")
	if err != nil {
		t.Fatalf("EmailExists: %v", err)
	}
	if !exists {
		t.Fatalf("expected email to exist")
	}
}

func TestPGRepoGetByIDLoadsCompanies(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	cols := []string{"id", "name", "email", "phone", "technology", "experience", "raw_text", "file_key", "file_name", "share_token", "created_at", "updated_at"}
	mock.ExpectQuery("FROM candidates WHERE id").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows(cols).AddRow("cand-1", "Asha", "asha@example.com", "+91", "python", nil, "raw", "resumes/x_cv.pdf", "cv.pdf", "tok", now, now))
	mock.ExpectQuery("FROM candidate_companies").
		WithArgs("cand-1").
		WillReturnRows(sqlmock.NewRows([]string{"company_name", "start_date", "end_date"}).
			AddRow("Globalia Soft LLP", "2023-11", "running").
			AddRow("Acme", nil, nil))

	c, err := repo.GetByID(context.Background(), "cand-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if c.Phone != "+91" || c.Experience != "" || c.FileKey != "resumes/x_cv.pdf" {
		t.Fatalf("unexpected candidate: %+v", c)
	}
	if len(c.Companies) != 2 {
		t.Fatalf("expected 2 companies, got %d", len(c.Companies))
	}
	if c.Companies[0].EndDate == nil || *c.Companies[0].EndDate != "running" {
		t.Fatalf("unexpected end date: %v", c.Companies[0].EndDate)
	}
	if c.Companies[1].StartDate != nil {
		t.Fatalf("expected nil start date")
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("FROM candidates WHERE id").
		WithArgs("missing").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
