package requirements

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

var requirementCols = []string{"id", "name", "experience", "technology", "no_of_openings", "notice_period", "priority", "jd_text", "file_key", "created_at"}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	openings := 2
	req := Requirement{
		ID:           "req-1",
		Name:         "Python Developer",
		Experience:   "4+ years",
		Technology:   "python",
		NoOfOpenings: &openings,
		JDText:       "jd",
		CreatedAt:    now,
	}

	mock.ExpectExec("INSERT INTO requirements").
		WithArgs(req.ID, req.Name, req.Experience, req.Technology, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), req.JDText, nil, now).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDScansNullables(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM requirements WHERE id = \\$1 AND NOT is_deleted").
		WithArgs("req-1").
		WillReturnRows(sqlmock.NewRows(requirementCols).
			AddRow("req-1", "Java Developer", "3 years", "java", int64(3), nil, true, "jd", "requirements/abc_jd.pdf", now))

	req, err := repo.GetByID(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if req.NoOfOpenings == nil || *req.NoOfOpenings != 3 {
		t.Fatalf("unexpected openings %v", req.NoOfOpenings)
	}
	if req.NoticePeriod != nil {
		t.Fatalf("expected nil notice period, got %v", *req.NoticePeriod)
	}
	if req.Priority == nil || !*req.Priority {
		t.Fatalf("expected priority true")
	}
	if req.FileKey != "requirements/abc_jd.pdf" {
		t.Fatalf("unexpected file key %q", req.FileKey)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	mock.ExpectQuery("SELECT (.+) FROM requirements").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(requirementCols))

	if _, err := repo.GetByID(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPGRepoListClampsLimit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	now := time.Now().UTC()
	mock.ExpectQuery("SELECT (.+) FROM requirements").
		WithArgs(100, 0).
		WillReturnRows(sqlmock.NewRows(requirementCols).
			AddRow("a", "A", "1 year", "go", nil, nil, nil, "", nil, now).
			AddRow("b", "B", "2 years", "php", nil, nil, false, "", nil, now))

	list, err := repo.List(context.Background(), 500, -3)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(list))
	}
	if list[1].Priority == nil || *list[1].Priority {
		t.Fatalf("expected explicit false priority")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoSoftDelete(t *testing.T) {
	tests := []struct {
		name     string
		affected int64
		wantErr  error
	}{
		{name: "deleted", affected: 1},
		{name: "already gone", affected: 0, wantErr: ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			if err != nil {
				t.Fatalf("sqlmock.New: %v", err)
			}
			t.Cleanup(func() { _ = db.Close() })

			mock.ExpectExec("UPDATE requirements SET is_deleted = TRUE").
				WithArgs("req-1").
				WillReturnResult(sqlmock.NewResult(0, tt.affected))

			err = (&PGRepo{DB: db}).SoftDelete(context.Background(), "req-1")
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}
