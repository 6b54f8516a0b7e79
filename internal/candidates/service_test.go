package candidates

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-backend/internal/extract"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/shared/storage/object"
)

const ashaJSON = `{"name":"Asha Patel","email":"asha@example.com","phone":"+91 81410 81293","technology":"Python, AWS","experience":"3 years","companies":[{"company_name":"Globalia Soft LLP","start_date":"Nov 2023","end_date":"Present"}]}`

func TestIntakeCreatesCandidate(t *testing.T) {
	svc, repo := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: ashaJSON}}})

	created, err := svc.Intake(context.Background(), []Upload{{
		FileName:    "asha.docx",
		ContentType: "application/zip",
		Data:        docx(t, "Asha Patel", "asha@example.com"),
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)

	c := created[0]
	assert.Equal(t, "Asha Patel", c.Name)
	assert.Equal(t, "asha@example.com", c.Email)
	assert.Equal(t, "+918141081293", c.Phone)
	assert.Equal(t, "python,aws", c.Technology)
	require.Len(t, c.Companies, 1)
	assert.Equal(t, "Globalia Soft LLP", c.Companies[0].CompanyName)
	require.NotNil(t, c.Companies[0].EndDate)
	assert.Equal(t, extraction.RunningDate, *c.Companies[0].EndDate)
	assert.Len(t, c.ShareToken, 32)
	assert.Contains(t, c.RawText, "Asha Patel")

	stored, err := repo.GetByID(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Email, stored.Email)

	data, err := object.ReadAll(context.Background(), svc.Store, c.FileKey)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestIntakeFallbackWhenModelDown(t *testing.T) {
	a := &scriptedAnalyzer{replies: []reply{{err: errors.New("connection refused")}}}
	svc, _ := newTestService(t, a)

	created, err := svc.Intake(context.Background(), []Upload{{
		FileName: "ravi.docx",
		Data:     docx(t, "Ravi Kumar", "ravi.kumar@example.com", "Skills: Python, Django", "Infosys Technologies"),
	}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "Ravi Kumar", created[0].Name)
	assert.Equal(t, "ravi.kumar@example.com", created[0].Email)
}

func TestIntakeDuplicateEmailStopsBatch(t *testing.T) {
	svc, repo := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: ashaJSON}}})

	uploads := []Upload{
		{FileName: "a.docx", Data: docx(t, "Asha Patel")},
		{FileName: "b.docx", Data: docx(t, "Asha Patel again")},
		{FileName: "c.docx", Data: docx(t, "never reached")},
	}
	created, err := svc.Intake(context.Background(), uploads)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicateEmail)
	require.Len(t, created, 1)

	var fileErr *FileError
	require.ErrorAs(t, err, &fileErr)
	assert.Equal(t, 1, fileErr.Index)
	assert.Equal(t, "b.docx", fileErr.FileName)

	list, err := repo.List(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestIntakeProviderUnavailable(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{err: errors.New("429 quota")}}})

	_, err := svc.Intake(context.Background(), []Upload{{
		FileName: "blank.docx",
		Data:     docx(t, "no contact details here"),
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, extraction.ErrProviderUnavailable)
}

func TestIntakeUnprocessableOnMalformedModelOutput(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: `{"name": "Only Name"}`}}})

	_, err := svc.Intake(context.Background(), []Upload{{
		FileName: "cv.docx",
		Data:     docx(t, "Only Name"),
	}})
	require.Error(t, err)
	assert.ErrorIs(t, err, extraction.ErrUnprocessable)
}

func TestIntakeRejectsUnsupportedFile(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: ashaJSON}}})

	_, err := svc.Intake(context.Background(), []Upload{{FileName: "cv.txt", ContentType: "text/plain", Data: []byte("hello")}})
	assert.ErrorIs(t, err, extract.ErrUnsupportedFormat)

	_, err = svc.Intake(context.Background(), nil)
	assert.ErrorIs(t, err, ErrInvalidInput)
}
