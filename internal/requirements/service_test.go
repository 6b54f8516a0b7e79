package requirements

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-backend/internal/extraction"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/shared/storage/object"
)

const pythonJD = `{"name":"Senior Python Developer","experience":"4+ years","technology":["Python","AWS Lambda"],"No_of_openings":"2 positions","notice_period":30,"priority":"high"}`

func TestCreateFromFile(t *testing.T) {
	svc, repo := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: pythonJD}}})

	req, err := svc.CreateFromFile(context.Background(), Upload{
		FileName: "jd.docx",
		Data:     docx(t, "Senior Python Developer", "4+ years with AWS"),
	})
	require.NoError(t, err)

	assert.Equal(t, "Senior Python Developer", req.Name)
	assert.Equal(t, "4+ years", req.Experience)
	assert.Equal(t, "python,aws", req.Technology)
	require.NotNil(t, req.NoOfOpenings)
	assert.Equal(t, 2, *req.NoOfOpenings)
	require.NotNil(t, req.Priority)
	assert.True(t, *req.Priority)
	assert.Contains(t, req.JDText, "Senior Python Developer")

	stored, err := repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, req.Technology, stored.Technology)

	data, err := object.ReadAll(context.Background(), svc.Store, req.FileKey)
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestCreateFromFileFallback(t *testing.T) {
	a := &scriptedAnalyzer{replies: []reply{{err: errors.New("timeout")}}}
	svc, _ := newTestService(t, a)

	req, err := svc.CreateFromFile(context.Background(), Upload{
		FileName: "jd.docx",
		Data:     docx(t, "We are hiring a Java engineer", "3-5 years of experience"),
	})
	require.NoError(t, err)
	assert.Equal(t, "java", req.Technology)
	assert.Equal(t, "3-5 years", req.Experience)
}

func TestCreateFromFileRejectsEmptyUpload(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: pythonJD}}})

	_, err := svc.CreateFromFile(context.Background(), Upload{FileName: "jd.docx"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeleteHidesRequirement(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: pythonJD}}})
	ctx := context.Background()

	req, err := svc.CreateFromFile(ctx, Upload{FileName: "jd.docx", Data: docx(t, "Python role")})
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, req.ID))
	_, err = svc.Get(ctx, req.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, req.ID), ErrNotFound)

	list, err := svc.List(ctx, 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestAnalyzeReady(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: pythonJD}}})

	got, err := svc.Analyze(context.Background(), "Need 2 python devs with 4+ years, urgent")
	require.NoError(t, err)
	assert.Equal(t, StatusReady, got.Status)
	assert.Empty(t, got.MissingFields)
	assert.Equal(t, "python,aws", got.Fields.Technology)
}

func TestAnalyzeNeedsMoreInfo(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: `{"technology":"react","experience":null}`}}})

	got, err := svc.Analyze(context.Background(), "Looking for a React person")
	require.NoError(t, err)
	assert.Equal(t, StatusNeedMoreInfo, got.Status)
	assert.Equal(t, []string{"experience"}, got.MissingFields)
	assert.Equal(t, "react", got.Fields.Technology)
}

func TestAnalyzeProviderUnavailable(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{err: errors.New("503")}}})

	_, err := svc.Analyze(context.Background(), "hello there")
	assert.ErrorIs(t, err, extraction.ErrProviderUnavailable)
}

func TestAnalyzeRejectsBlankMessage(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: pythonJD}}})

	_, err := svc.Analyze(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGenerateDefaultsName(t *testing.T) {
	a := &scriptedAnalyzer{replies: []reply{{out: "Summary: build services."}}}
	svc, _ := newTestService(t, a)

	fields, text, err := svc.Generate(context.Background(), Fields{
		Technology:   "Golang, Postgres SQL",
		Experience:   " 5 years ",
		NoOfOpenings: intPtr(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "Summary: build services.", text)
	assert.Equal(t, "go,sql", fields.Technology)
	assert.Equal(t, "Go Developer", fields.Name)
	assert.Equal(t, "5 years", fields.Experience)

	require.Len(t, a.prompts, 1)
	assert.Equal(t, llm.PlainText, a.shapes[0])
	assert.Contains(t, a.prompts[0], "Technology: Go, SQL")
	assert.Contains(t, a.prompts[0], "Openings: 3")
}

func TestGenerateRequiresTechnologyAndExperience(t *testing.T) {
	svc, _ := newTestService(t, &scriptedAnalyzer{replies: []reply{{out: "x"}}})

	_, _, err := svc.Generate(context.Background(), Fields{Technology: "cobol", Experience: "2 years"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestSaveRecoversMissingFields(t *testing.T) {
	a := &scriptedAnalyzer{replies: []reply{{out: `{"experience":"3 years","technology":"angular"}`}}}
	svc, repo := newTestService(t, a)

	req, err := svc.Save(context.Background(), Fields{Technology: "Angular"}, "Angular developer, 3 years")
	require.NoError(t, err)
	assert.Equal(t, "angular", req.Technology)
	assert.Equal(t, "3 years", req.Experience)
	assert.Equal(t, "Angular Developer", req.Name)
	assert.Equal(t, "Angular developer, 3 years", req.JDText)

	_, err = repo.GetByID(context.Background(), req.ID)
	require.NoError(t, err)
}

func TestSaveMergesPartialExtraction(t *testing.T) {
	const jd = "We need someone with 4+ years building backends."
	tests := []struct {
		name  string
		reply reply
	}{
		{name: "model missed technology", reply: reply{out: `{"experience":"4+ years","technology":""}`}},
		{name: "provider down", reply: reply{err: errors.New("connection reset")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, repo := newTestService(t, &scriptedAnalyzer{replies: []reply{tt.reply}})

			req, err := svc.Save(context.Background(), Fields{Technology: "python"}, jd)
			require.NoError(t, err)
			assert.Equal(t, "python", req.Technology)
			assert.Equal(t, "4+ years", req.Experience)

			_, err = repo.GetByID(context.Background(), req.ID)
			require.NoError(t, err)
		})
	}
}

func TestSaveFailsWhenFieldsStillMissing(t *testing.T) {
	svc, repo := newTestService(t, &scriptedAnalyzer{replies: []reply{{err: errors.New("connection reset")}}})

	_, err := svc.Save(context.Background(), Fields{Technology: "python"}, "Great team, remote friendly.")
	assert.ErrorIs(t, err, ErrInvalidInput)

	list, err := repo.List(context.Background(), 10, 0)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestSaveSkipsExtractionWhenComplete(t *testing.T) {
	a := &scriptedAnalyzer{replies: []reply{{err: errors.New("should not be called")}}}
	svc, _ := newTestService(t, a)

	req, err := svc.Save(context.Background(), Fields{Name: "Lead", Technology: "php", Experience: "6 years"}, "text")
	require.NoError(t, err)
	assert.Equal(t, "Lead", req.Name)
	assert.Empty(t, a.prompts)
}

func TestMergeFieldsKeepsCallerValues(t *testing.T) {
	f := mergeFields(
		Fields{Name: "Mine", NoOfOpenings: intPtr(1)},
		Fields{Name: "Theirs", Experience: "2 years", NoOfOpenings: intPtr(4), Technology: "java"},
	)
	assert.Equal(t, "Mine", f.Name)
	assert.Equal(t, 1, *f.NoOfOpenings)
	assert.Equal(t, "2 years", f.Experience)
	assert.Equal(t, "java", f.Technology)
}
