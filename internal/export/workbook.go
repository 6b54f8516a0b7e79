package export

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"recruit-backend/internal/candidates"
	"recruit-backend/internal/interviews"
	"recruit-backend/internal/technology"
)

const (
	CandidatesSheet = "Candidates"
	EmotionSheet    = "Emotion Summary"

	pageSize = 100
)

var (
	candidateHeaders = []string{"Name", "Email", "Phone", "Technology", "Experience", "Companies", "Created"}
	emotionHeaders   = []string{"Candidate", "Email", "Photos", "Faces", "Good", "Neutral", "Bad", "Good %", "Neutral %", "Bad %", "Report", "Updated"}
)

// CandidateLister is satisfied by candidates.Repo.
type CandidateLister interface {
	List(ctx context.Context, limit, offset int) ([]candidates.Candidate, error)
}

// ReportLister is satisfied by interviews.Repo.
type ReportLister interface {
	ListEmotionReports(ctx context.Context) ([]interviews.EmotionReport, error)
}

// Service builds the candidate workbook.
type Service struct {
	Candidates CandidateLister
	Reports    ReportLister
	Vocab      *technology.Vocabulary
}

// Write renders every candidate and every emotion report into an xlsx
// workbook written to w.
func (s *Service) Write(ctx context.Context, w io.Writer) error {
	all, err := s.allCandidates(ctx)
	if err != nil {
		return err
	}
	var reports []interviews.EmotionReport
	if s.Reports != nil {
		reports, err = s.Reports.ListEmotionReports(ctx)
		if err != nil {
			return fmt.Errorf("list emotion reports: %w", err)
		}
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CandidatesSheet); err != nil {
		return err
	}
	if _, err := f.NewSheet(EmotionSheet); err != nil {
		return err
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return err
	}

	if err := s.writeCandidates(f, headerStyle, all); err != nil {
		return fmt.Errorf("candidates sheet: %w", err)
	}
	if err := writeEmotions(f, headerStyle, reports, indexByID(all)); err != nil {
		return fmt.Errorf("emotion sheet: %w", err)
	}
	f.SetActiveSheet(0)
	return f.Write(w)
}

func (s *Service) allCandidates(ctx context.Context) ([]candidates.Candidate, error) {
	var out []candidates.Candidate
	for offset := 0; ; offset += pageSize {
		page, err := s.Candidates.List(ctx, pageSize, offset)
		if err != nil {
			return nil, fmt.Errorf("list candidates: %w", err)
		}
		out = append(out, page...)
		if len(page) < pageSize {
			return out, nil
		}
	}
}

func (s *Service) writeCandidates(f *excelize.File, headerStyle int, all []candidates.Candidate) error {
	if err := writeHeader(f, CandidatesSheet, candidateHeaders, headerStyle); err != nil {
		return err
	}
	vocab := s.Vocab
	if vocab == nil {
		vocab = technology.Default()
	}
	for i, c := range all {
		row := []any{
			c.Name,
			c.Email,
			c.Phone,
			strings.Join(vocab.DisplayNames(technology.Split(c.Technology)), ", "),
			c.Experience,
			companyNames(c),
			c.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, CandidatesSheet, i+2, row); err != nil {
			return err
		}
	}
	return finishSheet(f, CandidatesSheet, len(candidateHeaders), len(all))
}

func writeEmotions(f *excelize.File, headerStyle int, reports []interviews.EmotionReport, byID map[string]candidates.Candidate) error {
	if err := writeHeader(f, EmotionSheet, emotionHeaders, headerStyle); err != nil {
		return err
	}
	for i, r := range reports {
		c := byID[r.CandidateID]
		name := c.Name
		if name == "" {
			name = r.CandidateID
		}
		sum := r.Summary
		row := []any{
			name,
			c.Email,
			sum.TotalPhotos,
			sum.TotalFaces,
			sum.Buckets.Good,
			sum.Buckets.Neutral,
			sum.Buckets.Bad,
			sum.Percentages.Good,
			sum.Percentages.Neutral,
			sum.Percentages.Bad,
			strings.Join(sum.ReportLines, "\n"),
			r.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if err := writeRow(f, EmotionSheet, i+2, row); err != nil {
			return err
		}
	}
	return finishSheet(f, EmotionSheet, len(emotionHeaders), len(reports))
}

func writeHeader(f *excelize.File, sheet string, headers []string, style int) error {
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
		if err := f.SetCellStyle(sheet, cell, cell, style); err != nil {
			return err
		}
	}
	return nil
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

// finishSheet freezes the header row and adds a filter over the data.
func finishSheet(f *excelize.File, sheet string, cols, rows int) error {
	last, err := excelize.ColumnNumberToName(cols)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", last, 20); err != nil {
		return err
	}
	if rows > 0 {
		ref := fmt.Sprintf("A1:%s%d", last, rows+1)
		if err := f.AutoFilter(sheet, ref, []excelize.AutoFilterOptions{}); err != nil {
			return err
		}
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func companyNames(c candidates.Candidate) string {
	names := make([]string, 0, len(c.Companies))
	for _, co := range c.Companies {
		if n := strings.TrimSpace(co.CompanyName); n != "" {
			names = append(names, n)
		}
	}
	return strings.Join(names, ", ")
}

func indexByID(all []candidates.Candidate) map[string]candidates.Candidate {
	out := make(map[string]candidates.Candidate, len(all))
	for _, c := range all {
		out[c.ID] = c
	}
	return out
}
