package candidates

import (
	"archive/zip"
	"bytes"
	"context"
	"html"
	"strings"
	"sync"
	"testing"

	"recruit-backend/internal/extraction"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/shared/storage/object/local"
	"recruit-backend/internal/technology"
)

// scriptedAnalyzer replays replies in order; the last reply repeats.
type scriptedAnalyzer struct {
	mu      sync.Mutex
	replies []reply
	calls   int
}

type reply struct {
	out string
	err error
}

func (s *scriptedAnalyzer) Analyze(ctx context.Context, prompt string, shape llm.OutputShape) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	if i >= len(s.replies) {
		i = len(s.replies) - 1
	}
	s.calls++
	return s.replies[i].out, s.replies[i].err
}

func docx(t *testing.T, lines ...string) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString(`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>`)
	for _, l := range lines {
		body.WriteString("<w:p><w:r><w:t>" + html.EscapeString(l) + "</w:t></w:r></w:p>")
	}
	body.WriteString("</w:body></w:document>")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("create zip entry: %v", err)
	}
	if _, err := w.Write([]byte(body.String())); err != nil {
		t.Fatalf("write zip entry: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	return buf.Bytes()
}

func newTestService(t *testing.T, a extraction.TextAnalyzer) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	return &Service{
		Store:     local.New(t.TempDir()),
		Repo:      repo,
		Extractor: extraction.NewPipeline(a, technology.Default()),
	}, repo
}
