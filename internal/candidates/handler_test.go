package candidates

import (
	"bytes"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"recruit-backend/internal/technology"
)

type uploadFile struct {
	name string
	data []byte
}

func newTestRouter(t *testing.T, a *scriptedAnalyzer) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	svc, _ := newTestService(t, a)
	r := gin.New()
	NewHandler(svc, technology.Default(), "https://hire.example").RegisterRoutes(r.Group("/api/v1"))
	return r
}

func multipartRequest(t *testing.T, files ...uploadFile) *http.Request {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	for _, f := range files {
		fw, err := writer.CreateFormFile("upload_doc", f.name)
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(f.data); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/candidates", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func decodeErrorCode(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var payload struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return payload.Error.Code
}

func TestHandlerIntakeAndGet(t *testing.T) {
	router := newTestRouter(t, &scriptedAnalyzer{replies: []reply{{out: ashaJSON}}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t, uploadFile{name: "asha.docx", data: docx(t, "Asha Patel")}))
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var created struct {
		Candidates []CandidateResponse `json:"candidates"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(created.Candidates) != 1 {
		t.Fatalf("expected 1 candidate, got %d", len(created.Candidates))
	}
	cand := created.Candidates[0]
	if got := cand.TechnologyText; len(got) != 2 || got[0] != "Python" || got[1] != "AWS" {
		t.Fatalf("unexpected labels %v", got)
	}
	if len(cand.ShareLink) == 0 || cand.ShareLink[:len("https://hire.example/share/")] != "https://hire.example/share/" {
		t.Fatalf("unexpected share link %q", cand.ShareLink)
	}

	getResp := httptest.NewRecorder()
	router.ServeHTTP(getResp, httptest.NewRequest(http.MethodGet, "/api/v1/candidates/"+cand.CandidateID, nil))
	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.Code)
	}

	listResp := httptest.NewRecorder()
	router.ServeHTTP(listResp, httptest.NewRequest(http.MethodGet, "/api/v1/candidates?limit=5", nil))
	if listResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", listResp.Code)
	}
	var list []CandidateResponse
	if err := json.NewDecoder(listResp.Body).Decode(&list); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 listed candidate, got %d", len(list))
	}
}

func TestHandlerErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		replies    []reply
		files      []uploadFile
		wantStatus int
		wantCode   string
	}{
		{
			name:       "provider unavailable",
			replies:    []reply{{err: errors.New("429 quota exceeded")}},
			files:      []uploadFile{{name: "cv.docx"}},
			wantStatus: http.StatusServiceUnavailable,
			wantCode:   "PROVIDER_UNAVAILABLE",
		},
		{
			name:       "unprocessable",
			replies:    []reply{{out: "not json at all"}},
			files:      []uploadFile{{name: "cv.docx"}},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "UNPROCESSABLE",
		},
		{
			name:       "duplicate email",
			replies:    []reply{{out: ashaJSON}},
			files:      []uploadFile{{name: "a.docx"}, {name: "b.docx"}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "DUPLICATE_EMAIL",
		},
		{
			name:       "unsupported file",
			replies:    []reply{{out: ashaJSON}},
			files:      []uploadFile{{name: "cv.txt", data: []byte("plain text")}},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := newTestRouter(t, &scriptedAnalyzer{replies: tt.replies})
			files := make([]uploadFile, 0, len(tt.files))
			for _, f := range tt.files {
				if f.data == nil {
					f.data = docx(t, "no contact details")
				}
				files = append(files, f)
			}
			resp := httptest.NewRecorder()
			router.ServeHTTP(resp, multipartRequest(t, files...))
			if resp.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tt.wantStatus, resp.Code, resp.Body.String())
			}
			if code := decodeErrorCode(t, resp); code != tt.wantCode {
				t.Fatalf("expected code %s, got %s", tt.wantCode, code)
			}
		})
	}
}

func TestHandlerMissingUpload(t *testing.T) {
	router := newTestRouter(t, &scriptedAnalyzer{replies: []reply{{out: ashaJSON}}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, multipartRequest(t))
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if code := decodeErrorCode(t, resp); code != "VALIDATION_ERROR" {
		t.Fatalf("expected VALIDATION_ERROR, got %s", code)
	}
}

func TestHandlerGetNotFound(t *testing.T) {
	router := newTestRouter(t, &scriptedAnalyzer{replies: []reply{{out: ashaJSON}}})

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/api/v1/candidates/missing", nil))
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}
}
