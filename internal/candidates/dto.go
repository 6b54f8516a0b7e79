package candidates

import (
	"time"

	"recruit-backend/internal/extraction"
	"recruit-backend/internal/technology"
)

// CandidateResponse is the outward-facing representation of a candidate.
type CandidateResponse struct {
	CandidateID    string                           `json:"candidateId"`
	Name           string                           `json:"name"`
	Email          string                           `json:"email"`
	Phone          string                           `json:"phone,omitempty"`
	Technology     []string                         `json:"technology"`
	TechnologyText []string                         `json:"technologyLabels"`
	Experience     string                           `json:"experience,omitempty"`
	Companies      []extraction.CompanyHistoryEntry `json:"companies"`
	FileName       string                           `json:"fileName,omitempty"`
	ShareLink      string                           `json:"shareLink"`
	CreatedAt      time.Time                        `json:"createdAt"`
}

func toResponse(c Candidate, vocab *technology.Vocabulary, shareBaseURL string) CandidateResponse {
	codes := technology.Split(c.Technology)
	if codes == nil {
		codes = []string{}
	}
	companies := c.Companies
	if companies == nil {
		companies = []extraction.CompanyHistoryEntry{}
	}
	return CandidateResponse{
		CandidateID:    c.ID,
		Name:           c.Name,
		Email:          c.Email,
		Phone:          c.Phone,
		Technology:     codes,
		TechnologyText: vocab.DisplayNames(codes),
		Experience:     c.Experience,
		Companies:      companies,
		FileName:       c.FileName,
		ShareLink:      ShareLink(shareBaseURL, c.ShareToken),
		CreatedAt:      c.CreatedAt,
	}
}

// ShareLink renders the public link for a share token.
func ShareLink(baseURL, token string) string {
	if token == "" {
		return ""
	}
	return baseURL + "/share/" + token
}
