package interviews

import (
	"time"

	"recruit-backend/internal/emotion"
)

// PhotoResponse is the outward-facing representation of a photo.
type PhotoResponse struct {
	PhotoID   string    `json:"photoId"`
	FileName  string    `json:"fileName"`
	MimeType  string    `json:"mimeType"`
	SizeBytes int64     `json:"sizeBytes"`
	CreatedAt time.Time `json:"createdAt"`
}

// EmotionResponse wraps a summary with its candidate.
type EmotionResponse struct {
	CandidateID string `json:"candidateId"`
	emotion.Summary
	UpdatedAt time.Time `json:"updatedAt"`
}

// CommunicationResponse is a stored communication score.
type CommunicationResponse struct {
	CandidateID                     string    `json:"candidateId"`
	Grammar                         int       `json:"grammar"`
	ProfessionalLanguage            int       `json:"professional_language"`
	GrammarExplanation              string    `json:"grammar_explanation,omitempty"`
	ProfessionalLanguageExplanation string    `json:"professional_language_explanation,omitempty"`
	LanguageUsed                    string    `json:"language_used,omitempty"`
	UpdatedAt                       time.Time `json:"updatedAt"`
}

// QuestionResponse is one interview question.
type QuestionResponse struct {
	QuestionID string     `json:"questionId"`
	Position   int        `json:"position"`
	Question   string     `json:"question"`
	Answer     *string    `json:"answer"`
	Rating     *int       `json:"rating"`
	AIResponse *string    `json:"aiResponse,omitempty"`
	RatedAt    *time.Time `json:"ratedAt,omitempty"`
}

func toPhotoResponse(p Photo) PhotoResponse {
	return PhotoResponse{
		PhotoID:   p.ID,
		FileName:  p.FileName,
		MimeType:  p.MimeType,
		SizeBytes: p.SizeBytes,
		CreatedAt: p.CreatedAt,
	}
}

func toEmotionResponse(r EmotionReport) EmotionResponse {
	return EmotionResponse{CandidateID: r.CandidateID, Summary: r.Summary, UpdatedAt: r.UpdatedAt}
}

func toCommunicationResponse(s CommunicationScore) CommunicationResponse {
	return CommunicationResponse{
		CandidateID:                     s.CandidateID,
		Grammar:                         s.Grammar,
		ProfessionalLanguage:            s.ProfessionalLanguage,
		GrammarExplanation:              s.GrammarExplanation,
		ProfessionalLanguageExplanation: s.ProfessionalLanguageExplanation,
		LanguageUsed:                    s.LanguageUsed,
		UpdatedAt:                       s.UpdatedAt,
	}
}

func toQuestionResponses(qs []Question) []QuestionResponse {
	out := make([]QuestionResponse, 0, len(qs))
	for _, q := range qs {
		out = append(out, toQuestionResponse(q))
	}
	return out
}

func toQuestionResponse(q Question) QuestionResponse {
	return QuestionResponse{
		QuestionID: q.ID,
		Position:   q.Position,
		Question:   q.Text,
		Answer:     q.Answer,
		Rating:     q.Rating,
		AIResponse: q.AIResponse,
		RatedAt:    q.RatedAt,
	}
}
