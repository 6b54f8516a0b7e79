package interviews

import (
	"time"

	"recruit-backend/internal/emotion"
)

// Photo is an interview image of a candidate kept in the object store.
type Photo struct {
	ID          string
	CandidateID string
	StorageKey  string
	FileName    string
	MimeType    string
	SizeBytes   int64
	CreatedAt   time.Time
}

// EmotionReport is the last emotion summary computed for a candidate.
type EmotionReport struct {
	CandidateID string
	Summary     emotion.Summary
	UpdatedAt   time.Time
}

// CommunicationScore grades a candidate's written answers.
type CommunicationScore struct {
	CandidateID                     string
	Grammar                         int
	ProfessionalLanguage            int
	GrammarExplanation              string
	ProfessionalLanguageExplanation string
	LanguageUsed                    string
	UpdatedAt                       time.Time
}

// Question is one generated interview question with the candidate's answer.
type Question struct {
	ID          string
	CandidateID string
	Position    int
	Text        string
	Answer      *string
	Rating      *int
	AIResponse  *string
	RatedAt     *time.Time
	CreatedAt   time.Time
}

// Upload is one photo file from a request.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}
