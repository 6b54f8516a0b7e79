package candidates

import (
	"time"

	"recruit-backend/internal/extraction"
)

// Candidate is a parsed résumé.
type Candidate struct {
	ID         string
	Name       string
	Email      string
	Phone      string
	Technology string
	Experience string
	Companies  []extraction.CompanyHistoryEntry
	RawText    string
	FileKey    string
	FileName   string
	ShareToken string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Upload is one résumé file from an intake request.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}
