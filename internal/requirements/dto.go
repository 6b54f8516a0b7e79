package requirements

import (
	"time"

	"recruit-backend/internal/technology"
)

// RequirementResponse is the outward-facing representation of a requirement.
type RequirementResponse struct {
	RequirementID    string    `json:"requirementId"`
	Name             string    `json:"name"`
	Experience       string    `json:"experience"`
	Technology       []string  `json:"technology"`
	TechnologyLabels []string  `json:"technologyLabels"`
	NoOfOpenings     *int      `json:"no_of_openings"`
	NoticePeriod     *int      `json:"notice_period"`
	Priority         *bool     `json:"priority"`
	CreatedAt        time.Time `json:"createdAt"`
}

func toResponse(r Requirement, vocab *technology.Vocabulary) RequirementResponse {
	codes := technology.Split(r.Technology)
	if codes == nil {
		codes = []string{}
	}
	return RequirementResponse{
		RequirementID:    r.ID,
		Name:             r.Name,
		Experience:       r.Experience,
		Technology:       codes,
		TechnologyLabels: vocab.DisplayNames(codes),
		NoOfOpenings:     r.NoOfOpenings,
		NoticePeriod:     r.NoticePeriod,
		Priority:         r.Priority,
		CreatedAt:        r.CreatedAt,
	}
}
