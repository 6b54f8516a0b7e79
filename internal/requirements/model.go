package requirements

import "time"

// Requirement is a job opening parsed from a job description.
type Requirement struct {
	ID           string
	Name         string
	Experience   string
	Technology   string
	NoOfOpenings *int
	NoticePeriod *int
	Priority     *bool
	JDText       string
	FileKey      string
	IsDeleted    bool
	CreatedAt    time.Time
}

// Fields are the editable job description fields used by the JD assistant.
type Fields struct {
	Name         string `json:"name"`
	Experience   string `json:"experience"`
	Technology   string `json:"technology"`
	NoOfOpenings *int   `json:"no_of_openings"`
	NoticePeriod *int   `json:"notice_period"`
	Priority     *bool  `json:"priority"`
}

// Status of a JD assistant analysis.
const (
	StatusReady        = "ready"
	StatusNeedMoreInfo = "need_more_info"
)

// Analysis is the JD assistant's reading of a free-form hiring message.
type Analysis struct {
	Fields        Fields   `json:"fields"`
	Status        string   `json:"status"`
	MissingFields []string `json:"missing_fields"`
}

// Upload is a job description file.
type Upload struct {
	FileName    string
	ContentType string
	Data        []byte
}
