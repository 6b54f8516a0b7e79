package extraction

// Schema names used in logs, metrics and errors.
const (
	SchemaResume        = "resume"
	SchemaRequirement   = "requirement"
	SchemaCommunication = "communication"
)

// requirementInputLimit keeps job descriptions within a single short prompt.
const requirementInputLimit = 2000

// ResumeSchema extracts candidate contact details and employment history.
var ResumeSchema = Schema{
	Name:     SchemaResume,
	Preamble: "Extract the following fields from this resume text. Be precise and copy values from the text.",
	Fields: []Field{
		{Name: "name", Kind: KindString, Required: true, Example: "John Doe",
			Hint: `the person's full name only, usually at the top. Do not include addresses or titles.`},
		{Name: "email", Kind: KindString, Required: true, Example: "john@example.com",
			Hint: `the email address only (contains @).`},
		{Name: "phone", Kind: KindPhone, Example: "+1234567890",
			Hint: `the phone number only, like "+91 8141081293". Never a date range.`},
		{Name: "technology", Kind: KindTechnology, Example: "python,aws",
			Hint: `main technologies of the candidate.`},
		{Name: "experience", Kind: KindString, Example: "3 years 6 months",
			Hint: `total experience in years, e.g. "1 year", "3 years 6 months".`},
		{Name: "companies", Kind: KindCompanies,
			Example: []map[string]any{{"company_name": "Globalia Soft LLP", "start_date": "2023-11", "end_date": "running"}},
			Hint:    `array of employers from the EXPERIENCE or EMPLOYMENT sections, each with company_name, start_date and end_date. Company names only, no sentences or project details.`},
	},
	Notes: []string{
		`Dates: use YYYY-MM (e.g. "nov 2023" -> "2023-11"), or YYYY when only the year is known, or null when unclear.`,
		`If the candidate still works at a company (end date reads "present", "current", "till date", "ongoing"), set end_date to "running".`,
	},
	Fallback: ResumeFallback,
}

// RequirementSchema extracts an open position from a job description.
var RequirementSchema = Schema{
	Name:          SchemaRequirement,
	Preamble:      "Extract the hiring requirement from this job description.",
	MaxInputChars: requirementInputLimit,
	Fields: []Field{
		{Name: "name", Kind: KindString, Example: "Python Developer",
			Hint: `the job title.`},
		{Name: "experience", Kind: KindString, Required: true, Example: "3-5 years",
			Hint: `required experience, e.g. "4+ years" or "3-5 years".`},
		{Name: "technology", Kind: KindTechnology, Required: true, Example: "python",
			Hint: `technologies the role needs.`},
		{Name: "no_of_openings", Kind: KindInteger, Aliases: []string{"No_of_openings", "openings"}, Example: 2,
			Hint: `number of open positions as an integer, or null.`},
		{Name: "notice_period", Kind: KindInteger, Example: 30,
			Hint: `acceptable notice period in days as an integer, or null.`},
		{Name: "priority", Kind: KindBoolean, Example: false,
			Hint: `true only when the text marks the role as urgent or high priority.`},
	},
	Fallback: RequirementFallback,
}

var scoreRange = &IntRange{Min: 0, Max: 10}

// CommunicationSchema scores written interview answers. It has no heuristic
// fallback: scores cannot be guessed from text patterns.
var CommunicationSchema = Schema{
	Name:     SchemaCommunication,
	Preamble: "Evaluate the candidate's written communication in the answers below. Score grammar and professional language from 0 to 10.",
	Envelope: "communication_point",
	Fields: []Field{
		{Name: "grammar", Kind: KindInteger, Required: true, Range: scoreRange, Aliases: []string{"Grammar"}, Example: 7,
			Hint: `grammar score, integer 0-10.`},
		{Name: "professional_language", Kind: KindInteger, Required: true, Range: scoreRange, Aliases: []string{"ProfessionalLanguage"}, Example: 8,
			Hint: `professional language score, integer 0-10.`},
		{Name: "grammar_explanation", Kind: KindString, Aliases: []string{"OverallGrammarExplanation"},
			Hint: `one or two sentences explaining the grammar score.`},
		{Name: "professional_language_explanation", Kind: KindString, Aliases: []string{"OverallProfessionalLanguageExplanation"},
			Hint: `one or two sentences explaining the professional language score.`},
		{Name: "language_used", Kind: KindString, Aliases: []string{"OverallLanguageUsed"},
			Hint: `the language the answers are written in.`},
	},
}
