package technology

import (
	"strings"
)

// Technology is one entry of the closed vocabulary.
type Technology struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

// Vocabulary is an ordered, immutable set of technology codes.
// Order matters: substring matches resolve to the first code in this order.
type Vocabulary struct {
	entries []Technology
	index   map[string]int
}

var defaultEntries = []Technology{
	{Code: "python", Label: "Python"},
	{Code: ".net", Label: ".NET"},
	{Code: "java", Label: "Java"},
	{Code: "react", Label: "React"},
	{Code: "angular", Label: "Angular"},
	{Code: "nodejs", Label: "Node.js"},
	{Code: "django", Label: "Django"},
	{Code: "go", Label: "Go"},
	{Code: "php", Label: "PHP"},
	{Code: "ruby", Label: "Ruby"},
	{Code: "android", Label: "Android"},
	{Code: "ios", Label: "iOS"},
	{Code: "devops", Label: "DevOps"},
	{Code: "aws", Label: "AWS"},
	{Code: "sql", Label: "SQL"},
	{Code: "testing", Label: "QA / Testing"},
}

var defaultVocabulary = New(defaultEntries)

// Default returns the vocabulary used across the service.
func Default() *Vocabulary {
	return defaultVocabulary
}

// New builds a vocabulary from entries. Codes are lower-cased and
// duplicate codes keep their first position.
func New(entries []Technology) *Vocabulary {
	v := &Vocabulary{
		entries: make([]Technology, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		code := strings.ToLower(strings.TrimSpace(e.Code))
		if code == "" {
			continue
		}
		if _, ok := v.index[code]; ok {
			continue
		}
		v.index[code] = len(v.entries)
		v.entries = append(v.entries, Technology{Code: code, Label: e.Label})
	}
	return v
}

// Entries returns a copy of the vocabulary in its fixed order.
func (v *Vocabulary) Entries() []Technology {
	return append([]Technology(nil), v.entries...)
}

// Codes returns the vocabulary codes in order.
func (v *Vocabulary) Codes() []string {
	out := make([]string, 0, len(v.entries))
	for _, e := range v.entries {
		out = append(out, e.Code)
	}
	return out
}

// IsValid reports exact membership of code in the vocabulary.
func (v *Vocabulary) IsValid(code string) bool {
	_, ok := v.index[code]
	return ok
}

// Normalize maps a comma-separated free-text list onto vocabulary codes.
// Each token is matched exactly first, then by substring in either
// direction against codes in vocabulary order; unmatched tokens are dropped.
// The result is deduplicated and returned in vocabulary order.
func (v *Vocabulary) Normalize(raw string) []string {
	matched := make(map[int]struct{})
	for _, part := range strings.Split(raw, ",") {
		token := strings.ToLower(strings.TrimSpace(part))
		if token == "" {
			continue
		}
		if idx, ok := v.match(token); ok {
			matched[idx] = struct{}{}
		}
	}
	out := make([]string, 0, len(matched))
	for i, e := range v.entries {
		if _, ok := matched[i]; ok {
			out = append(out, e.Code)
		}
	}
	return out
}

// match resolves a single lower-cased token. Short tokens can hit unrelated
// longer codes ("go" is contained in "django"); exact matches win first so
// this only affects tokens that are not themselves codes.
func (v *Vocabulary) match(token string) (int, bool) {
	if idx, ok := v.index[token]; ok {
		return idx, true
	}
	for i, e := range v.entries {
		if strings.Contains(e.Code, token) || strings.Contains(token, e.Code) {
			return i, true
		}
	}
	return 0, false
}

// DisplayNames maps codes to labels, skipping unknown codes.
func (v *Vocabulary) DisplayNames(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if idx, ok := v.index[code]; ok {
			out = append(out, v.entries[idx].Label)
		}
	}
	return out
}

// Join renders codes as the canonical comma-joined string stored on records.
func Join(codes []string) string {
	return strings.Join(codes, ",")
}

// Split parses a stored canonical string back into codes.
func Split(stored string) []string {
	var out []string
	for _, part := range strings.Split(stored, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
