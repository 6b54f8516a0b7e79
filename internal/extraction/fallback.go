package extraction

import (
	"regexp"
	"strings"
	"unicode"

	"recruit-backend/internal/technology"
)

const (
	maxFallbackCompanies = 5
	maxFallbackNameLen   = 100
)

var (
	emailRe = regexp.MustCompile(`[\w.-]+@[\w.-]+\.[a-zA-Z]{2,}`)
	phoneRe = regexp.MustCompile(`\+?\d[\d\s\-()]{7,}\d`)

	experienceRe = regexp.MustCompile(`(?i)(\d+\+?\s*-?\s*\d*\s*years?)`)

	companyLeadRe = regexp.MustCompile(`(?i)(?:worked at|employed by|experience at)\s+([A-Za-z0-9 &]+?)(?:,|\.|\s+from|\s+since|\s+to|\s+till|\s+-|\s*\(|\s*[0-9]{4}|$)`)
	companySufRe  = regexp.MustCompile(`(?i)([A-Za-z0-9 &]+?\b(?:technologies|technology|solutions|systems|services|limited|ltd|inc|corp|llp|pvt))\b`)

	// resumeKeywords is scanned in order; the first hit wins.
	resumeKeywords = []string{"python", ".net", "java", "react"}
)

// ResumeFallback pulls contact fields, a single technology keyword and
// company lines out of raw résumé text.
func ResumeFallback(text string, _ *technology.Vocabulary) Record {
	lowered := strings.ToLower(text)
	tech := ""
	for _, kw := range resumeKeywords {
		if containsWord(lowered, kw) {
			tech = kw
			break
		}
	}
	return Record{
		"name":       firstLine(text),
		"email":      emailRe.FindString(text),
		"phone":      phoneRe.FindString(text),
		"technology": tech,
		"companies":  fallbackCompanies(text),
	}
}

// RequirementFallback takes the first vocabulary code mentioned in the text
// and the first experience phrase such as "4+ years" or "3-5 years".
func RequirementFallback(text string, vocab *technology.Vocabulary) Record {
	lowered := strings.ToLower(text)
	tech := ""
	for _, code := range vocab.Codes() {
		if containsWord(lowered, code) {
			tech = code
			break
		}
	}
	experience := ""
	if m := experienceRe.FindStringSubmatch(text); m != nil {
		experience = strings.TrimSpace(m[1])
	}
	return Record{
		"technology": tech,
		"experience": experience,
	}
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if len(trimmed) > 1 {
			if r := []rune(trimmed); len(r) > maxFallbackNameLen {
				return string(r[:maxFallbackNameLen])
			}
			return trimmed
		}
	}
	return ""
}

func fallbackCompanies(text string) []CompanyHistoryEntry {
	var out []CompanyHistoryEntry
	seen := make(map[string]struct{})
	add := func(name string) {
		name = trimCompanyName(name)
		if len(name) <= 2 || len(name) >= 100 {
			return
		}
		key := strings.ToLower(name)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		out = append(out, CompanyHistoryEntry{CompanyName: name})
	}

	for _, line := range strings.Split(text, "\n") {
		if len(out) >= maxFallbackCompanies {
			break
		}
		for _, m := range companyLeadRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
		for _, m := range companySufRe.FindAllStringSubmatch(line, -1) {
			add(m[1])
		}
	}
	if len(out) > maxFallbackCompanies {
		out = out[:maxFallbackCompanies]
	}
	return out
}

// trimCompanyName drops a leading "<role> at " and surrounding spaces.
func trimCompanyName(name string) string {
	name = strings.TrimSpace(name)
	lowered := strings.ToLower(name)
	if idx := strings.LastIndex(lowered, " at "); idx >= 0 {
		name = strings.TrimSpace(name[idx+4:])
	}
	return name
}

// containsWord reports whether needle occurs in haystack without letters or
// digits directly around it. Needles starting with "." only check the right side.
func containsWord(haystack, needle string) bool {
	if needle == "" {
		return false
	}
	start := 0
	for {
		idx := strings.Index(haystack[start:], needle)
		if idx < 0 {
			return false
		}
		idx += start
		end := idx + len(needle)
		leftOK := strings.HasPrefix(needle, ".") || idx == 0 || !isWordByte(haystack[idx-1])
		rightOK := end == len(haystack) || !isWordByte(haystack[end])
		if leftOK && rightOK {
			return true
		}
		start = idx + 1
	}
}

func isWordByte(b byte) bool {
	r := rune(b)
	return r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r))
}
