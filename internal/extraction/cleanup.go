package extraction

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"recruit-backend/internal/technology"
)

const maxPhoneLen = 30

var (
	phoneRunRe    = regexp.MustCompile(`[+]?[\d\s-]*\d[\d\s-]*`)
	phoneStripRe  = regexp.MustCompile(`[\s-]`)
	leadingIntRe  = regexp.MustCompile(`-?\d+`)
	yearMonthRe   = regexp.MustCompile(`^(\d{4})[-/.](\d{1,2})(?:[-/.]\d{1,2})?$`)
	monthYearRe   = regexp.MustCompile(`^(\d{1,2})[-/.](\d{4})$`)
	dayMonthYrRe  = regexp.MustCompile(`^(\d{1,2})[-/.](\d{1,2})[-/.](\d{4})$`)
	monthNameRe   = regexp.MustCompile(`^([a-z]{3,9})\.?[\s,'-]*(\d{4}|\d{2})$`)
	yearOnlyRe    = regexp.MustCompile(`^\d{4}$`)
	anyYearRe     = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	runningTokens = []string{"present", "current", "currently", "till date", "till now", "to date", "ongoing", "now", "running", "today"}
)

var monthNames = map[string]int{
	"jan": 1, "january": 1,
	"feb": 2, "february": 2,
	"mar": 3, "march": 3,
	"apr": 4, "april": 4,
	"may": 5,
	"jun": 6, "june": 6,
	"jul": 7, "july": 7,
	"aug": 8, "august": 8,
	"sep": 9, "sept": 9, "september": 9,
	"oct": 10, "october": 10,
	"nov": 11, "november": 11,
	"dec": 12, "december": 12,
}

// cleanField coerces one raw value according to its descriptor. A value that
// cannot be coerced becomes nil rather than failing the record.
func cleanField(f Field, raw any, vocab *technology.Vocabulary) any {
	switch f.Kind {
	case KindString:
		return coerceString(raw)
	case KindPhone:
		return CleanPhone(coerceString(raw))
	case KindInteger:
		n := coerceInt(raw)
		if n != nil && f.Range != nil && (*n < f.Range.Min || *n > f.Range.Max) {
			return (*int)(nil)
		}
		return n
	case KindBoolean:
		return coerceBool(raw)
	case KindTechnology:
		return technology.Join(vocab.Normalize(technologyText(raw)))
	case KindCompanies:
		return coerceCompanies(raw)
	default:
		return nil
	}
}

func coerceString(raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	default:
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// CleanPhone keeps the first run of digits, spaces, dashes and a leading plus,
// drops the separators and caps the result.
func CleanPhone(raw string) string {
	match := phoneRunRe.FindString(raw)
	phone := phoneStripRe.ReplaceAllString(match, "")
	if len(phone) > maxPhoneLen {
		phone = phone[:maxPhoneLen]
	}
	return phone
}

func coerceInt(raw any) *int {
	switch v := raw.(type) {
	case float64:
		if math.IsNaN(v) || v > math.MaxInt32 || v < math.MinInt32 {
			return nil
		}
		n := int(v)
		return &n
	case int:
		return &v
	case string:
		match := leadingIntRe.FindString(v)
		if match == "" {
			return nil
		}
		n, err := strconv.Atoi(match)
		if err != nil {
			return nil
		}
		return &n
	default:
		return nil
	}
}

func coerceBool(raw any) *bool {
	var out bool
	switch v := raw.(type) {
	case bool:
		out = v
	case float64:
		out = v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "true", "yes", "y", "1", "high":
			out = true
		case "false", "no", "n", "0", "low":
			out = false
		default:
			return nil
		}
	default:
		return nil
	}
	return &out
}

func technologyText(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ",")
	default:
		return ""
	}
}

func coerceCompanies(raw any) []CompanyHistoryEntry {
	items, ok := raw.([]any)
	if !ok {
		if typed, ok := raw.([]CompanyHistoryEntry); ok {
			return typed
		}
		return nil
	}
	out := make([]CompanyHistoryEntry, 0, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			continue
		}
		name := coerceString(firstPresent(obj, "company_name", "company", "name"))
		if name == "" {
			continue
		}
		out = append(out, CompanyHistoryEntry{
			CompanyName: name,
			StartDate:   NormalizeDate(coerceString(obj["start_date"]), false),
			EndDate:     NormalizeDate(coerceString(obj["end_date"]), true),
		})
	}
	return out
}

func firstPresent(obj map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := obj[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// NormalizeDate renders a free-form date as YYYY-MM or YYYY. When
// allowRunning is set, "present"-style markers become RunningDate.
// Numeric dates are read month-first for MM/YYYY and day-first for DD/MM/YYYY.
func NormalizeDate(raw string, allowRunning bool) *string {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch s {
	case "", "null", "none", "n/a", "na", "-":
		return nil
	}
	for _, token := range runningTokens {
		if s == token || strings.HasPrefix(s, token+" ") {
			if allowRunning {
				out := RunningDate
				return &out
			}
			return nil
		}
	}

	if m := yearMonthRe.FindStringSubmatch(s); m != nil {
		return yearMonth(m[1], m[2])
	}
	if m := monthYearRe.FindStringSubmatch(s); m != nil {
		return yearMonth(m[2], m[1])
	}
	if m := dayMonthYrRe.FindStringSubmatch(s); m != nil {
		return yearMonth(m[3], m[2])
	}
	if m := monthNameRe.FindStringSubmatch(s); m != nil {
		month, ok := monthNames[m[1]]
		if ok {
			year := m[2]
			if len(year) == 2 {
				year = "20" + year
			}
			return yearMonth(year, strconv.Itoa(month))
		}
	}
	if yearOnlyRe.MatchString(s) {
		return &s
	}
	if year := anyYearRe.FindString(s); year != "" {
		return &year
	}
	return nil
}

func yearMonth(year, month string) *string {
	m, err := strconv.Atoi(month)
	if err != nil || m < 1 || m > 12 {
		return nil
	}
	out := fmt.Sprintf("%s-%02d", year, m)
	return &out
}
