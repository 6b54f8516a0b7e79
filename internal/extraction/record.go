package extraction

import "strings"

// RunningDate marks an employment that has not ended.
const RunningDate = "running"

// Record maps schema field names to cleaned values: string, *int, *bool or
// []CompanyHistoryEntry. Absent values are nil.
type Record map[string]any

// CompanyHistoryEntry is one employment period.
type CompanyHistoryEntry struct {
	CompanyName string  `json:"company_name"`
	StartDate   *string `json:"start_date"`
	EndDate     *string `json:"end_date"`
}

// String returns a string field or "".
func (r Record) String(name string) string {
	if v, ok := r[name].(string); ok {
		return v
	}
	return ""
}

// Int returns an integer field or nil.
func (r Record) Int(name string) *int {
	if v, ok := r[name].(*int); ok {
		return v
	}
	return nil
}

// Bool returns a boolean field or nil.
func (r Record) Bool(name string) *bool {
	if v, ok := r[name].(*bool); ok {
		return v
	}
	return nil
}

// Companies returns the employment history or nil.
func (r Record) Companies(name string) []CompanyHistoryEntry {
	if v, ok := r[name].([]CompanyHistoryEntry); ok {
		return v
	}
	return nil
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	case *int:
		return val == nil
	case *bool:
		return val == nil
	case []CompanyHistoryEntry:
		return len(val) == 0
	case []any:
		return len(val) == 0
	default:
		return false
	}
}
