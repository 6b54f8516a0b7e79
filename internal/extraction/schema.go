package extraction

import (
	"fmt"

	"recruit-backend/internal/technology"
)

// FieldKind selects how a raw model value is coerced.
type FieldKind int

const (
	KindString FieldKind = iota
	KindPhone
	KindInteger
	KindBoolean
	KindTechnology
	KindCompanies
)

func (k FieldKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindPhone:
		return "phone"
	case KindInteger:
		return "integer"
	case KindBoolean:
		return "boolean"
	case KindTechnology:
		return "technology"
	case KindCompanies:
		return "companies"
	default:
		return "unknown"
	}
}

// IntRange bounds an integer field. Values outside it degrade to null.
type IntRange struct {
	Min int
	Max int
}

// Field describes one key of an extracted record.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	// Hint is the instruction given to the model for this field.
	Hint string
	// Aliases are alternate keys accepted from the model.
	Aliases []string
	Range   *IntRange
	Example any
}

// FallbackFunc derives a best-effort record from raw text.
type FallbackFunc func(text string, vocab *technology.Vocabulary) Record

// Schema is a tagged descriptor for one extraction target.
type Schema struct {
	Name string
	// Preamble opens the prompt.
	Preamble string
	// Notes are appended after the field list.
	Notes  []string
	Fields []Field
	// Envelope wraps the record in the model output, e.g. {"communication_point": {...}}.
	Envelope string
	// MaxInputChars truncates the document before prompting. Zero keeps it whole.
	MaxInputChars int
	Fallback      FallbackFunc
}

// Required returns the names of required fields in declaration order.
func (s Schema) Required() []string {
	var out []string
	for _, f := range s.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// HasTechnology reports whether any field is normalized through the vocabulary.
func (s Schema) HasTechnology() bool {
	for _, f := range s.Fields {
		if f.Kind == KindTechnology {
			return true
		}
	}
	return false
}

// Validate checks the descriptor itself.
func (s Schema) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("schema name is required")
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("schema %s has no fields", s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for _, f := range s.Fields {
		if f.Name == "" {
			return fmt.Errorf("schema %s has a field without a name", s.Name)
		}
		if _, ok := seen[f.Name]; ok {
			return fmt.Errorf("schema %s repeats field %s", s.Name, f.Name)
		}
		seen[f.Name] = struct{}{}
		if f.Range != nil && f.Kind != KindInteger {
			return fmt.Errorf("schema %s field %s: range on %s field", s.Name, f.Name, f.Kind)
		}
	}
	return nil
}
