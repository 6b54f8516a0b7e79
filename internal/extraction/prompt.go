package extraction

import (
	"encoding/json"
	"fmt"
	"strings"

	"recruit-backend/internal/technology"
)

// BuildPrompt renders the model prompt for schema over text.
func BuildPrompt(schema Schema, text string, vocab *technology.Vocabulary) string {
	var b strings.Builder
	b.WriteString(schema.Preamble)
	b.WriteString("\n\n")
	for _, f := range schema.Fields {
		fmt.Fprintf(&b, "- %s: %s", f.Name, f.Hint)
		if f.Required {
			b.WriteString(" (required)")
		}
		b.WriteString("\n")
	}

	if schema.HasTechnology() && vocab != nil {
		b.WriteString("\nTechnology values must come from this EXACT list: ")
		b.WriteString(strings.Join(vocab.Codes(), ", "))
		b.WriteString("\nReturn 1-3 lower-case values from that list joined by commas with no spaces, e.g. \"python,aws\". Do not invent new names.\n")
	}
	for _, note := range schema.Notes {
		b.WriteString("\n")
		b.WriteString(note)
	}
	if len(schema.Notes) > 0 {
		b.WriteString("\n")
	}

	b.WriteString("\nReturn only valid JSON, no explanations and no code fences, in this format:\n")
	b.WriteString(exampleJSON(schema))
	b.WriteString("\n\nText:\n")
	b.WriteString(truncateRunes(text, schema.MaxInputChars))
	return b.String()
}

func exampleJSON(schema Schema) string {
	example := make(map[string]any, len(schema.Fields))
	for _, f := range schema.Fields {
		example[f.Name] = f.Example
	}
	var payload any = example
	if schema.Envelope != "" {
		payload = map[string]any{schema.Envelope: example}
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "{}"
	}
	return string(data)
}

func truncateRunes(text string, limit int) string {
	if limit <= 0 {
		return text
	}
	r := []rune(text)
	if len(r) <= limit {
		return text
	}
	return string(r[:limit])
}
