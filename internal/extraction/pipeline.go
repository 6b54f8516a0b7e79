package extraction

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"recruit-backend/internal/llm"
	"recruit-backend/internal/shared/metrics"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/technology"
)

// TextAnalyzer is the model call with its retry policy applied.
type TextAnalyzer interface {
	Analyze(ctx context.Context, prompt string, shape llm.OutputShape) (string, error)
}

// Result is a successful extraction.
type Result struct {
	Record Record
	// FallbackUsed is set when the record came from text heuristics.
	FallbackUsed bool
	// Raw is the trimmed model output, empty when the model produced nothing.
	Raw string
}

// Pipeline turns document text into a schema-conformant record.
type Pipeline struct {
	analyzer TextAnalyzer
	vocab    *technology.Vocabulary
}

func NewPipeline(analyzer TextAnalyzer, vocab *technology.Vocabulary) *Pipeline {
	if vocab == nil {
		vocab = technology.Default()
	}
	return &Pipeline{analyzer: analyzer, vocab: vocab}
}

// Vocabulary returns the vocabulary technology fields are normalized onto.
func (p *Pipeline) Vocabulary() *technology.Vocabulary { return p.vocab }

// Extract runs the model, falls back to heuristics when no JSON object was
// obtained and returns either a record with every required field set or an
// *Error of kind ProviderUnavailable or Unprocessable.
func (p *Pipeline) Extract(ctx context.Context, text string, schema Schema) (Result, error) {
	start := time.Now()
	metrics.IncExtraction()
	defer func() { metrics.ObserveExtractionDurationMs(metrics.Since(start)) }()

	if err := schema.Validate(); err != nil {
		return Result{}, err
	}

	var (
		raw      string
		modelErr error
		record   map[string]any
	)
	if p.analyzer == nil {
		modelErr = llm.ErrNotConfigured
	} else {
		raw, modelErr = p.analyzer.Analyze(ctx, BuildPrompt(schema, text, p.vocab), llm.StructuredJSON)
	}
	if modelErr == nil {
		obj, err := decodeObject(raw)
		if err != nil {
			telemetry.Warn("extraction.decode_failed", map[string]any{
				"schema": schema.Name,
				"error":  err.Error(),
				"chars":  len(raw),
			})
		} else {
			record = unwrapEnvelope(obj, schema.Envelope)
		}
	} else {
		telemetry.Warn("extraction.model_failed", map[string]any{
			"schema": schema.Name,
			"error":  modelErr.Error(),
		})
	}

	fallbackUsed := false
	if record == nil && schema.Fallback != nil {
		record = schema.Fallback(text, p.vocab)
		fallbackUsed = true
		metrics.IncExtractionFallback()
	}

	cleaned := make(Record, len(schema.Fields))
	for _, f := range schema.Fields {
		cleaned[f.Name] = cleanField(f, lookup(record, f), p.vocab)
	}

	var missing []string
	for _, f := range schema.Fields {
		if f.Required && isEmpty(cleaned[f.Name]) {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		metrics.IncExtractionFailed()
		failure := &Error{Schema: schema.Name, Missing: missing, Partial: cleaned, Kind: KindUnprocessable}
		if raw == "" {
			failure.Kind = KindProviderUnavailable
			failure.Cause = modelErr
		}
		telemetry.Error("extraction.failed", map[string]any{
			"schema":   schema.Name,
			"kind":     failure.Kind.String(),
			"missing":  missing,
			"fallback": fallbackUsed,
		})
		return Result{}, failure
	}

	telemetry.Info("extraction.completed", map[string]any{
		"schema":   schema.Name,
		"fallback": fallbackUsed,
	})
	return Result{Record: cleaned, FallbackUsed: fallbackUsed, Raw: raw}, nil
}

// decodeObject strips Markdown fences and parses a JSON object. When the body
// has prose around the object, the outermost braces are tried as well.
func decodeObject(raw string) (map[string]any, error) {
	body := stripFences(raw)
	var obj map[string]any
	err := json.Unmarshal([]byte(body), &obj)
	if err == nil && obj != nil {
		return obj, nil
	}
	first := strings.Index(body, "{")
	last := strings.LastIndex(body, "}")
	if first >= 0 && last > first {
		var inner map[string]any
		if innerErr := json.Unmarshal([]byte(body[first:last+1]), &inner); innerErr == nil && inner != nil {
			return inner, nil
		}
	}
	if err == nil {
		err = errors.New("model output is not a JSON object")
	}
	return nil, err
}

func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

func unwrapEnvelope(obj map[string]any, envelope string) map[string]any {
	if envelope == "" {
		return obj
	}
	if inner, ok := obj[envelope].(map[string]any); ok {
		return inner
	}
	return obj
}

func lookup(record map[string]any, f Field) any {
	if record == nil {
		return nil
	}
	if v, ok := record[f.Name]; ok && v != nil {
		return v
	}
	for _, alias := range f.Aliases {
		if v, ok := record[alias]; ok && v != nil {
			return v
		}
	}
	return nil
}
