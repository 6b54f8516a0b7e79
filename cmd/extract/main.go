package main

// Run the extraction pipeline over local documents:
//   go run ./cmd/extract --schema resume cv1.pdf cv2.docx
//   go run ./cmd/extract --schema requirement --out reqs.jsonl jd.docx
//
// One JSON object is printed per file, in argument order.

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"

	"recruit-backend/internal/analyzer"
	"recruit-backend/internal/extract"
	"recruit-backend/internal/extraction"
	"recruit-backend/internal/llm"
	"recruit-backend/internal/llm/gemini"
	openai "recruit-backend/internal/llm/openai"
	"recruit-backend/internal/shared/config"
	"recruit-backend/internal/shared/telemetry"
	"recruit-backend/internal/technology"
)

// extractor is satisfied by *extraction.Pipeline.
type extractor interface {
	Extract(ctx context.Context, text string, schema extraction.Schema) (extraction.Result, error)
}

type options struct {
	schema   string
	provider string
	model    string
	outPath  string
	files    []string
}

// fileResult is the JSON line written for each input document.
type fileResult struct {
	File         string            `json:"file"`
	Schema       string            `json:"schema"`
	Record       extraction.Record `json:"record,omitempty"`
	FallbackUsed bool              `json:"fallback_used,omitempty"`
	Error        *fileError        `json:"error,omitempty"`
}

type fileError struct {
	Kind    string   `json:"kind"`
	Message string   `json:"message"`
	Missing []string `json:"missing,omitempty"`
}

func main() {
	os.Exit(execute())
}

func execute() int {
	cfg := config.Load()
	telemetry.Init(telemetry.Config{Level: "warn", Format: cfg.LogFormat})

	opts := options{}
	pflag.StringVar(&opts.schema, "schema", extraction.SchemaResume, "schema to extract: resume or requirement")
	pflag.StringVar(&opts.provider, "provider", cfg.LLMProvider, "LLM provider: openai, gemini or none")
	pflag.StringVar(&opts.model, "model", cfg.LLMModel, "LLM model")
	pflag.StringVarP(&opts.outPath, "out", "o", "", "write JSON lines to this file instead of stdout")
	pflag.Parse()
	opts.files = pflag.Args()

	if len(opts.files) == 0 {
		return fail("at least one document path is required")
	}

	ctx := context.Background()
	provider, closeProvider, err := buildProvider(ctx, cfg, opts.provider, opts.model)
	if err != nil {
		return fail(err.Error())
	}
	defer closeProvider()

	var out io.Writer = os.Stdout
	if opts.outPath != "" {
		f, err := os.Create(opts.outPath)
		if err != nil {
			return fail(fmt.Sprintf("create output: %v", err))
		}
		defer f.Close()
		out = f
	}

	pipeline := extraction.NewPipeline(analyzer.New(provider), technology.Default())
	failed, err := run(ctx, pipeline, opts, out)
	if err != nil {
		return fail(err.Error())
	}
	if failed > 0 {
		_, _ = fmt.Fprintf(os.Stderr, "%d of %d documents failed\n", failed, len(opts.files))
		return 1
	}
	return 0
}

// run extracts each file in order and returns how many failed.
func run(ctx context.Context, ex extractor, opts options, out io.Writer) (int, error) {
	schema, err := schemaFor(opts.schema)
	if err != nil {
		return 0, err
	}
	enc := json.NewEncoder(out)
	failed := 0
	for _, path := range opts.files {
		res := extractFile(ctx, ex, schema, path)
		if res.Error != nil {
			failed++
		}
		if err := enc.Encode(res); err != nil {
			return failed, fmt.Errorf("write result: %w", err)
		}
	}
	return failed, nil
}

func extractFile(ctx context.Context, ex extractor, schema extraction.Schema, path string) fileResult {
	res := fileResult{File: path, Schema: schema.Name}

	data, err := os.ReadFile(path)
	if err != nil {
		res.Error = &fileError{Kind: "read", Message: err.Error()}
		return res
	}
	format, err := extract.DetectFormat(filepath.Base(path), "", data)
	if err != nil {
		res.Error = &fileError{Kind: "unsupported_format", Message: err.Error()}
		return res
	}
	text, err := extract.ExtractText(ctx, data, format)
	if err != nil {
		res.Error = &fileError{Kind: "text_extraction", Message: err.Error()}
		return res
	}

	result, err := ex.Extract(ctx, text, schema)
	if err != nil {
		fe := &fileError{Kind: "internal", Message: err.Error()}
		var extErr *extraction.Error
		if errors.As(err, &extErr) {
			fe.Kind = extErr.Kind.String()
			fe.Missing = extErr.Missing
		}
		res.Error = fe
		return res
	}
	res.Record = result.Record
	res.FallbackUsed = result.FallbackUsed
	return res
}

func schemaFor(name string) (extraction.Schema, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case extraction.SchemaResume:
		return extraction.ResumeSchema, nil
	case extraction.SchemaRequirement, "jd":
		return extraction.RequirementSchema, nil
	default:
		return extraction.Schema{}, fmt.Errorf("unsupported schema: %s", name)
	}
}

func buildProvider(ctx context.Context, cfg config.Config, provider, model string) (llm.Provider, func(), error) {
	noop := func() {}
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "none", "placeholder":
		return llm.PlaceholderProvider{}, noop, nil
	case "gemini", "google":
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, model)
		if err != nil {
			return nil, noop, err
		}
		return client, func() { _ = client.Close() }, nil
	case "", "openai":
		client, err := openai.NewClient(cfg.OpenAIAPIKey, model)
		if err != nil {
			return nil, noop, err
		}
		return client, noop, nil
	default:
		return nil, noop, fmt.Errorf("unsupported provider: %s", provider)
	}
}

func fail(msg string) int {
	_, _ = fmt.Fprintln(os.Stderr, msg)
	return 1
}
