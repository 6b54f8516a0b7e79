package technology

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	t.Parallel()

	vocab := Default()
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "", want: []string{}},
		{name: "only separators", raw: " , ,, ", want: []string{}},
		{name: "dedup case insensitive", raw: "Python, AWS, aws", want: []string{"python", "aws"}},
		{name: "vocabulary order", raw: "react, python", want: []string{"python", "react"}},
		{name: "unknown dropped", raw: "cobol, fortran", want: []string{}},
		{name: "typo without substring relation", raw: "pythn", want: []string{}},
		{name: "token contains code", raw: "ReactJS", want: []string{"react"}},
		{name: "code contains token", raw: "jang", want: []string{"django"}},
		{name: "dotnet core", raw: ".NET Core", want: []string{".net"}},
		{name: "exact code beats substring", raw: "go", want: []string{"go"}},
		{name: "short token ambiguity", raw: "mongodb", want: []string{"go"}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, vocab.Normalize(tt.raw))
		})
	}
}

func TestNormalizeIsIdempotentAndClosed(t *testing.T) {
	vocab := Default()
	inputs := []string{
		"Python, Django, golang",
		"node, react native, AWS Lambda",
		"java spring, sql server, manual testing",
		"",
	}
	for _, in := range inputs {
		first := vocab.Normalize(in)
		for _, code := range first {
			require.True(t, vocab.IsValid(code), "code %q not in vocabulary", code)
		}
		second := vocab.Normalize(Join(first))
		assert.Equal(t, first, second, "normalize not idempotent for %q", in)
	}
}

func TestDisplayNamesSkipsUnknown(t *testing.T) {
	vocab := Default()
	got := vocab.DisplayNames([]string{".net", "cobol", "python"})
	assert.Equal(t, []string{".NET", "Python"}, got)
}

func TestNewDeduplicatesCodes(t *testing.T) {
	vocab := New([]Technology{
		{Code: "Go", Label: "Go"},
		{Code: "go", Label: "Golang"},
		{Code: " ", Label: "blank"},
		{Code: "rust", Label: "Rust"},
	})
	assert.Equal(t, []string{"go", "rust"}, vocab.Codes())
	assert.Equal(t, []string{"Go"}, vocab.DisplayNames([]string{"go"}))
}

func TestSplit(t *testing.T) {
	assert.Equal(t, []string{"python", "aws"}, Split("python, aws,"))
	assert.Nil(t, Split(""))
}
