package extraction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recruit-backend/internal/technology"
)

func TestResumeFallback(t *testing.T) {
	text := "\n  \nPriya Sharma\npriya.sharma@mail.co.in | +91 (22) 5555-1234\nSkills: Java, Spring, React\n"

	rec := ResumeFallback(text, technology.Default())
	assert.Equal(t, "Priya Sharma", rec["name"])
	assert.Equal(t, "priya.sharma@mail.co.in", rec["email"])
	assert.Equal(t, "+91 (22) 5555-1234", rec["phone"])
	assert.Equal(t, "java", rec["technology"])
}

func TestResumeFallbackKeywordNeedsWordBoundary(t *testing.T) {
	rec := ResumeFallback("Sam\nJavaScript and TypeScript", technology.Default())
	assert.Equal(t, "", rec["technology"])

	rec = ResumeFallback("Sam\nASP.NET MVC", technology.Default())
	assert.Equal(t, ".net", rec["technology"])
}

func TestResumeFallbackNameIsCapped(t *testing.T) {
	long := ""
	for i := 0; i < 30; i++ {
		long += "abcde"
	}
	rec := ResumeFallback(long, technology.Default())
	name, ok := rec["name"].(string)
	require.True(t, ok)
	assert.Len(t, name, maxFallbackNameLen)
}

func TestFallbackCompanies(t *testing.T) {
	text := "Worked at Google from 2019\n" +
		"Senior Developer at Infosys Technologies\n" +
		"INFOSYS TECHNOLOGIES Pune\n" +
		"Alpha Solutions\n" +
		"Beta Systems\n" +
		"Gamma Ltd\n" +
		"Delta Inc\n"

	got := fallbackCompanies(text)
	names := make([]string, 0, len(got))
	for _, c := range got {
		names = append(names, c.CompanyName)
		assert.Nil(t, c.StartDate)
		assert.Nil(t, c.EndDate)
	}
	assert.Equal(t, []string{"Google", "Infosys Technologies", "Alpha Solutions", "Beta Systems", "Gamma Ltd"}, names)
}

func TestFallbackCompaniesNone(t *testing.T) {
	assert.Empty(t, fallbackCompanies("Hobbies: chess\nLanguages: English"))
}

func TestRequirementFallback(t *testing.T) {
	rec := RequirementFallback("Looking for an Android engineer, 3-5 years of experience.", technology.Default())
	assert.Equal(t, "android", rec["technology"])
	assert.Equal(t, "3-5 years", rec["experience"])

	rec = RequirementFallback("Nothing relevant", technology.Default())
	assert.Equal(t, "", rec["technology"])
	assert.Equal(t, "", rec["experience"])
}

func TestContainsWord(t *testing.T) {
	t.Parallel()

	tests := []struct {
		haystack string
		needle   string
		want     bool
	}{
		{haystack: "java, react", needle: "java", want: true},
		{haystack: "i know javascript", needle: "java", want: false},
		{haystack: "javascript and java", needle: "java", want: true},
		{haystack: "asp.net core", needle: ".net", want: true},
		{haystack: "dotnet", needle: ".net", want: false},
		{haystack: "mongodb", needle: "go", want: false},
		{haystack: "go", needle: "go", want: true},
		{haystack: "anything", needle: "", want: false},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, containsWord(tc.haystack, tc.needle), "%q in %q", tc.needle, tc.haystack)
	}
}
