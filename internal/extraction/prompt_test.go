package extraction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"recruit-backend/internal/technology"
)

func TestBuildPromptListsVocabularyForTechnologySchemas(t *testing.T) {
	vocab := technology.New([]technology.Technology{{Code: "python", Label: "Python"}, {Code: "go", Label: "Go"}})

	prompt := BuildPrompt(ResumeSchema, "resume body", vocab)
	assert.Contains(t, prompt, "EXACT list: python, go")
	assert.Contains(t, prompt, "1-3 lower-case values")
	assert.Contains(t, prompt, `"running"`)
	assert.Contains(t, prompt, `"company_name": "Globalia Soft LLP"`)
	assert.Contains(t, prompt, "- email: ")
	assert.True(t, strings.HasSuffix(prompt, "Text:\nresume body"))
}

func TestBuildPromptWrapsEnvelope(t *testing.T) {
	prompt := BuildPrompt(CommunicationSchema, "answers", technology.Default())
	assert.Contains(t, prompt, `"communication_point": {`)
	assert.NotContains(t, prompt, "EXACT list")
}

func TestBuildPromptTruncatesLongInput(t *testing.T) {
	text := strings.Repeat("a", requirementInputLimit+500)

	prompt := BuildPrompt(RequirementSchema, text, technology.Default())
	assert.True(t, strings.HasSuffix(prompt, "\n"+strings.Repeat("a", requirementInputLimit)))
	assert.NotContains(t, prompt, strings.Repeat("a", requirementInputLimit+1))
}

func TestTruncateRunesKeepsMultibyteCharacters(t *testing.T) {
	assert.Equal(t, "résu", truncateRunes("résumé", 4))
	assert.Equal(t, "résumé", truncateRunes("résumé", 0))
}
