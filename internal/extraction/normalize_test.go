package extraction_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"cardenrich/internal/domain"
	"cardenrich/internal/extraction"
)

func TestNormalize_AllKeysPresent(t *testing.T) {
	raw := `{"company":"Acme","email":"a@acme.com","phone":"+1 555","name":"Jane","designation":"CTO"}`

	got, strategy := extraction.Normalize(raw, domain.FieldSetFull)

	assert.Equal(t, extraction.StrategyJSON, strategy)
	assert.Equal(t, domain.ExtractedFields{
		Company: "Acme", Email: "a@acme.com", Phone: "+1 555", Name: "Jane", Designation: "CTO",
	}, got)
}

func TestNormalize_MissingKeyIsEmpty(t *testing.T) {
	got, strategy := extraction.Normalize(`{"company":"Acme","email":"a@acme.com"}`, domain.FieldSetFull)

	assert.Equal(t, extraction.StrategyJSON, strategy)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "a@acme.com", got.Email)
	assert.Empty(t, got.Phone)
	assert.Empty(t, got.Name)
	assert.Empty(t, got.Designation)
}

func TestNormalize_ContactSetIgnoresOtherKeys(t *testing.T) {
	raw := `{"company":"Acme","email":"a@acme.com","phone":"+1 555","website":"acme.test"}`

	got, strategy := extraction.Normalize(raw, domain.FieldSetContact)

	assert.Equal(t, extraction.StrategyJSON, strategy)
	assert.Equal(t, domain.ExtractedFields{Company: "Acme", Email: "a@acme.com"}, got)
}

func TestNormalize_NonStringValues(t *testing.T) {
	raw := `{"company":null,"email":["a@b.com"],"phone":5550100,"name":true,"designation":{"x":1}}`

	got, strategy := extraction.Normalize(raw, domain.FieldSetFull)

	assert.Equal(t, extraction.StrategyJSON, strategy)
	assert.Equal(t, domain.ExtractedFields{Phone: "5550100"}, got)
}

func TestNormalize_KeysAreExactInJSONStage(t *testing.T) {
	got, strategy := extraction.Normalize(`{"Company":"Acme","EMAIL":"a@acme.com"}`, domain.FieldSetContact)

	assert.Equal(t, extraction.StrategyJSON, strategy)
	assert.Equal(t, domain.ExtractedFields{}, got)
}

func TestNormalize_FallbackFindsEmail(t *testing.T) {
	raw := `Here you go: "email": "a@b.com" and nothing else`

	got, strategy := extraction.Normalize(raw, domain.FieldSetFull)

	assert.Equal(t, extraction.StrategyRegex, strategy)
	assert.Equal(t, domain.ExtractedFields{Email: "a@b.com"}, got)
}

func TestNormalize_FallbackOnMarkdownFence(t *testing.T) {
	raw := "```json\n{\n  \"company\": \"Acme Corp\",\n  \"email\": \"sales@acme.test\"\n}\n```"

	got, strategy := extraction.Normalize(raw, domain.FieldSetContact)

	assert.Equal(t, extraction.StrategyRegex, strategy)
	assert.Equal(t, domain.ExtractedFields{Company: "Acme Corp", Email: "sales@acme.test"}, got)
}

func TestNormalize_FallbackFieldNameIsCaseInsensitive(t *testing.T) {
	raw := `{"COMPANY": "Acme", "Email" : "a@acme.com",}`

	got, strategy := extraction.Normalize(raw, domain.FieldSetContact)

	assert.Equal(t, extraction.StrategyRegex, strategy)
	assert.Equal(t, "Acme", got.Company)
	assert.Equal(t, "a@acme.com", got.Email)
}

func TestNormalize_FallbackTakesFirstMatch(t *testing.T) {
	raw := `"company": "First" "company": "Second"`

	got, _ := extraction.Normalize(raw, domain.FieldSetContact)

	assert.Equal(t, "First", got.Company)
}

func TestNormalize_FallbackSkipsEmptyValue(t *testing.T) {
	raw := `{"company": "", "email": "a@b.com"`

	got, strategy := extraction.Normalize(raw, domain.FieldSetContact)

	assert.Equal(t, extraction.StrategyRegex, strategy)
	assert.Empty(t, got.Company)
	assert.Equal(t, "a@b.com", got.Email)
}

func TestNormalize_Unparsable(t *testing.T) {
	got, strategy := extraction.Normalize("Sorry, I can't help.", domain.FieldSetFull)

	assert.Equal(t, extraction.StrategyRegex, strategy)
	assert.Equal(t, domain.ExtractedFields{}, got)
}

func TestNormalize_NonObjectJSONFallsBack(t *testing.T) {
	for _, raw := range []string{`null`, `"just text"`, `[1,2]`, `42`} {
		t.Run(raw, func(t *testing.T) {
			got, strategy := extraction.Normalize(raw, domain.FieldSetFull)

			assert.Equal(t, extraction.StrategyRegex, strategy)
			assert.Equal(t, domain.ExtractedFields{}, got)
		})
	}
}

func TestBuildPrompt_ListsRequestedKeys(t *testing.T) {
	contact := extraction.BuildPrompt(domain.FieldSetContact)
	full := extraction.BuildPrompt(domain.FieldSetFull)

	assert.Contains(t, contact, `"company"`)
	assert.Contains(t, contact, `"email"`)
	assert.NotContains(t, contact, `"phone"`)
	assert.Contains(t, contact, "Only return valid JSON.")

	for _, key := range []string{`"company"`, `"email"`, `"phone"`, `"name"`, `"designation"`} {
		assert.Contains(t, full, key)
	}
	assert.Equal(t, full, extraction.BuildPrompt(domain.FieldSetFull))
}

func TestNormalize_ZeroKeepsJSONText(t *testing.T) {
	got, strategy := extraction.Normalize(`{"phone":0}`, domain.FieldSetFull)

	assert.Equal(t, extraction.StrategyJSON, strategy)
	assert.Equal(t, "0", got.Phone)
}
