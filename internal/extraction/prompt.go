package extraction

import (
	"strings"

	"cardenrich/internal/domain"
)

var fieldLabels = map[domain.Field]string{
	domain.FieldCompany:     "Company name",
	domain.FieldEmail:       "Email address",
	domain.FieldPhone:       "Phone number",
	domain.FieldName:        "Person's full name",
	domain.FieldDesignation: "Job title or designation",
}

var fieldExamples = map[domain.Field]string{
	domain.FieldCompany:     "Company Name",
	domain.FieldEmail:       "someone@example.com",
	domain.FieldPhone:       "+1 555 0100",
	domain.FieldName:        "Jane Doe",
	domain.FieldDesignation: "Head of Sales",
}

// BuildPrompt returns the fixed business-card instruction for a field set. The
// text is identical for every record in a run.
func BuildPrompt(fields domain.FieldSet) string {
	var b strings.Builder
	b.WriteString("You are a helpful assistant that extracts information from business card images.\n\n")
	b.WriteString("Please extract only:\n")
	list := fields.Fields()
	for _, f := range list {
		b.WriteString("- ")
		b.WriteString(fieldLabels[f])
		b.WriteString("\n")
	}
	b.WriteString("\nRespond ONLY in this exact JSON format:\n{\n")
	for i, f := range list {
		b.WriteString(`  "` + string(f) + `": "` + fieldExamples[f] + `"`)
		if i < len(list)-1 {
			b.WriteString(",")
		}
		b.WriteString("\n")
	}
	b.WriteString("}\n\n")
	b.WriteString("If a field is not visible on the card, use an empty string for it.\n")
	b.WriteString("Do not include any extra text, explanation, markdown, or formatting. Only return valid JSON.")
	return b.String()
}
