package domain

// InputRecord is one row of the uploaded sheet. All values are opaque strings.
type InputRecord struct {
	ID        string
	CreatedAt string
	ImageURL  string
	Comment   string
}

// ExtractedFields is the structured result of reading one business-card image.
// Every field is the empty string when the model did not supply it.
type ExtractedFields struct {
	Company     string
	Email       string
	Phone       string
	Name        string
	Designation string
}

// Get returns the value for an extracted column name, or "" for unknown names.
func (f ExtractedFields) Get(field Field) string {
	switch field {
	case FieldCompany:
		return f.Company
	case FieldEmail:
		return f.Email
	case FieldPhone:
		return f.Phone
	case FieldName:
		return f.Name
	case FieldDesignation:
		return f.Designation
	default:
		return ""
	}
}

// Set assigns the value for an extracted column name. Unknown names are ignored.
func (f *ExtractedFields) Set(field Field, value string) {
	switch field {
	case FieldCompany:
		f.Company = value
	case FieldEmail:
		f.Email = value
	case FieldPhone:
		f.Phone = value
	case FieldName:
		f.Name = value
	case FieldDesignation:
		f.Designation = value
	}
}

// EnrichedRecord is an InputRecord with the extracted fields appended.
type EnrichedRecord struct {
	InputRecord
	ExtractedFields
}

// InputColumns are the required input header names, in output order.
var InputColumns = []string{"id", "created_at", "image_url", "comment"}

// Values returns the input columns of r in InputColumns order.
func (r InputRecord) Values() []string {
	return []string{r.ID, r.CreatedAt, r.ImageURL, r.Comment}
}
