package entity

// CompanyDocument is a record as written by the enrichment workflow, before any cleanup.
type CompanyDocument struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Data map[string]any `json:"data"`
}

// NameCandidate is the minimal projection used when scanning stored company names.
type NameCandidate struct {
	ID   string
	Name string
}

// CompanyRecord is the flattened, display-ready view of a stored company.
// Every value is a non-empty string, a number, a boolean or a nested record; absent fields are omitted.
type CompanyRecord map[string]any

// Text returns the field rendered as a string, or "" when it is absent.
func (r CompanyRecord) Text(field string) string {
	switch v := r[field].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return FormatValue(v)
	}
}
