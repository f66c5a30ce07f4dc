package dto

import "strings"

// SubmissionRequest is the lead form payload forwarded to the enrichment webhook as-is.
type SubmissionRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	CompanyName string `json:"companyName"`
	CompanyURL  string `json:"companyUrl"`
}

// MissingFields lists the JSON names of required fields that are blank.
func (r SubmissionRequest) MissingFields() []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"name", r.Name},
		{"email", r.Email},
		{"companyName", r.CompanyName},
		{"companyUrl", r.CompanyURL},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

// SubmissionResponse acknowledges that the webhook accepted the submission.
type SubmissionResponse struct {
	Status string `json:"status"`
}
