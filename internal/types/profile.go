package types

// UserProfile holds the applicant attributes offered to the completion
// service when proposing values. All fields are plain strings; once
// normalized, absence is represented by an empty string, never by a missing
// key.
type UserProfile struct {
	FullName            string `json:"full_name" validate:"omitempty,max=200"`
	Email               string `json:"email" validate:"omitempty,email"`
	Phone               string `json:"phone" validate:"omitempty,max=40"`
	Location            string `json:"location" validate:"omitempty,max=200"`
	LinkedIn            string `json:"linkedin" validate:"omitempty,url"`
	Website             string `json:"website" validate:"omitempty,url"`
	ResumeText          string `json:"resume_text"`
	WorkAuthorization   string `json:"work_authorization"`
	RequiresSponsorship string `json:"requires_sponsorship"`
	WillingToRelocate   string `json:"willing_to_relocate"`
	DesiredSalary       string `json:"desired_salary"`
	YearsExperience     string `json:"years_experience"`

	// Optional EEO attributes. Left empty unless the user opted in.
	Gender           string `json:"gender,omitempty"`
	RaceEthnicity    string `json:"race_ethnicity,omitempty"`
	VeteranStatus    string `json:"veteran_status,omitempty"`
	DisabilityStatus string `json:"disability_status,omitempty"`
}
