package types

// ContactInfo holds contact details; every field is independently nullable.
type ContactInfo struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Phone    *string `json:"phone"`
	Location *string `json:"location"`
	LinkedIn *string `json:"linkedin"`
	GitHub   *string `json:"github"`
}

// SkillSet groups detected skills by category. AllSkills is the first-seen ordered union.
type SkillSet struct {
	ProgrammingLanguages []string `json:"programming_languages"`
	WebTechnologies      []string `json:"web_technologies"`
	MobileDevelopment    []string `json:"mobile_development"`
	Databases            []string `json:"databases"`
	CloudDevOps          []string `json:"cloud_devops"`
	DataScienceAI        []string `json:"data_science_ai"`
	OtherTools           []string `json:"other_tools"`
	AllSkills            []string `json:"all_skills"`
}

// Contains reports whether skill was detected in any category.
func (s SkillSet) Contains(skill string) bool {
	for _, v := range s.AllSkills {
		if v == skill {
			return true
		}
	}
	return false
}

// Experience is the derived work history summary.
type Experience struct {
	TotalYears float64  `json:"total_years"`
	Positions  []string `json:"positions"`
}

// EducationEntry is one degree match. Degree is the raw matched text.
type EducationEntry struct {
	Degree string  `json:"degree"`
	Year   *string `json:"year"`
	CGPA   *string `json:"cgpa"`
}

// JobPreferences captures job type, location and salary signals.
type JobPreferences struct {
	JobTypes           []string `json:"job_types"`
	PreferredLocations []string `json:"preferred_locations"`
	SalaryExpectation  *string  `json:"salary_expectation"`
	RemotePreference   bool     `json:"remote_preference"`
}

// ResumeRecord is the assembled result of one extraction call.
type ResumeRecord struct {
	ContactInfo    ContactInfo      `json:"contact_info"`
	Skills         SkillSet         `json:"skills"`
	Experience     Experience       `json:"experience"`
	Education      []EducationEntry `json:"education"`
	Projects       []string         `json:"projects"`
	JobPreferences JobPreferences   `json:"job_preferences"`
	RawTextPreview string           `json:"raw_text_preview"`
}

// SearchKeywords are derived from a ResumeRecord for job search.
type SearchKeywords struct {
	PrimarySkills   []string `json:"primary_skills"`
	JobTitles       []string `json:"job_titles"`
	Technologies    []string `json:"technologies"`
	ExperienceLevel string   `json:"experience_level"`
	Locations       []string `json:"locations"`
}

// ExtractionResponse is the combined payload returned by the API and the CLI.
type ExtractionResponse struct {
	ContactInfo    ContactInfo      `json:"contact_info"`
	Skills         SkillSet         `json:"skills"`
	Experience     Experience       `json:"experience"`
	Education      []EducationEntry `json:"education"`
	Projects       []string         `json:"projects"`
	JobPreferences JobPreferences   `json:"job_preferences"`
	SearchKeywords SearchKeywords   `json:"search_keywords"`
	RawTextPreview string           `json:"raw_text_preview"`
}

// NewExtractionResponse merges a record and its keywords into the response shape.
func NewExtractionResponse(record *ResumeRecord, keywords SearchKeywords) *ExtractionResponse {
	return &ExtractionResponse{
		ContactInfo:    record.ContactInfo,
		Skills:         record.Skills,
		Experience:     record.Experience,
		Education:      record.Education,
		Projects:       record.Projects,
		JobPreferences: record.JobPreferences,
		SearchKeywords: keywords,
		RawTextPreview: record.RawTextPreview,
	}
}
