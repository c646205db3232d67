package storage

import "time"

// ExtractionRequestMessage asks the worker to extract a PDF already stored in MinIO.
type ExtractionRequestMessage struct {
	SubmissionUUID   string    `json:"submission_uuid"`
	ObjectKey        string    `json:"object_key"`        // key in the originals bucket
	OriginalFilename string    `json:"original_filename"` // shown in logs and the audit row
	RequestedAt      time.Time `json:"requested_at,omitempty"`
}

// ExtractionEvent is published on resume.extracted after a successful extraction.
type ExtractionEvent struct {
	SubmissionUUID   string    `json:"submission_uuid"`
	Source           string    `json:"source"`
	OriginalFilename string    `json:"original_filename,omitempty"`
	FileMD5          string    `json:"file_md5,omitempty"`
	ResultObjectKey  string    `json:"result_object_key,omitempty"`
	CachedFrom       string    `json:"cached_from,omitempty"`
	ExperienceLevel  string    `json:"experience_level"`
	TotalYears       float64   `json:"total_years"`
	PrimarySkills    []string  `json:"primary_skills"`
	JobTitles        []string  `json:"job_titles"`
	ExtractedAt      time.Time `json:"extracted_at"`
}
