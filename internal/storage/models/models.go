package models

import (
	"time"

	"github.com/gofrs/uuid/v5"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Extraction statuses.
const (
	StatusSucceeded = "SUCCEEDED"
	StatusRejected  = "REJECTED"
	StatusFailed    = "FAILED"
)

// ExtractionRecord is the audit row written for every extraction.
type ExtractionRecord struct {
	ID               string         `gorm:"type:char(36);primaryKey"`
	SubmissionUUID   string         `gorm:"type:char(36);uniqueIndex:idx_er_submission_uuid"`
	Source           string         `gorm:"type:varchar(20)"` // pdf | text | worker
	OriginalFilename string         `gorm:"type:varchar(255)"`
	FileMD5          string         `gorm:"type:char(32);index:idx_er_file_md5"`
	PDFEngine        string         `gorm:"type:varchar(50)"`
	OriginalFilePath string         `gorm:"type:varchar(1024)"`
	ResultPath       string         `gorm:"type:varchar(1024)"`
	CachedFrom       string         `gorm:"type:char(36)"` // submission whose result was reused
	CandidateName    string         `gorm:"type:varchar(255)"`
	TotalYears       float64        `gorm:"type:decimal(4,1)"`
	ExperienceLevel  string         `gorm:"type:varchar(50);index:idx_er_experience_level"`
	SkillsJSON       datatypes.JSON `gorm:"type:json"`
	JobTitlesJSON    datatypes.JSON `gorm:"type:json"`
	ResultJSON       datatypes.JSON `gorm:"type:json"`
	Status           string         `gorm:"type:varchar(50);index:idx_er_status"`
	ErrorMessage     string         `gorm:"type:text"`
	ParserVersion    string         `gorm:"type:varchar(50)"`
	DurationMS       int64
	CreatedAt        time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (ExtractionRecord) TableName() string {
	return "extraction_records"
}

// BeforeCreate assigns a time-ordered UUIDv7 primary key.
func (r *ExtractionRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID != "" {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return err
	}
	r.ID = id.String()
	return nil
}
