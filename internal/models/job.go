package models

import "time"

// Job is a job posting. Postings must carry at least one image.
type Job struct {
	ListingBase
	Description string       `gorm:"type:text;not null" json:"description"`
	Company     string       `gorm:"index" json:"company"`
	JobType     string       `gorm:"index" json:"job_type,omitempty"`
	Salary      string       `json:"salary,omitempty"`
	Deadline    *time.Time   `json:"deadline,omitempty"`
	Media       []MediaAsset `gorm:"polymorphic:Owner;polymorphicValue:jobs" json:"media"`
}

func (Job) TableName() string { return "jobs" }

func (j *Job) Kind() ContentKind           { return KindJob }
func (j *Job) Body() string                { return j.Description }
func (j *Job) GetMedia() []MediaAsset      { return j.Media }
func (j *Job) SetMedia(media []MediaAsset) { j.Media = media }
func (j *Job) MinImages() int              { return 1 }

func (j *Job) Validate() error {
	if err := validateBase(&j.ListingBase, j.Description, "description"); err != nil {
		return err
	}
	if j.Company == "" {
		return NewValidationError("company is required")
	}
	return nil
}
