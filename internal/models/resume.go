package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ResumeStatus string

const (
	ResumeActive   ResumeStatus = "active"
	ResumeArchived ResumeStatus = "archived"
	ResumeDeleted  ResumeStatus = "deleted"
)

type ApplicationStatus string

const (
	ApplicationPending     ApplicationStatus = "pending"
	ApplicationShortlisted ApplicationStatus = "shortlisted"
	ApplicationRejected    ApplicationStatus = "rejected"
	ApplicationInterviewed ApplicationStatus = "interviewed"
	ApplicationHired       ApplicationStatus = "hired"
)

// JobApplication records a single candidate-job match outcome. It is embedded
// in its Resume; the resume is the aggregate root, the job is referenced by id
// only. At most one application exists per (resume, job) pair.
type JobApplication struct {
	JobID       primitive.ObjectID `bson:"job_id" json:"job_id"`
	MatchScore  int                `bson:"match_score" json:"match_score"`
	Status      ApplicationStatus  `bson:"status" json:"status"`
	AppliedDate time.Time          `bson:"applied_date" json:"applied_date"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
}

type Education struct {
	Degree      string `bson:"degree,omitempty" json:"degree,omitempty"`
	Institution string `bson:"institution,omitempty" json:"institution,omitempty"`
	Year        string `bson:"year,omitempty" json:"year,omitempty"`
}

type Resume struct {
	ID            primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CandidateName string             `bson:"candidate_name" json:"candidate_name"`
	Email         string             `bson:"email" json:"email"`
	Phone         string             `bson:"phone,omitempty" json:"phone,omitempty"`

	FilePath string `bson:"file_path" json:"file_path"`
	FileName string `bson:"file_name" json:"file_name"`
	FileType string `bson:"file_type" json:"file_type"` // pdf|docx|doc

	ExtractedText  string      `bson:"extracted_text,omitempty" json:"-"`
	Skills         []string    `bson:"skills" json:"skills"`
	Experience     int         `bson:"experience" json:"experience"` // years
	Education      []Education `bson:"education,omitempty" json:"education,omitempty"`
	Certifications []string    `bson:"certifications,omitempty" json:"certifications,omitempty"`

	JobApplications []JobApplication `bson:"job_applications" json:"job_applications"`

	UploadedBy string       `bson:"uploaded_by" json:"uploaded_by"`
	Status     ResumeStatus `bson:"status" json:"status"`
	Tags       []string     `bson:"tags,omitempty" json:"tags,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// Application returns the embedded application for jobID, or nil.
func (r *Resume) Application(jobID primitive.ObjectID) *JobApplication {
	for i := range r.JobApplications {
		if r.JobApplications[i].JobID == jobID {
			return &r.JobApplications[i]
		}
	}
	return nil
}

// HasApplied reports whether this resume has already been matched against jobID.
func (r *Resume) HasApplied(jobID primitive.ObjectID) bool {
	return r.Application(jobID) != nil
}
