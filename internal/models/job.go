package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type JobStatus string

const (
	JobDraft  JobStatus = "draft"
	JobActive JobStatus = "active"
	JobPaused JobStatus = "paused"
	JobClosed JobStatus = "closed"
)

type SkillImportance string

const (
	ImportanceRequired   SkillImportance = "required"
	ImportancePreferred  SkillImportance = "preferred"
	ImportanceNiceToHave SkillImportance = "nice-to-have"
)

// DefaultSkillWeight is applied when a requirement is stored without a weight.
const DefaultSkillWeight = 5

// SkillRequirement is one weighted entry of a job's required-skill list.
// Weight is 1..10; zero means "unset" and is treated as DefaultSkillWeight.
type SkillRequirement struct {
	Skill      string          `bson:"skill" json:"skill"`
	Importance SkillImportance `bson:"importance,omitempty" json:"importance,omitempty"`
	Weight     int             `bson:"weight,omitempty" json:"weight,omitempty"`
}

// EffectiveWeight resolves the stored weight, falling back to the default.
func (r SkillRequirement) EffectiveWeight() int {
	if r.Weight <= 0 {
		return DefaultSkillWeight
	}
	return r.Weight
}

type Salary struct {
	Min      int    `bson:"min,omitempty" json:"min,omitempty"`
	Max      int    `bson:"max,omitempty" json:"max,omitempty"`
	Currency string `bson:"currency,omitempty" json:"currency,omitempty"`
}

type Job struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title           string             `bson:"title" json:"title"`
	Description     string             `bson:"description" json:"description"`
	Department      string             `bson:"department,omitempty" json:"department,omitempty"`
	Location        string             `bson:"location,omitempty" json:"location,omitempty"`
	EmploymentType  string             `bson:"employment_type,omitempty" json:"employment_type,omitempty"` // full-time|part-time|contract|internship|temporary
	ExperienceLevel string             `bson:"experience_level,omitempty" json:"experience_level,omitempty"`

	RequiredSkills []SkillRequirement `bson:"required_skills" json:"required_skills"`

	MinExperience int      `bson:"min_experience,omitempty" json:"min_experience,omitempty"`
	MaxExperience int      `bson:"max_experience,omitempty" json:"max_experience,omitempty"`
	Salary        *Salary  `bson:"salary,omitempty" json:"salary,omitempty"`
	Benefits      []string `bson:"benefits,omitempty" json:"benefits,omitempty"`

	Status   JobStatus `bson:"status" json:"status"`
	PostedBy string    `bson:"posted_by" json:"posted_by"`

	// ApplicantsCount is derived from the persisted application records after
	// a batch run; handlers must never trust an in-memory tally.
	ApplicantsCount int `bson:"applicants_count" json:"applicants_count"`
	Views           int `bson:"views" json:"views"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// RequiredSkillNames returns the raw skill names, in list order, for the
// external matcher request payload.
func (j *Job) RequiredSkillNames() []string {
	names := make([]string, 0, len(j.RequiredSkills))
	for _, r := range j.RequiredSkills {
		names = append(names, r.Skill)
	}
	return names
}
