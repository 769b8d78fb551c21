// Package mlservice is the client for the external resume parsing and
// candidate-job matching microservice.
package mlservice

import "context"

type MatchRequest struct {
	ResumeText      string   `json:"resumeText"`
	JobDescription  string   `json:"jobDescription"`
	RequiredSkills  []string `json:"requiredSkills"`
	CandidateSkills []string `json:"candidateSkills"`
}

type MatchResult struct {
	Score         float64  `json:"score"`
	MatchedSkills []string `json:"matchedSkills"`
	MissingSkills []string `json:"missingSkills"`
	Analysis      string   `json:"analysis"`
}

type ParsedResume struct {
	Skills         []string          `json:"skills"`
	Experience     int               `json:"experience"`
	Education      []ParsedEducation `json:"education"`
	Certifications []string          `json:"certifications"`
	Email          string            `json:"email"`
	Phone          string            `json:"phone"`
}

type ParsedEducation struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Matcher scores a resume against a job. Implementations must return a
// *Error for every failure mode so callers can decide fallback policy.
type Matcher interface {
	Match(ctx context.Context, req MatchRequest) (*MatchResult, error)
}

// Parser extracts structured candidate data from raw resume text.
type Parser interface {
	ParseResume(ctx context.Context, text string) (*ParsedResume, error)
}
