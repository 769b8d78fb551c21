package services

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hirelens/hirelens/internal/cache"
	"github.com/hirelens/hirelens/internal/matching"
	"github.com/hirelens/hirelens/internal/models"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/utils"
)

const candidatesTTL = 5 * time.Minute

// Actor identifies the authenticated caller for ownership checks.
type Actor struct {
	UserID string
	Role   models.UserRole
}

func (a Actor) isAdmin() bool { return a.Role == models.RoleAdmin }

// Candidate is one ranked entry of a job's applicant list.
type Candidate struct {
	ResumeID       primitive.ObjectID       `json:"resume_id"`
	CandidateName  string                   `json:"candidate_name"`
	Email          string                   `json:"email"`
	Skills         []string                 `json:"skills"`
	Experience     int                      `json:"experience"`
	MatchScore     int                      `json:"match_score"`
	Recommendation matching.Recommendation  `json:"recommendation"`
	Status         models.ApplicationStatus `json:"status"`
	AppliedDate    time.Time                `json:"applied_date"`
}

// JobUpdateInput carries the client-writable job fields. Nil means "leave
// unchanged"; ownership, counters and timestamps are never client writable.
type JobUpdateInput struct {
	Title           *string                   `json:"title"`
	Description     *string                   `json:"description"`
	Department      *string                   `json:"department"`
	Location        *string                   `json:"location"`
	EmploymentType  *string                   `json:"employment_type"`
	ExperienceLevel *string                   `json:"experience_level"`
	RequiredSkills  []models.SkillRequirement `json:"required_skills"`
	MinExperience   *int                      `json:"min_experience"`
	MaxExperience   *int                      `json:"max_experience"`
	Salary          *models.Salary            `json:"salary"`
	Benefits        []string                  `json:"benefits"`
	Status          *models.JobStatus         `json:"status"`
}

type JobService interface {
	Create(ctx context.Context, job *models.Job) (*models.Job, error)
	Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error)
	List(ctx context.Context, f mongorepo.JobFilter) ([]models.Job, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, actor Actor, in JobUpdateInput) (*models.Job, error)
	Delete(ctx context.Context, id primitive.ObjectID, actor Actor) error
	RankedCandidates(ctx context.Context, jobID primitive.ObjectID) ([]Candidate, error)
}

type jobService struct {
	jobs    mongorepo.JobRepository
	resumes mongorepo.ResumeRepository
	cache   cache.Cache
	log     *logrus.Logger
}

func NewJobService(
	jobs mongorepo.JobRepository,
	resumes mongorepo.ResumeRepository,
	c cache.Cache,
	log *logrus.Logger,
) JobService {
	return &jobService{jobs: jobs, resumes: resumes, cache: c, log: log}
}

func validateSkillRequirements(op string, reqs []models.SkillRequirement) error {
	for _, r := range reqs {
		if r.Skill == "" {
			return utils.E(utils.CodeInvalidArgument, op, "required skill name must not be empty", nil)
		}
		if r.Weight < 0 || r.Weight > 10 {
			return utils.E(utils.CodeInvalidArgument, op, "skill weight must be between 1 and 10", nil)
		}
	}
	return nil
}

func validateJobStatus(op string, status models.JobStatus) error {
	switch status {
	case models.JobDraft, models.JobActive, models.JobPaused, models.JobClosed:
		return nil
	default:
		return utils.E(utils.CodeInvalidArgument, op, "unknown job status", nil)
	}
}

func (s *jobService) Create(ctx context.Context, job *models.Job) (*models.Job, error) {
	const op = "JobService.Create"

	if job.Title == "" || job.Description == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and description are required", nil)
	}
	if err := validateSkillRequirements(op, job.RequiredSkills); err != nil {
		return nil, err
	}
	if job.Status != "" {
		if err := validateJobStatus(op, job.Status); err != nil {
			return nil, err
		}
	}

	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create job", err)
	}

	s.log.WithFields(logrus.Fields{
		"job_id": job.ID.Hex(),
		"title":  job.Title,
	}).Info("job created")

	return job, nil
}

// Get loads a job and bumps its view counter. The counter is best effort.
func (s *jobService) Get(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	const op = "JobService.Get"

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	if err := s.jobs.IncrementViews(ctx, id); err != nil {
		s.log.WithError(err).WithField("job_id", id.Hex()).Debug("failed to bump view counter")
	}
	return job, nil
}

func (s *jobService) List(ctx context.Context, f mongorepo.JobFilter) ([]models.Job, int64, error) {
	const op = "JobService.List"

	jobs, total, err := s.jobs.List(ctx, f)
	if err != nil {
		return nil, 0, utils.E(utils.CodeInternal, op, "failed to list jobs", err)
	}
	return jobs, total, nil
}

// Update modifies a job. Only the posting user or an admin may do so; the
// typed input re-runs the same validation as Create, so an update cannot
// smuggle in an invalid weight or status.
func (s *jobService) Update(ctx context.Context, id primitive.ObjectID, actor Actor, in JobUpdateInput) (*models.Job, error) {
	const op = "JobService.Update"

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	if job.PostedBy != actor.UserID && !actor.isAdmin() {
		return nil, utils.E(utils.CodeForbidden, op, "not allowed to modify this job", nil)
	}

	update := bson.M{}
	if in.Title != nil {
		if *in.Title == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "title must not be empty", nil)
		}
		update["title"] = *in.Title
	}
	if in.Description != nil {
		if *in.Description == "" {
			return nil, utils.E(utils.CodeInvalidArgument, op, "description must not be empty", nil)
		}
		update["description"] = *in.Description
	}
	if in.Department != nil {
		update["department"] = *in.Department
	}
	if in.Location != nil {
		update["location"] = *in.Location
	}
	if in.EmploymentType != nil {
		update["employment_type"] = *in.EmploymentType
	}
	if in.ExperienceLevel != nil {
		update["experience_level"] = *in.ExperienceLevel
	}
	if in.RequiredSkills != nil {
		if err := validateSkillRequirements(op, in.RequiredSkills); err != nil {
			return nil, err
		}
		update["required_skills"] = in.RequiredSkills
	}
	if in.MinExperience != nil {
		update["min_experience"] = *in.MinExperience
	}
	if in.MaxExperience != nil {
		update["max_experience"] = *in.MaxExperience
	}
	if in.Salary != nil {
		update["salary"] = in.Salary
	}
	if in.Benefits != nil {
		update["benefits"] = in.Benefits
	}
	if in.Status != nil {
		if err := validateJobStatus(op, *in.Status); err != nil {
			return nil, err
		}
		update["status"] = *in.Status
	}

	if len(update) == 0 {
		return job, nil
	}

	job, err = s.jobs.Update(ctx, id, update)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to update job", err)
	}

	s.invalidate(ctx, id)
	return job, nil
}

// Delete removes a job. Only the posting user or an admin may do so.
func (s *jobService) Delete(ctx context.Context, id primitive.ObjectID, actor Actor) error {
	const op = "JobService.Delete"

	job, err := s.jobs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to load job", err)
	}
	if job.PostedBy != actor.UserID && !actor.isAdmin() {
		return utils.E(utils.CodeForbidden, op, "not allowed to delete this job", nil)
	}

	if err := s.jobs.Delete(ctx, id); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return utils.E(utils.CodeInternal, op, "failed to delete job", err)
	}

	s.invalidate(ctx, id)
	s.log.WithField("job_id", id.Hex()).Info("job deleted")
	return nil
}

// RankedCandidates returns every resume that applied to the job, best match
// first. Results are cached until the next match run touches the job.
func (s *jobService) RankedCandidates(ctx context.Context, jobID primitive.ObjectID) ([]Candidate, error) {
	const op = "JobService.RankedCandidates"

	key := cache.CandidatesKey(jobID.Hex())
	if s.cache != nil {
		var cached []Candidate
		if hit, err := s.cache.GetJSON(ctx, key, &cached); err == nil && hit {
			return cached, nil
		}
	}

	if _, err := s.jobs.GetByID(ctx, jobID); err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	resumes, err := s.resumes.FindAppliedToJob(ctx, jobID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load applicants", err)
	}

	candidates := make([]Candidate, 0, len(resumes))
	for i := range resumes {
		app := resumes[i].Application(jobID)
		if app == nil {
			continue
		}
		candidates = append(candidates, Candidate{
			ResumeID:       resumes[i].ID,
			CandidateName:  resumes[i].CandidateName,
			Email:          resumes[i].Email,
			Skills:         resumes[i].Skills,
			Experience:     resumes[i].Experience,
			MatchScore:     app.MatchScore,
			Recommendation: matching.Recommend(app.MatchScore),
			Status:         app.Status,
			AppliedDate:    app.AppliedDate,
		})
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MatchScore > candidates[j].MatchScore
	})

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, candidates, candidatesTTL); err != nil {
			s.log.WithError(err).Debug("failed to cache candidate ranking")
		}
	}
	return candidates, nil
}

func (s *jobService) invalidate(ctx context.Context, jobID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.DashboardKey, cache.CandidatesKey(jobID.Hex())); err != nil {
		s.log.WithError(err).Debug("cache invalidation failed")
	}
}
