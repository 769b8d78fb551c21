package services

import (
	"context"
	"errors"
	"math"
	"os"
	"strconv"
	"sync"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hirelens/hirelens/internal/cache"
	"github.com/hirelens/hirelens/internal/matching"
	"github.com/hirelens/hirelens/internal/models"
	"github.com/hirelens/hirelens/internal/providers/mlservice"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/utils"
)

type MatchSource string

const (
	SourceExternal MatchSource = "external"
	SourceFallback MatchSource = "fallback"
)

type MatchOutcome struct {
	Score          int                     `json:"match_score"`
	Source         MatchSource             `json:"source"`
	Recommendation matching.Recommendation `json:"recommendation"`
	Created        bool                    `json:"created"`
}

type BatchResult struct {
	Matched int `json:"matched"`
	Failed  int `json:"failed"`
	Total   int `json:"total"`
}

// MatchConfig tunes the batch path. BatchThreshold is the minimum score an
// external match must reach before an application is recorded; Workers bounds
// the concurrent external calls; BatchFallback decides whether a failed
// external call degrades to local scoring (single-match always does).
type MatchConfig struct {
	BatchThreshold int
	Workers        int
	BatchFallback  bool
}

const (
	defaultBatchThreshold = 30
	defaultMatchWorkers   = 4
)

func LoadMatchConfig() MatchConfig {
	cfg := MatchConfig{
		BatchThreshold: defaultBatchThreshold,
		Workers:        defaultMatchWorkers,
	}
	if raw := os.Getenv("MATCH_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if raw := os.Getenv("MATCH_BATCH_FALLBACK"); raw != "" {
		cfg.BatchFallback, _ = strconv.ParseBool(raw)
	}
	return cfg
}

type MatchService interface {
	MatchResumeToJob(ctx context.Context, resumeID, jobID primitive.ObjectID) (*MatchOutcome, error)
	MatchAllForJob(ctx context.Context, jobID primitive.ObjectID) (*BatchResult, error)
}

type matchService struct {
	resumes mongorepo.ResumeRepository
	jobs    mongorepo.JobRepository
	matcher mlservice.Matcher
	cache   cache.Cache
	log     *logrus.Logger
	cfg     MatchConfig
}

func NewMatchService(
	resumes mongorepo.ResumeRepository,
	jobs mongorepo.JobRepository,
	matcher mlservice.Matcher,
	c cache.Cache,
	log *logrus.Logger,
	cfg MatchConfig,
) MatchService {
	if cfg.BatchThreshold <= 0 {
		cfg.BatchThreshold = defaultBatchThreshold
	}
	if cfg.Workers <= 0 {
		cfg.Workers = defaultMatchWorkers
	}
	return &matchService{
		resumes: resumes,
		jobs:    jobs,
		matcher: matcher,
		cache:   c,
		log:     log,
		cfg:     cfg,
	}
}

// MatchResumeToJob scores one (resume, job) pair and records the outcome
// exactly once. An unreachable ML service is not a failure here: the local
// weighted calculator takes over and the operation still succeeds.
func (s *matchService) MatchResumeToJob(ctx context.Context, resumeID, jobID primitive.ObjectID) (*MatchOutcome, error) {
	const op = "MatchService.MatchResumeToJob"

	resume, err := s.resumes.GetByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "resume not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load resume", err)
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	score, source := s.scorePair(ctx, resume, job, true)

	created, err := s.resumes.AppendApplication(ctx, resume.ID, models.JobApplication{
		JobID:      job.ID,
		MatchScore: score,
	})
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to record application", err)
	}

	if created {
		if err := s.jobs.IncrementApplicants(ctx, job.ID, 1); err != nil {
			s.log.WithError(err).WithField("job_id", job.ID.Hex()).
				Warn("failed to bump applicant counter")
		}
	} else {
		// Explicit re-run of an existing pair: only the score is rewritten.
		if err := s.resumes.UpdateApplicationScore(ctx, resume.ID, job.ID, score); err != nil {
			return nil, utils.E(utils.CodeInternal, op, "failed to update match score", err)
		}
	}

	s.invalidate(ctx, job.ID)

	s.log.WithFields(logrus.Fields{
		"resume_id": resume.ID.Hex(),
		"job_id":    job.ID.Hex(),
		"score":     score,
		"source":    source,
		"created":   created,
	}).Info("resume matched to job")

	return &MatchOutcome{
		Score:          score,
		Source:         source,
		Recommendation: matching.Recommend(score),
		Created:        created,
	}, nil
}

// MatchAllForJob runs the whole active resume corpus against one job with a
// bounded worker pool. Per-resume failures never abort the batch.
func (s *matchService) MatchAllForJob(ctx context.Context, jobID primitive.ObjectID) (*BatchResult, error) {
	const op = "MatchService.MatchAllForJob"

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "job not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load job", err)
	}

	corpus, err := s.resumes.FindByStatus(ctx, models.ResumeActive)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load resume corpus", err)
	}

	result := &BatchResult{Total: len(corpus)}

	var (
		mu   sync.Mutex
		wg   sync.WaitGroup
		feed = make(chan models.Resume)
	)

	workers := s.cfg.Workers
	if workers > len(corpus) && len(corpus) > 0 {
		workers = len(corpus)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for resume := range feed {
				matched, failed := s.matchOne(ctx, &resume, job)
				mu.Lock()
				if matched {
					result.Matched++
				}
				if failed {
					result.Failed++
				}
				mu.Unlock()
			}
		}()
	}

dispatch:
	for _, resume := range corpus {
		select {
		case feed <- resume:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(feed)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, utils.E(utils.CodeTimeout, op, "batch matching cancelled", err)
	}

	// The counter is derived from persisted records, never from the in-memory
	// tally, so applications created outside this run are preserved.
	count, err := s.resumes.CountApplicantsForJob(ctx, job.ID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applicants", err)
	}
	if err := s.jobs.SetApplicantsCount(ctx, job.ID, int(count)); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to store applicant count", err)
	}

	s.invalidate(ctx, job.ID)

	s.log.WithFields(logrus.Fields{
		"job_id":  job.ID.Hex(),
		"matched": result.Matched,
		"failed":  result.Failed,
		"total":   result.Total,
	}).Info("batch matching completed")

	return result, nil
}

// matchOne processes a single corpus entry. Returns (matched, failed); a skip
// (already applied, or score below threshold) reports neither.
func (s *matchService) matchOne(ctx context.Context, resume *models.Resume, job *models.Job) (bool, bool) {
	if resume.HasApplied(job.ID) {
		return false, false
	}

	score, _, err := s.externalScore(ctx, resume, job)
	if err != nil {
		if !s.cfg.BatchFallback {
			s.log.WithError(err).WithFields(logrus.Fields{
				"resume_id": resume.ID.Hex(),
				"job_id":    job.ID.Hex(),
			}).Warn("batch match failed for resume")
			return false, true
		}
		score = matching.ComputeScore(resume.Skills, job.RequiredSkills)
	}

	if score < s.cfg.BatchThreshold {
		return false, false
	}

	created, err := s.resumes.AppendApplication(ctx, resume.ID, models.JobApplication{
		JobID:      job.ID,
		MatchScore: score,
	})
	if err != nil {
		s.log.WithError(err).WithField("resume_id", resume.ID.Hex()).
			Warn("failed to record batch application")
		return false, true
	}
	// created=false means a concurrent writer got there first; treat as skip.
	return created, false
}

// scorePair tries the external matcher first and, when allowed, degrades to
// the local calculator.
func (s *matchService) scorePair(ctx context.Context, resume *models.Resume, job *models.Job, fallback bool) (int, MatchSource) {
	score, source, err := s.externalScore(ctx, resume, job)
	if err == nil {
		return score, source
	}
	if !fallback {
		return 0, SourceExternal
	}

	s.log.WithError(err).WithFields(logrus.Fields{
		"resume_id": resume.ID.Hex(),
		"job_id":    job.ID.Hex(),
	}).Warn("ml service unavailable, using fallback scoring")

	return matching.ComputeScore(resume.Skills, job.RequiredSkills), SourceFallback
}

func (s *matchService) externalScore(ctx context.Context, resume *models.Resume, job *models.Job) (int, MatchSource, error) {
	res, err := s.matcher.Match(ctx, mlservice.MatchRequest{
		ResumeText:      resume.ExtractedText,
		JobDescription:  job.Description,
		RequiredSkills:  job.RequiredSkillNames(),
		CandidateSkills: resume.Skills,
	})
	if err != nil {
		return 0, SourceExternal, err
	}
	return int(math.Round(res.Score)), SourceExternal, nil
}

func (s *matchService) invalidate(ctx context.Context, jobID primitive.ObjectID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, cache.DashboardKey, cache.CandidatesKey(jobID.Hex())); err != nil {
		s.log.WithError(err).Debug("cache invalidation failed")
	}
}
