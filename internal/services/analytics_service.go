package services

import (
	"context"
	"math"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/hirelens/hirelens/internal/cache"
	"github.com/hirelens/hirelens/internal/models"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/utils"
)

const (
	dashboardTTL  = 5 * time.Minute
	topSkillLimit = 10
	topJobLimit   = 5
)

type Dashboard struct {
	TotalResumes         int64                   `json:"total_resumes"`
	TotalJobs            int64                   `json:"total_jobs"`
	TotalApplications    int64                   `json:"total_applications"`
	AverageMatchScore    float64                 `json:"average_match_score"`
	ApplicationsByStatus []mongorepo.StatusCount `json:"applications_by_status"`
	TopJobs              []models.Job            `json:"top_jobs"`
}

type AnalyticsService interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	TopSkills(ctx context.Context) ([]mongorepo.SkillCount, error)
}

type analyticsService struct {
	repo  mongorepo.AnalyticsRepository
	cache cache.Cache
	log   *logrus.Logger
}

func NewAnalyticsService(repo mongorepo.AnalyticsRepository, c cache.Cache, log *logrus.Logger) AnalyticsService {
	return &analyticsService{repo: repo, cache: c, log: log}
}

// Dashboard aggregates the headline recruiting numbers. The result is cached;
// match runs invalidate it so scores are never stale for long.
func (s *analyticsService) Dashboard(ctx context.Context) (*Dashboard, error) {
	const op = "AnalyticsService.Dashboard"

	if s.cache != nil {
		var cached Dashboard
		if hit, err := s.cache.GetJSON(ctx, cache.DashboardKey, &cached); err == nil && hit {
			return &cached, nil
		}
	}

	d := &Dashboard{}
	var err error

	if d.TotalResumes, err = s.repo.ActiveResumeCount(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count resumes", err)
	}
	if d.TotalJobs, err = s.repo.ActiveJobCount(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count jobs", err)
	}
	if d.TotalApplications, err = s.repo.TotalApplications(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to count applications", err)
	}
	avg, err := s.repo.AverageMatchScore(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to average match scores", err)
	}
	d.AverageMatchScore = math.Round(avg*10) / 10
	if d.ApplicationsByStatus, err = s.repo.ApplicationsByStatus(ctx); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to group applications", err)
	}
	if d.TopJobs, err = s.repo.TopJobsByApplicants(ctx, topJobLimit); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to load top jobs", err)
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.DashboardKey, d, dashboardTTL); err != nil {
			s.log.WithError(err).Debug("failed to cache dashboard")
		}
	}
	return d, nil
}

func (s *analyticsService) TopSkills(ctx context.Context) ([]mongorepo.SkillCount, error) {
	const op = "AnalyticsService.TopSkills"

	skills, err := s.repo.TopSkills(ctx, topSkillLimit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to aggregate skills", err)
	}
	return skills, nil
}
