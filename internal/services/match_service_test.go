package services

import (
	"context"
	"sort"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hirelens/hirelens/internal/matching"
	"github.com/hirelens/hirelens/internal/models"
	"github.com/hirelens/hirelens/internal/providers/mlservice"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/utils"
)

// fakeResumeRepo is an in-memory ResumeRepository with the same append
// semantics as the mongo implementation.
type fakeResumeRepo struct {
	mu      sync.Mutex
	resumes map[primitive.ObjectID]*models.Resume
}

func newFakeResumeRepo() *fakeResumeRepo {
	return &fakeResumeRepo{resumes: map[primitive.ObjectID]*models.Resume{}}
}

func (f *fakeResumeRepo) add(r *models.Resume) *models.Resume {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	if r.Status == "" {
		r.Status = models.ResumeActive
	}
	f.resumes[r.ID] = r
	return r
}

func (f *fakeResumeRepo) Create(ctx context.Context, r *models.Resume) error {
	f.add(r)
	return nil
}

func (f *fakeResumeRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (f *fakeResumeRepo) List(ctx context.Context, filter mongorepo.ResumeFilter) ([]models.Resume, int64, error) {
	all, err := f.FindByStatus(ctx, models.ResumeActive)
	return all, int64(len(all)), err
}

func (f *fakeResumeRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.resumes[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.resumes, id)
	return nil
}

func (f *fakeResumeRepo) FindByStatus(ctx context.Context, status models.ResumeStatus) ([]models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Resume
	for _, r := range f.resumes {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Hex() < out[j].ID.Hex() })
	return out, nil
}

func (f *fakeResumeRepo) FindAppliedToJob(ctx context.Context, jobID primitive.ObjectID) ([]models.Resume, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Resume
	for _, r := range f.resumes {
		if r.Status == models.ResumeActive && r.HasApplied(jobID) {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResumeRepo) FindApplication(ctx context.Context, resumeID, jobID primitive.ObjectID) (*models.JobApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[resumeID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	app := r.Application(jobID)
	if app == nil {
		return nil, utils.ErrNotFound
	}
	cp := *app
	return &cp, nil
}

func (f *fakeResumeRepo) AppendApplication(ctx context.Context, resumeID primitive.ObjectID, app models.JobApplication) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[resumeID]
	if !ok {
		return false, nil
	}
	if r.HasApplied(app.JobID) {
		return false, nil
	}
	if app.Status == "" {
		app.Status = models.ApplicationPending
	}
	r.JobApplications = append(r.JobApplications, app)
	return true, nil
}

func (f *fakeResumeRepo) UpdateApplicationScore(ctx context.Context, resumeID, jobID primitive.ObjectID, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.resumes[resumeID]
	if !ok {
		return utils.ErrNotFound
	}
	app := r.Application(jobID)
	if app == nil {
		return utils.ErrNotFound
	}
	app.MatchScore = score
	return nil
}

func (f *fakeResumeRepo) CountApplicantsForJob(ctx context.Context, jobID primitive.ObjectID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, r := range f.resumes {
		if r.HasApplied(jobID) {
			n++
		}
	}
	return n, nil
}

type fakeJobRepo struct {
	mu   sync.Mutex
	jobs map[primitive.ObjectID]*models.Job
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: map[primitive.ObjectID]*models.Job{}}
}

func (f *fakeJobRepo) add(j *models.Job) *models.Job {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j.ID.IsZero() {
		j.ID = primitive.NewObjectID()
	}
	if j.Status == "" {
		j.Status = models.JobActive
	}
	f.jobs[j.ID] = j
	return j
}

func (f *fakeJobRepo) Create(ctx context.Context, j *models.Job) error {
	f.add(j)
	return nil
}

func (f *fakeJobRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobRepo) List(ctx context.Context, filter mongorepo.JobFilter) ([]models.Job, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Job
	for _, j := range f.jobs {
		out = append(out, *j)
	}
	return out, int64(len(out)), nil
}

func (f *fakeJobRepo) Update(ctx context.Context, id primitive.ObjectID, update bson.M) (*models.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	j, ok := f.jobs[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	for k, v := range update {
		switch k {
		case "title":
			j.Title = v.(string)
		case "description":
			j.Description = v.(string)
		case "status":
			j.Status = v.(models.JobStatus)
		case "required_skills":
			j.RequiredSkills = v.([]models.SkillRequirement)
		case "posted_by":
			j.PostedBy = v.(string)
		}
	}
	cp := *j
	return &cp, nil
}

func (f *fakeJobRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.jobs[id]; !ok {
		return utils.ErrNotFound
	}
	delete(f.jobs, id)
	return nil
}

func (f *fakeJobRepo) IncrementViews(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.Views++
	}
	return nil
}

func (f *fakeJobRepo) IncrementApplicants(ctx context.Context, id primitive.ObjectID, delta int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.ApplicantsCount += delta
	}
	return nil
}

func (f *fakeJobRepo) SetApplicantsCount(ctx context.Context, id primitive.ObjectID, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if j, ok := f.jobs[id]; ok {
		j.ApplicantsCount = count
	}
	return nil
}

func (f *fakeJobRepo) applicants(id primitive.ObjectID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.jobs[id].ApplicantsCount
}

// matcherFunc adapts a function to the Matcher interface.
type matcherFunc func(ctx context.Context, req mlservice.MatchRequest) (*mlservice.MatchResult, error)

func (fn matcherFunc) Match(ctx context.Context, req mlservice.MatchRequest) (*mlservice.MatchResult, error) {
	return fn(ctx, req)
}

func quietLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)
	return log
}

func fixedScore(score float64) matcherFunc {
	return func(ctx context.Context, req mlservice.MatchRequest) (*mlservice.MatchResult, error) {
		return &mlservice.MatchResult{Score: score}, nil
	}
}

func downMatcher() matcherFunc {
	return func(ctx context.Context, req mlservice.MatchRequest) (*mlservice.MatchResult, error) {
		return nil, &mlservice.Error{Kind: mlservice.KindTimeout, Op: "mlservice.Match"}
	}
}

func newTestJob(jobs *fakeJobRepo) *models.Job {
	return jobs.add(&models.Job{
		Title:       "Backend Engineer",
		Description: "Build services in Go",
		RequiredSkills: []models.SkillRequirement{
			{Skill: "Go", Weight: 10},
			{Skill: "Python", Weight: 5},
		},
	})
}

func TestMatchResumeToJobExternalScore(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	resume := resumes.add(&models.Resume{CandidateName: "Ada", Skills: []string{"go"}})

	svc := NewMatchService(resumes, jobs, fixedScore(82), nil, quietLogger(), MatchConfig{})

	out, err := svc.MatchResumeToJob(context.Background(), resume.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 82, out.Score)
	assert.Equal(t, SourceExternal, out.Source)
	assert.Equal(t, matching.HighlyRecommended, out.Recommendation)
	assert.True(t, out.Created)

	app, err := resumes.FindApplication(context.Background(), resume.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 82, app.MatchScore)
	assert.Equal(t, models.ApplicationPending, app.Status)
	assert.Equal(t, 1, jobs.applicants(job.ID))
}

func TestMatchResumeToJobFallsBackWhenMatcherDown(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	// go matches (10), python does not: 10/15 rounds to 67.
	resume := resumes.add(&models.Resume{CandidateName: "Ada", Skills: []string{"Go", "Kubernetes"}})

	svc := NewMatchService(resumes, jobs, downMatcher(), nil, quietLogger(), MatchConfig{})

	out, err := svc.MatchResumeToJob(context.Background(), resume.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 67, out.Score)
	assert.Equal(t, SourceFallback, out.Source)
	assert.Equal(t, matching.Recommended, out.Recommendation)
}

func TestMatchResumeToJobRerunUpdatesScoreOnly(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	resume := resumes.add(&models.Resume{CandidateName: "Ada", Skills: []string{"go"}})

	ctx := context.Background()
	svc := NewMatchService(resumes, jobs, fixedScore(55), nil, quietLogger(), MatchConfig{})

	first, err := svc.MatchResumeToJob(ctx, resume.ID, job.ID)
	require.NoError(t, err)
	assert.True(t, first.Created)

	svc = NewMatchService(resumes, jobs, fixedScore(90), nil, quietLogger(), MatchConfig{})
	second, err := svc.MatchResumeToJob(ctx, resume.ID, job.ID)
	require.NoError(t, err)
	assert.False(t, second.Created)
	assert.Equal(t, 90, second.Score)

	app, err := resumes.FindApplication(ctx, resume.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 90, app.MatchScore)

	// Re-running a pair never creates a second record or inflates the counter.
	stored, err := resumes.GetByID(ctx, resume.ID)
	require.NoError(t, err)
	assert.Len(t, stored.JobApplications, 1)
	assert.Equal(t, 1, jobs.applicants(job.ID))
}

func TestMatchResumeToJobUnknownIDs(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	resume := resumes.add(&models.Resume{CandidateName: "Ada"})

	svc := NewMatchService(resumes, jobs, fixedScore(80), nil, quietLogger(), MatchConfig{})
	ctx := context.Background()

	_, err := svc.MatchResumeToJob(ctx, primitive.NewObjectID(), job.ID)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	_, err = svc.MatchResumeToJob(ctx, resume.ID, primitive.NewObjectID())
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestMatchAllForJobThresholdAndSkips(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)

	strong := resumes.add(&models.Resume{CandidateName: "Strong", ExtractedText: "strong"})
	weak := resumes.add(&models.Resume{CandidateName: "Weak", ExtractedText: "weak"})
	border := resumes.add(&models.Resume{CandidateName: "Border", ExtractedText: "border"})
	applied := resumes.add(&models.Resume{
		CandidateName:   "Applied",
		ExtractedText:   "applied",
		JobApplications: []models.JobApplication{{JobID: job.ID, MatchScore: 40}},
	})

	scores := map[string]float64{"strong": 88, "weak": 29, "border": 30, "applied": 99}
	matcher := matcherFunc(func(ctx context.Context, req mlservice.MatchRequest) (*mlservice.MatchResult, error) {
		return &mlservice.MatchResult{Score: scores[req.ResumeText]}, nil
	})

	svc := NewMatchService(resumes, jobs, matcher, nil, quietLogger(), MatchConfig{Workers: 2})

	res, err := svc.MatchAllForJob(context.Background(), job.ID)
	require.NoError(t, err)

	// weak is below the threshold (silent skip) and applied is skipped
	// entirely; neither counts as failed.
	assert.Equal(t, 2, res.Matched)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 4, res.Total)

	ctx := context.Background()
	_, err = resumes.FindApplication(ctx, strong.ID, job.ID)
	assert.NoError(t, err)
	_, err = resumes.FindApplication(ctx, border.ID, job.ID)
	assert.NoError(t, err)
	_, err = resumes.FindApplication(ctx, weak.ID, job.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	// Counter is derived from persisted records, including the pre-existing
	// application.
	assert.Equal(t, 3, jobs.applicants(job.ID))

	// The earlier application's score is untouched by the batch.
	app, err := resumes.FindApplication(ctx, applied.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, app.MatchScore)
}

func TestMatchAllForJobMatcherDownCountsFailures(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	for i := 0; i < 3; i++ {
		resumes.add(&models.Resume{CandidateName: "C", Skills: []string{"go"}})
	}

	svc := NewMatchService(resumes, jobs, downMatcher(), nil, quietLogger(), MatchConfig{Workers: 2})

	res, err := svc.MatchAllForJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Matched)
	assert.Equal(t, 3, res.Failed)
	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 0, jobs.applicants(job.ID))
}

func TestMatchAllForJobFallbackScoring(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	match := resumes.add(&models.Resume{CandidateName: "GoDev", Skills: []string{"go", "python"}})
	miss := resumes.add(&models.Resume{CandidateName: "Designer", Skills: []string{"figma"}})

	svc := NewMatchService(resumes, jobs, downMatcher(), nil, quietLogger(),
		MatchConfig{Workers: 2, BatchFallback: true})

	res, err := svc.MatchAllForJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Matched)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 2, res.Total)

	ctx := context.Background()
	app, err := resumes.FindApplication(ctx, match.ID, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, app.MatchScore)

	_, err = resumes.FindApplication(ctx, miss.ID, job.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)
}

func TestMatchAllForJobCancelledMidRun(t *testing.T) {
	resumes := newFakeResumeRepo()
	jobs := newFakeJobRepo()
	job := newTestJob(jobs)
	for _, name := range []string{"first", "second", "third"} {
		resumes.add(&models.Resume{CandidateName: name, ExtractedText: name})
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The second scoring call cancels the run; the batch must drain, report
	// TIMEOUT and keep the application it already persisted.
	var mu sync.Mutex
	var seen []string
	matcher := matcherFunc(func(ctx context.Context, req mlservice.MatchRequest) (*mlservice.MatchResult, error) {
		mu.Lock()
		seen = append(seen, req.ResumeText)
		if len(seen) == 2 {
			cancel()
		}
		mu.Unlock()
		return &mlservice.MatchResult{Score: 80}, nil
	})

	svc := NewMatchService(resumes, jobs, matcher, nil, quietLogger(), MatchConfig{Workers: 1})

	res, err := svc.MatchAllForJob(ctx, job.ID)
	assert.Nil(t, res)
	assert.True(t, utils.IsCode(err, utils.CodeTimeout))

	mu.Lock()
	require.NotEmpty(t, seen)
	scored := seen[0]
	mu.Unlock()

	all, err := resumes.FindByStatus(context.Background(), models.ResumeActive)
	require.NoError(t, err)
	for i := range all {
		if all[i].ExtractedText == scored {
			app := all[i].Application(job.ID)
			require.NotNil(t, app)
			assert.Equal(t, 80, app.MatchScore)
		}
	}
}

func TestMatchAllForJobUnknownJob(t *testing.T) {
	svc := NewMatchService(newFakeResumeRepo(), newFakeJobRepo(), fixedScore(50), nil, quietLogger(), MatchConfig{})

	_, err := svc.MatchAllForJob(context.Background(), primitive.NewObjectID())
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}
