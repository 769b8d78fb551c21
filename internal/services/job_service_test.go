package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirelens/hirelens/internal/models"
	"github.com/hirelens/hirelens/internal/utils"
)

func strPtr(s string) *string { return &s }

func statusPtr(s models.JobStatus) *models.JobStatus { return &s }

func newJobSvc(jobs *fakeJobRepo) JobService {
	return NewJobService(jobs, newFakeResumeRepo(), nil, quietLogger())
}

func postedJob(jobs *fakeJobRepo, owner string) *models.Job {
	return jobs.add(&models.Job{
		Title:       "Backend Engineer",
		Description: "Build services in Go",
		PostedBy:    owner,
		RequiredSkills: []models.SkillRequirement{
			{Skill: "Go", Weight: 10},
		},
	})
}

func TestJobUpdateByOwner(t *testing.T) {
	jobs := newFakeJobRepo()
	job := postedJob(jobs, "owner-1")
	svc := newJobSvc(jobs)

	updated, err := svc.Update(context.Background(), job.ID,
		Actor{UserID: "owner-1", Role: models.RoleRecruiter},
		JobUpdateInput{
			Title:  strPtr("Senior Backend Engineer"),
			Status: statusPtr(models.JobPaused),
			RequiredSkills: []models.SkillRequirement{
				{Skill: "Go", Weight: 10},
				{Skill: "Kubernetes", Weight: 4},
			},
		})
	require.NoError(t, err)
	assert.Equal(t, "Senior Backend Engineer", updated.Title)
	assert.Equal(t, models.JobPaused, updated.Status)
	assert.Len(t, updated.RequiredSkills, 2)

	// Ownership never changes on update.
	assert.Equal(t, "owner-1", updated.PostedBy)
}

func TestJobUpdateRejectsNonOwner(t *testing.T) {
	jobs := newFakeJobRepo()
	job := postedJob(jobs, "owner-1")
	svc := newJobSvc(jobs)
	ctx := context.Background()

	_, err := svc.Update(ctx, job.ID,
		Actor{UserID: "someone-else", Role: models.RoleRecruiter},
		JobUpdateInput{Title: strPtr("Hijacked")})
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	_, err = svc.Update(ctx, job.ID,
		Actor{UserID: "someone-else", Role: models.RoleHR},
		JobUpdateInput{Title: strPtr("Hijacked")})
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	stored, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend Engineer", stored.Title)
}

func TestJobUpdateAdminBypassesOwnership(t *testing.T) {
	jobs := newFakeJobRepo()
	job := postedJob(jobs, "owner-1")
	svc := newJobSvc(jobs)

	updated, err := svc.Update(context.Background(), job.ID,
		Actor{UserID: "admin-1", Role: models.RoleAdmin},
		JobUpdateInput{Status: statusPtr(models.JobClosed)})
	require.NoError(t, err)
	assert.Equal(t, models.JobClosed, updated.Status)
	assert.Equal(t, "owner-1", updated.PostedBy)
}

func TestJobUpdateValidatesInput(t *testing.T) {
	jobs := newFakeJobRepo()
	job := postedJob(jobs, "owner-1")
	svc := newJobSvc(jobs)
	actor := Actor{UserID: "owner-1", Role: models.RoleRecruiter}
	ctx := context.Background()

	_, err := svc.Update(ctx, job.ID, actor, JobUpdateInput{
		RequiredSkills: []models.SkillRequirement{{Skill: "Go", Weight: 99}},
	})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Update(ctx, job.ID, actor, JobUpdateInput{
		Status: statusPtr(models.JobStatus("archived")),
	})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Update(ctx, job.ID, actor, JobUpdateInput{Title: strPtr("")})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	stored, err := jobs.GetByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 10, stored.RequiredSkills[0].Weight)
}

func TestJobDeleteOwnership(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newJobSvc(jobs)
	ctx := context.Background()

	job := postedJob(jobs, "owner-1")
	err := svc.Delete(ctx, job.ID, Actor{UserID: "someone-else", Role: models.RoleHR})
	assert.True(t, utils.IsCode(err, utils.CodeForbidden))

	require.NoError(t, svc.Delete(ctx, job.ID, Actor{UserID: "owner-1", Role: models.RoleRecruiter}))
	_, err = jobs.GetByID(ctx, job.ID)
	assert.ErrorIs(t, err, utils.ErrNotFound)

	other := postedJob(jobs, "owner-2")
	require.NoError(t, svc.Delete(ctx, other.ID, Actor{UserID: "admin-1", Role: models.RoleAdmin}))
}

func TestJobCreateValidatesStatus(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newJobSvc(jobs)

	_, err := svc.Create(context.Background(), &models.Job{
		Title:       "Backend Engineer",
		Description: "Build services in Go",
		Status:      models.JobStatus("archived"),
	})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}
