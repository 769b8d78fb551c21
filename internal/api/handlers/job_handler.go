package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirelens/hirelens/internal/models"
	mongorepo "github.com/hirelens/hirelens/internal/repositories/mongo"
	"github.com/hirelens/hirelens/internal/services"
	"github.com/hirelens/hirelens/internal/utils"
)

type JobHandler struct {
	jobs services.JobService
}

func NewJobHandler(jobs services.JobService) *JobHandler {
	return &JobHandler{jobs: jobs}
}

func (h *JobHandler) Create(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var job models.Job
	if err := c.ShouldBindJSON(&job); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobHandler.Create", "invalid request body", err))
		return
	}
	job.PostedBy = userID

	created, err := h.jobs.Create(c.Request.Context(), &job)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *JobHandler) List(c *gin.Context) {
	page, limit := pagination(c)

	jobs, total, err := h.jobs.List(c.Request.Context(), mongorepo.JobFilter{
		Search:          c.Query("search"),
		Department:      c.Query("department"),
		EmploymentType:  c.Query("employment_type"),
		ExperienceLevel: c.Query("experience_level"),
		Status:          c.Query("status"),
		Page:            page,
		Limit:           limit,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, ListResponse{Data: jobs, Total: total, Page: page, Limit: limit})
}

func (h *JobHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	job, err := h.jobs.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Update(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var in services.JobUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		writeError(c, utils.E(utils.CodeInvalidArgument, "JobHandler.Update", "invalid request body", err))
		return
	}

	job, err := h.jobs.Update(c.Request.Context(), id, actor, in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, job)
}

func (h *JobHandler) Delete(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.jobs.Delete(c.Request.Context(), id, actor); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "job deleted"})
}

func (h *JobHandler) Candidates(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	candidates, err := h.jobs.RankedCandidates(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": candidates, "total": len(candidates)})
}
