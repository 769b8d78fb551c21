package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hirelens/hirelens/internal/services"
)

type MatchHandler struct {
	svc services.MatchService
}

func NewMatchHandler(svc services.MatchService) *MatchHandler {
	return &MatchHandler{svc: svc}
}

// Single scores one resume against one job.
// POST /api/resumes/:id/match/:job_id
func (h *MatchHandler) Single(c *gin.Context) {
	resumeID, ok := pathID(c, "id")
	if !ok {
		return
	}
	jobID, ok := pathID(c, "job_id")
	if !ok {
		return
	}

	out, err := h.svc.MatchResumeToJob(c.Request.Context(), resumeID, jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// Batch matches the whole active resume corpus against one job.
// POST /api/jobs/:id/match-all
func (h *MatchHandler) Batch(c *gin.Context) {
	jobID, ok := pathID(c, "id")
	if !ok {
		return
	}

	res, err := h.svc.MatchAllForJob(c.Request.Context(), jobID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
