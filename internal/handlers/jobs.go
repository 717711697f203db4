package handlers

import (
	"net/http"

	"builderpulse/internal/auth"
	"builderpulse/internal/worker"

	"github.com/gin-gonic/gin"
)

// JobsHandler exposes manual triggers for the background pipeline and
// worker status. Triggers are protected by bearer auth.
type JobsHandler struct {
	workerService *worker.WorkerService
	verifier      *auth.JobVerifier
}

// NewJobsHandler creates a new jobs handler
func NewJobsHandler(workerService *worker.WorkerService) *JobsHandler {
	return &JobsHandler{
		workerService: workerService,
		verifier:      auth.NewJobVerifier(),
	}
}

// RequireJobAuth is middleware guarding job trigger endpoints.
func (h *JobsHandler) RequireJobAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		subject, err := h.verifier.Verify(c.GetHeader("Authorization"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Unauthorized",
			})
			return
		}
		c.Set("job_subject", subject)
		c.Next()
	}
}

// TriggerCollection handles POST /api/jobs/collect
func (h *JobsHandler) TriggerCollection(c *gin.Context) {
	go h.workerService.RunCollection()
	c.JSON(http.StatusAccepted, gin.H{
		"status": "collection started",
	})
}

// TriggerScoring handles POST /api/jobs/score
func (h *JobsHandler) TriggerScoring(c *gin.Context) {
	go h.workerService.RunScoring()
	c.JSON(http.StatusAccepted, gin.H{
		"status": "scoring started",
	})
}

// TriggerClustering handles POST /api/jobs/cluster
func (h *JobsHandler) TriggerClustering(c *gin.Context) {
	go h.workerService.RunClustering()
	c.JSON(http.StatusAccepted, gin.H{
		"status": "clustering started",
	})
}

// WorkerStatus handles GET /api/worker/status
func (h *JobsHandler) WorkerStatus(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"worker_status": h.workerService.GetStatus(),
	})
}

// HealthCheck handles GET /health
func (h *JobsHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "builderpulse",
	})
}
