package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	ierr "github.com/segal-ziv/smartbill/internal/errors"
	"github.com/segal-ziv/smartbill/internal/queue"
)

// JobsHandler exposes the finished-job history of the in-process queue
// workers. Only available when workers run in the same process.
type JobsHandler struct {
	workers map[queue.Name]*queue.Worker
}

func NewJobsHandler(workers map[queue.Name]*queue.Worker) *JobsHandler {
	return &JobsHandler{workers: workers}
}

func (h *JobsHandler) History(c *gin.Context) {
	name := queue.Name(c.Param("queue"))
	w, ok := h.workers[name]
	if !ok {
		c.Error(ierr.NewError("unknown queue").
			WithReportableDetails(map[string]any{"queue": name}).
			Mark(ierr.ErrNotFound))
		return
	}

	history := w.History()
	c.JSON(http.StatusOK, gin.H{
		"completed": history.Completed(),
		"failed":    history.Failed(),
	})
}
