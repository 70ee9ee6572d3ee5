package v1

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

type suggestDescriptionRequest struct {
	Title   string  `json:"title" binding:"required,min=1,max=200"`
	Context *string `json:"context,omitempty" binding:"omitempty,max=500"`
}

func (h *handlerImpl) HandleSuggestDescription(c *gin.Context) {
	var req suggestDescriptionRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, h.ai.SuggestDescription(c, req.Title, req.Context))
}

// HandleDailyPlan plans over the caller's open tasks, newest first.
func (h *handlerImpl) HandleDailyPlan(c *gin.Context) {
	user := currentUser(c)

	tasks, err := h.tasks.ListTasks(c, currentActor(c), services.ListTasksParams{})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks for daily plan")
		abort(c, serviceError(err))
		return
	}
	tasks = slices.DeleteFunc(tasks, func(t *models.Task) bool {
		return t.Status == models.StatusDone
	})

	c.JSON(http.StatusOK, h.ai.DailyPlan(c, user, tasks))
}
