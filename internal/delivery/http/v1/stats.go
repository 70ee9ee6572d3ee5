package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "SprintSync API"
	serviceVersion = "1.0.0"
)

func (h *handlerImpl) HandleUserSummary(c *gin.Context) {
	summary, err := h.stats.UserSummary(c, currentUser(c).ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to compute user summary")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, summary)
}

func (h *handlerImpl) HandleTopUsers(c *gin.Context) {
	stats, err := h.stats.TopUsers(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to compute top users")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, stats)
}

func (h *handlerImpl) HandleRecentActivity(c *gin.Context) {
	activity, err := h.stats.RecentActivity(c, currentUser(c).ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to select recent activity")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, activity)
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}
