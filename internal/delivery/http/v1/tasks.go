package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

type createTaskRequest struct {
	Title       string  `json:"title" binding:"required,notblank,max=200"`
	Description *string `json:"description,omitempty" binding:"omitempty,max=2000"`
	AssignedTo  *string `json:"assigned_to,omitempty"`
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req createTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	task, err := h.tasks.CreateTask(c, currentActor(c), services.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		AssignedTo:  req.AssignedTo,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusCreated, task)
}

func (h *handlerImpl) HandleGetTasks(c *gin.Context) {
	var params services.ListTasksParams
	if raw := c.Query("status"); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			h.logger.Error().
				Str("status", raw).
				Msg("invalid status filter")
			abort(c, newUnprocessableError(err.Error()))
			return
		}
		params.Status = &status
	}

	tasks, err := h.tasks.ListTasks(c, currentActor(c), params)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleGetAllTasks(c *gin.Context) {
	tasks, err := h.tasks.ListAllTasks(c, currentActor(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list all tasks")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, tasks)
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, err := h.tasks.GetTask(c, currentActor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	var patch models.TaskPatch
	err := c.ShouldBindJSON(&patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}
	if msg := validateTaskPatch(patch); msg != "" {
		abort(c, newUnprocessableError(msg))
		return
	}

	task, err := h.tasks.UpdateTask(c, currentActor(c), c.Param("id"), patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

type setTaskStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *handlerImpl) HandleSetTaskStatus(c *gin.Context) {
	var req setTaskStatusRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	status, err := models.ParseStatus(req.Status)
	if err != nil {
		h.logger.Error().
			Str("status", req.Status).
			Msg("invalid status")
		abort(c, newUnprocessableError(err.Error()))
		return
	}

	task, err := h.tasks.UpdateTaskStatus(c, currentActor(c), c.Param("id"), status)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update task status")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

type addTaskTimeRequest struct {
	Minutes int `json:"minutes" binding:"required,gt=0,lte=1440"`
}

func (h *handlerImpl) HandleAddTaskTime(c *gin.Context) {
	var req addTaskTimeRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	task, err := h.tasks.AddTime(c, currentActor(c), c.Param("id"), req.Minutes)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to add time")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

type assignTaskRequest struct {
	AssignedTo *string `json:"assigned_to"`
}

func (h *handlerImpl) HandleAssignTask(c *gin.Context) {
	var req assignTaskRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	task, err := h.tasks.AssignTask(c, currentActor(c), c.Param("id"), req.AssignedTo)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to assign task")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, task)
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	err := h.tasks.DeleteTask(c, currentActor(c), c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete task")
		abort(c, serviceError(err))
		return
	}

	c.Status(http.StatusNoContent)
}
