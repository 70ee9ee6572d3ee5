package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

func (h *handlerImpl) HandleGetUsers(c *gin.Context) {
	users, err := h.users.ListUsers(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list users")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, users)
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	FullName string `json:"full_name" binding:"required,notblank,max=100"`
	IsAdmin  bool   `json:"is_admin"`
}

func (h *handlerImpl) HandleCreateUser(c *gin.Context) {
	var req createUserRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	user, err := h.users.CreateUser(c, services.CreateUserParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		IsAdmin:  req.IsAdmin,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to create user")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusCreated, user)
}

func (h *handlerImpl) HandleGetUser(c *gin.Context) {
	user, err := h.users.GetUserByID(c, c.Param("id"))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to get user")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *handlerImpl) HandleUpdateUser(c *gin.Context) {
	var patch models.UserPatch
	err := c.ShouldBindJSON(&patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}
	if msg := validateUserPatch(patch); msg != "" {
		abort(c, newUnprocessableError(msg))
		return
	}

	user, err := h.users.UpdateUser(c, c.Param("id"), patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update user")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *handlerImpl) HandleDeleteUser(c *gin.Context) {
	userID := c.Param("id")
	if userID == currentUser(c).ID {
		abort(c, newBadRequestError("cannot delete yourself"))
		return
	}

	err := h.users.DeleteUser(c, userID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to delete user")
		abort(c, serviceError(err))
		return
	}

	c.Status(http.StatusNoContent)
}
