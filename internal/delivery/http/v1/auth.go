package v1

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

const tokenTypeBearer = "bearer"

type tokenResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	User        *models.User `json:"user,omitempty"`
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=6,max=100"`
	FullName string `json:"full_name" binding:"required,notblank,max=100"`
}

// HandleRegister creates a regular user. An is_admin field in the body is
// ignored; admins are created through /users.
func (h *handlerImpl) HandleRegister(c *gin.Context) {
	var req registerRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}
	h.logger.Info().
		Str("email", req.Email).
		Msg("register request")

	user, err := h.auth.Register(c, services.RegisterParams{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to register user")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusCreated, user)
}

// loginRequest follows the OAuth2 password form: the email goes in username.
type loginRequest struct {
	Username string `form:"username" binding:"required,max=255"`
	Password string `form:"password" binding:"required,max=255"`
}

func (h *handlerImpl) HandleLogin(c *gin.Context) {
	var req loginRequest
	err := c.ShouldBind(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind request body")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	result, err := h.auth.Login(c, services.LoginParams{
		Email:    req.Username,
		Password: req.Password,
	})
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to login")
		abort(c, serviceError(err))
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   tokenTypeBearer,
		User:        result.User,
	})
}

func (h *handlerImpl) HandleRefresh(c *gin.Context) {
	user := currentUser(c)

	result, err := h.auth.IssueToken(user.ID)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to refresh token")
		abort(c, newStatusTextError(http.StatusInternalServerError))
		return
	}

	c.JSON(http.StatusOK, tokenResponse{
		AccessToken: result.AccessToken,
		TokenType:   tokenTypeBearer,
	})
}

func (h *handlerImpl) HandleGetMe(c *gin.Context) {
	c.JSON(http.StatusOK, currentUser(c))
}

// updateMeRequest leaves out is_admin so users cannot promote themselves.
type updateMeRequest struct {
	Email    models.Field[string] `json:"email,omitzero"`
	FullName models.Field[string] `json:"full_name,omitzero"`
	Password models.Field[string] `json:"password,omitzero"`
}

func (h *handlerImpl) HandleUpdateMe(c *gin.Context) {
	var req updateMeRequest
	err := c.ShouldBindJSON(&req)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to bind json")
		abort(c, newUnprocessableError(bindErrorMessage(err)))
		return
	}

	patch := models.UserPatch{
		Email:    req.Email,
		FullName: req.FullName,
		Password: req.Password,
	}
	if msg := validateUserPatch(patch); msg != "" {
		abort(c, newUnprocessableError(msg))
		return
	}

	user, err := h.users.UpdateUser(c, currentUser(c).ID, patch)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to update current user")
		abort(c, serviceError(err))
		return
	}

	h.logger.Info().
		Str("user_id", user.ID).
		Msg("updated profile")
	c.JSON(http.StatusOK, user)
}
