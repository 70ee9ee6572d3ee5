package v1

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/sprintsync/internal/models"
	"github.com/adanyl0v/sprintsync/internal/services"
)

var (
	errInvalidRequestBody  = errors.New("invalid request body")
	errNotAuthenticated    = errors.New("could not validate credentials")
	errInactiveUser        = errors.New("user no longer exists")
	errNotEnoughPrivileges = errors.New("not enough privileges")
	errRateLimitExceeded   = errors.New("rate limit exceeded")
)

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func newAPIError(code int, message string) apiError {
	return apiError{
		Code:    code,
		Message: message,
	}
}

func (e apiError) Error() string {
	return e.Message
}

func abort(c *gin.Context, err apiError) {
	if err.Code == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	c.AbortWithStatusJSON(err.Code, gin.H{"detail": err.Message})
}

func newStatusTextError(status int) apiError {
	return newAPIError(status, http.StatusText(status))
}

func newBadRequestError(message string) apiError {
	return newAPIError(http.StatusBadRequest, message)
}

func newUnauthorizedError(message string) apiError {
	return newAPIError(http.StatusUnauthorized, message)
}

func newForbiddenError(message string) apiError {
	return newAPIError(http.StatusForbidden, message)
}

func newNotFoundError(message string) apiError {
	return newAPIError(http.StatusNotFound, message)
}

func newConflictError(message string) apiError {
	return newAPIError(http.StatusConflict, message)
}

func newUnprocessableError(message string) apiError {
	return newAPIError(http.StatusUnprocessableEntity, message)
}

// serviceError maps a service sentinel to its HTTP representation.
// Anything unrecognised becomes a 500 without leaking the cause.
func serviceError(err error) apiError {
	switch {
	case errors.Is(err, services.ErrTaskNotFound):
		return newNotFoundError(services.ErrTaskNotFound.Error())
	case errors.Is(err, services.ErrUserNotFound):
		return newNotFoundError(services.ErrUserNotFound.Error())
	case errors.Is(err, services.ErrUserAlreadyExists):
		return newConflictError(services.ErrUserAlreadyExists.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		return newUnauthorizedError(services.ErrInvalidCredentials.Error())
	case errors.Is(err, services.ErrForbidden):
		return newForbiddenError(err.Error())
	case errors.Is(err, services.ErrCannotDeleteAdmin):
		return newBadRequestError(services.ErrCannotDeleteAdmin.Error())
	case errors.Is(err, services.ErrNothingToUpdate):
		return newBadRequestError(services.ErrNothingToUpdate.Error())
	case errors.Is(err, models.ErrTransitionDenied):
		return newConflictError(err.Error())
	case errors.Is(err, services.ErrInvalidPatch),
		errors.Is(err, services.ErrInvalidMinutes),
		errors.Is(err, models.ErrInvalidStatus):
		return newUnprocessableError(err.Error())
	default:
		return newStatusTextError(http.StatusInternalServerError)
	}
}
