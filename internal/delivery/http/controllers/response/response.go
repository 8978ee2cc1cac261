package response

import (
	"errors"
	"net/http"

	"github.com/J0na555/ExitPrep/internal/app_errors"
	"github.com/J0na555/ExitPrep/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	UnauthorizedMessage = "could not validate credentials"
	internalMessage     = "internal error"
)

// Unauthorized writes the single 401 response used for every authentication failure.
func Unauthorized(c *gin.Context) {
	c.Header("WWW-Authenticate", "Bearer")
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": UnauthorizedMessage})
}

func BadRequest(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": msg})
}

// Error maps err to a status by its kind. Unclassified errors are logged and hidden behind a generic 500.
func Error(c *gin.Context, log logger.Log, err error) {
	switch {
	case errors.Is(err, app_errors.ErrValidation):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, app_errors.ErrUnauthorized):
		Unauthorized(c)
	default:
		_ = c.Error(err)
		log.ErrorErr("request failed", err, "method", c.Request.Method, "path", c.FullPath())
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalMessage})
	}
}

// ParamID parses a uuid path parameter, writing a 400 when it is malformed.
func ParamID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		BadRequest(c, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
