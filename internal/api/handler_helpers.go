package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/brianmay/penguin-nurse/internal"
	"github.com/brianmay/penguin-nurse/internal/auth"
	"github.com/brianmay/penguin-nurse/internal/response"
	"github.com/brianmay/penguin-nurse/internal/service"
	"github.com/gin-gonic/gin"
)

// statusFor maps service and storage errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, internal.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, internal.ErrUnauthorized), errors.Is(err, auth.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, internal.ErrUserMismatch), errors.Is(err, internal.ErrNotAdmin), errors.Is(err, internal.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, internal.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, internal.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// HandleError logs err and writes the matching error response. Server
// errors only expose msg.
func HandleError(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	status := statusFor(err)
	var resp response.APIResponse
	var verrs service.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		logger.Infof("[request_id=%s] %s: %v", requestID, msg, err)
		resp = response.Invalid(msg, verrs)
	case status == http.StatusInternalServerError:
		logger.Errorf("[request_id=%s] %s: %v", requestID, msg, err)
		resp = response.InternalError(msg)
	case status == http.StatusNotFound:
		logger.Infof("[request_id=%s] %s: %v", requestID, msg, err)
		resp = response.NotFound(msg + ": " + err.Error())
	default:
		logger.Warnf("[request_id=%s] %s: %v", requestID, msg, err)
		resp = response.NewAppError(status, err.Error())
	}
	c.AbortWithStatusJSON(status, resp)
}

// HandleBadRequest is for requests that could not be parsed at all.
func HandleBadRequest(c *gin.Context, logger internal.Logger, err error, msg string) {
	requestID := c.GetString("request_id")
	logger.Infof("[request_id=%s] %s: %v", requestID, msg, err)
	c.AbortWithStatusJSON(http.StatusBadRequest, response.BadRequest(msg+": "+err.Error()))
}

func HandleSuccess(c *gin.Context, logger internal.Logger, data interface{}, meta map[string]any) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Success", requestID)
	c.JSON(http.StatusOK, response.Success(data, meta))
}

func HandleCreated(c *gin.Context, logger internal.Logger, data interface{}) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Created", requestID)
	c.JSON(http.StatusCreated, response.Success(data, nil))
}

func HandleDeleted(c *gin.Context, logger internal.Logger) {
	requestID := c.GetString("request_id")
	logger.Debugf("[request_id=%s] Deleted", requestID)
	c.Status(http.StatusNoContent)
}

func pathID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.New("invalid " + name)
	}
	return id, nil
}

// pathIDs parses the named path parameters, writing a 400 and returning
// false when any is malformed.
func pathIDs(c *gin.Context, app App, names ...string) ([]int64, bool) {
	ids := make([]int64, len(names))
	for i, name := range names {
		id, err := pathID(c, name)
		if err != nil {
			HandleBadRequest(c, app.Logger(), err, "Invalid path")
			return nil, false
		}
		ids[i] = id
	}
	return ids, true
}

func bindJSON(c *gin.Context, app App, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		HandleBadRequest(c, app.Logger(), err, "Invalid JSON")
		return false
	}
	return true
}
