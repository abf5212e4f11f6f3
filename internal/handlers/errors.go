package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sharearide/sharearide-backend/internal/domain"
	"github.com/sirupsen/logrus"
)

// RespondError maps domain errors onto status codes. Anything unrecognised
// is logged and reported as a 500 without its details.
func RespondError(c *gin.Context, log *logrus.Logger, err error) {
	var (
		notFound   domain.NotFoundError
		validation domain.ValidationError
		conflict   domain.ConflictError
	)
	switch {
	case errors.As(err, &notFound):
		c.JSON(404, gin.H{"error": notFound.Error()})
	case errors.As(err, &validation):
		c.JSON(400, gin.H{"error": validation.Error()})
	case errors.As(err, &conflict):
		c.JSON(409, gin.H{"error": conflict.Error()})
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": c.Request.Method,
			"path":   c.FullPath(),
		}).Error("Request failed")
		c.JSON(500, gin.H{"error": "Internal server error"})
	}
}

// paramID reads a positive numeric path parameter, answering 400 otherwise.
func paramID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// queryID reads an optional numeric query parameter. Absent means 0.
func queryID(c *gin.Context, name string) (uint, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		c.JSON(400, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}
