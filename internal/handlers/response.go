package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/smarttransit/fleet-booking-backend/internal/middleware"
	"github.com/smarttransit/fleet-booking-backend/internal/models"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

var kindStatus = map[models.ErrorKind]int{
	models.KindNotFound:              http.StatusNotFound,
	models.KindAccessDenied:          http.StatusForbidden,
	models.KindInvalidTransition:     http.StatusBadRequest,
	models.KindValidationFailed:      http.StatusBadRequest,
	models.KindResourceConflict:      http.StatusConflict,
	models.KindDependencyUnavailable: http.StatusServiceUnavailable,
}

// respondError writes err as an ErrorResponse. Errors that are not domain
// errors are logged with fields and reported as a generic 500.
func respondError(c *gin.Context, logger *logrus.Logger, err error, operation string, fields logrus.Fields) {
	var domainErr *models.Error
	if errors.As(err, &domainErr) {
		status, ok := kindStatus[domainErr.Kind]
		if ok {
			c.JSON(status, ErrorResponse{
				Error:   string(domainErr.Kind),
				Message: domainErr.Message,
				Field:   domainErr.Field,
			})
			return
		}
	}

	entry := logger.WithFields(fields).WithField("operation", operation)
	entry.WithError(err).Error("Request failed")
	c.JSON(http.StatusInternalServerError, ErrorResponse{
		Error:   string(models.KindInternal),
		Message: "An unexpected error occurred",
	})
}

// bindJSON decodes the request body into req. Decoding failures raised by
// model types keep their kind and field; anything else is validation_failed.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var domainErr *models.Error
		if errors.As(err, &domainErr) {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error:   string(domainErr.Kind),
				Message: domainErr.Message,
				Field:   domainErr.Field,
			})
			return false
		}
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   string(models.KindValidationFailed),
			Message: err.Error(),
		})
		return false
	}
	return true
}

// currentActor returns the authenticated actor or writes a 401
func currentActor(c *gin.Context) (models.Actor, bool) {
	userCtx, exists := middleware.GetUserContext(c)
	if !exists {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "Unauthorized"})
		return models.Actor{}, false
	}
	return userCtx.Actor(), true
}

// parseDateParam parses a YYYY-MM-DD or RFC3339 query parameter
func parseDateParam(c *gin.Context, name string) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return &parsed, nil
		}
	}
	return nil, models.ValidationFailed(name, fmt.Sprintf("invalid date %q, use YYYY-MM-DD", raw))
}

// parsePeriod reads the optional from/to query range. A date-only "to"
// covers the whole day.
func parsePeriod(c *gin.Context) (*models.Period, error) {
	from, err := parseDateParam(c, "from")
	if err != nil {
		return nil, err
	}
	to, err := parseDateParam(c, "to")
	if err != nil {
		return nil, err
	}
	if to != nil && len(c.Query("to")) == len("2006-01-02") {
		endOfDay := to.Add(24*time.Hour - time.Nanosecond)
		to = &endOfDay
	}
	if from == nil && to == nil {
		return nil, nil
	}
	if from != nil && to != nil && to.Before(*from) {
		return nil, models.ValidationFailed("to", "must not be before from")
	}
	return &models.Period{From: from, To: to}, nil
}
