package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KaramelBytes/uvmed-cli/internal/columns"
	"github.com/KaramelBytes/uvmed-cli/internal/dataset"
	"github.com/KaramelBytes/uvmed-cli/internal/med"
	"github.com/KaramelBytes/uvmed-cli/internal/pipeline"
	"github.com/KaramelBytes/uvmed-cli/internal/table"
)

// HTTPError captures the metadata required to serialize an error response.
type HTTPError struct {
	Status  int
	Code    string
	Message string
	// Candidates lists the column choices for an ambiguous_column error.
	Candidates []string
	Err        error
}

func (e *HTTPError) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Message
}

func (e *HTTPError) Unwrap() error { return e.Err }

// NewHTTPError is a helper to build an HTTPError instance.
func NewHTTPError(status int, code, message string, err error) *HTTPError {
	return &HTTPError{Status: status, Code: code, Message: message, Err: err}
}

// classify maps processing errors to responses.
func classify(err error) *HTTPError {
	if err == nil {
		return nil
	}
	var (
		httpErr     *HTTPError
		readErr     *table.FileReadError
		missing     *columns.MissingColumnError
		ambiguous   *columns.AmbiguousColumnError
		nonNumeric  *dataset.NonNumericMeasurementError
		noRows      *dataset.NoObservationsError
		emptyRange  *dataset.EmptyRangeError
		unknownSkin *med.UnknownSkinTypeError
		setting     *pipeline.InvalidSettingError
	)
	switch {
	case errors.As(err, &httpErr):
		return httpErr
	case errors.As(err, &ambiguous):
		e := NewHTTPError(http.StatusConflict, "ambiguous_column", err.Error(), err)
		e.Candidates = ambiguous.Names()
		return e
	case errors.As(err, &missing):
		return NewHTTPError(http.StatusUnprocessableEntity, "missing_column", err.Error(), err)
	case errors.As(err, &nonNumeric):
		return NewHTTPError(http.StatusUnprocessableEntity, "non_numeric_measurement", err.Error(), err)
	case errors.As(err, &noRows):
		return NewHTTPError(http.StatusUnprocessableEntity, "no_observations", err.Error(), err)
	case errors.As(err, &emptyRange):
		return NewHTTPError(http.StatusUnprocessableEntity, "empty_range", err.Error(), err)
	case errors.As(err, &unknownSkin):
		return NewHTTPError(http.StatusBadRequest, "unknown_skin_type", err.Error(), err)
	case errors.As(err, &setting):
		return NewHTTPError(http.StatusBadRequest, "invalid_request", err.Error(), err)
	case errors.As(err, &readErr):
		return NewHTTPError(http.StatusBadRequest, "unreadable_file", err.Error(), err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return NewHTTPError(http.StatusRequestTimeout, "cancelled", "request cancelled", err)
	}
	return NewHTTPError(http.StatusInternalServerError, "internal_error", "something went wrong", err)
}

func abortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(classify(err))
	c.Abort()
}

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := classify(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		log := requestLogger(c, logger)
		if httpErr.Status >= http.StatusInternalServerError {
			log.Error("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		} else {
			log.Warn("request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)
		}

		body := gin.H{"code": httpErr.Code, "message": message}
		if len(httpErr.Candidates) > 0 {
			body["candidates"] = httpErr.Candidates
		}
		c.JSON(httpErr.Status, gin.H{"error": body})
	}
}
