package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/mmdatafocus/sitebooks_backend/config"
	"github.com/mmdatafocus/sitebooks_backend/models"
	"github.com/mmdatafocus/sitebooks_backend/utils"
	"go.opentelemetry.io/otel/trace"
)

const moduleName = "handlers"

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var verr *utils.ValidationError
	var verrs validator.ValidationErrors
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, utils.ErrorRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrPayrollLocked):
		return http.StatusConflict
	case errors.As(err, &verr), errors.As(err, &verrs),
		errors.As(err, &syntaxErr), errors.As(err, &typeErr),
		errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func respondError(c *gin.Context, funcName string, data any, err error) {
	status := statusFor(err)
	body := gin.H{"error": err.Error()}

	var verr *utils.ValidationError
	var verrs validator.ValidationErrors
	if errors.As(err, &verr) {
		body["error"] = "validation failed"
		body["fields"] = verr.Fields
	} else if errors.As(err, &verrs) {
		body["error"] = "validation failed"
		body["fields"] = utils.ProcessValidationErrors(verrs)
	}

	if status == http.StatusInternalServerError {
		cid, _ := utils.GetCorrelationIdFromContext(c.Request.Context())
		config.LogError(config.GetLogger(), moduleName, funcName, cid, data, err)
		trace.SpanFromContext(c.Request.Context()).RecordError(err)
		body["error"] = "internal server error"
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, body)
}

// paramId parses a positive integer path parameter; a bad value answers 400 and returns false.
func paramId(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func bindJSON(c *gin.Context, funcName string, input any) bool {
	if err := c.ShouldBindJSON(input); err != nil {
		// custom decoders (dates, decimals) fail with plain errors
		if statusFor(err) == http.StatusInternalServerError {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return false
		}
		respondError(c, funcName, nil, err)
		return false
	}
	return true
}

func optionalQuery(c *gin.Context, key string) *string {
	if v, ok := c.GetQuery(key); ok && v != "" {
		return &v
	}
	return nil
}
