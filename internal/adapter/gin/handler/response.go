package handler

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"

	pkgerrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/logger"
)

// Client-facing messages shared by several handlers.
const (
	MsgValidationError = "Validation error"
	MsgInternalError   = "Internal server error"
	MsgInvalidBody     = "Invalid request body"
	MsgInvalidID       = "User ID must be a valid number"
)

// Response is the envelope every endpoint answers with.
type Response struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	Data    any                    `json:"data,omitempty"`
	Token   string                 `json:"token,omitempty"`
	Errors  []pkgerrors.FieldError `json:"errors,omitempty"`
}

func ok(c *gin.Context, status int, message string, data any) {
	c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func fail(c *gin.Context, status int, message string) {
	c.JSON(status, Response{Success: false, Message: message})
}

// bindJSON decodes the body into obj and runs its binding rules.
// An empty body is validated as an empty object.
// It writes the error response itself and reports whether the handler may continue.
func bindJSON(c *gin.Context, log *zap.Logger, obj any) bool {
	err := c.ShouldBindJSON(obj)
	if errors.Is(err, io.EOF) {
		err = binding.Validator.ValidateStruct(obj)
	}
	if err == nil {
		return true
	}

	converted := pkgerrors.FromValidator(err)
	var ve *pkgerrors.ValidationError
	if errors.As(converted, &ve) {
		logger.WithContext(c.Request.Context(), log).Debug("request validation failed", zap.Error(err))
		c.JSON(http.StatusUnprocessableEntity, Response{Success: false, Message: MsgValidationError, Errors: ve.Fields})
		return false
	}

	logger.WithContext(c.Request.Context(), log).Warn("invalid request body", zap.Error(err))
	fail(c, http.StatusBadRequest, MsgInvalidBody)
	return false
}

// parseID reads the :id path parameter. Non-numeric or non-positive ids are rejected with 400.
func parseID(c *gin.Context, log *zap.Logger) (int64, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		logger.WithContext(c.Request.Context(), log).Warn("invalid user id", zap.String("id", raw))
		fail(c, http.StatusBadRequest, MsgInvalidID)
		return 0, false
	}
	return id, true
}

// handleError converts use case errors to HTTP responses.
// Details of 500s are logged and never sent to the client.
func handleError(c *gin.Context, log *zap.Logger, err error) {
	status := pkgerrors.StatusOf(err)

	var ve *pkgerrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(status, Response{Success: false, Message: MsgValidationError, Errors: ve.Fields})
		return
	}

	if status >= http.StatusInternalServerError {
		logger.WithContext(c.Request.Context(), log).Error("request failed",
			zap.String("path", c.FullPath()), zap.Error(err))
		fail(c, http.StatusInternalServerError, MsgInternalError)
		return
	}

	fail(c, status, err.Error())
}
