package response

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/project-tracker-api/pkg/apperror"
)

const internalMessage = "Internal Server Error"

type APIResponse[T any] struct {
	Status    int         `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	RequestID string      `json:"request_id"`
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Error     interface{} `json:"error,omitempty"`
}

// Success writes a success envelope and returns it.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
	}
	ctx.JSON(status, resp)
	return resp
}

// Error writes an error envelope, aborts the chain and returns it.
func Error[T any](ctx *gin.Context, status int, message string, err interface{}) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := APIResponse[T]{
		Status:    status,
		Timestamp: time.Now(),
		RequestID: ctx.GetString("request_id"),
		Success:   false,
		Message:   message,
		Error:     err,
	}
	ctx.AbortWithStatusJSON(status, resp)
	return resp
}

// Fail maps a service error to its HTTP status. Internal causes are logged
// and replaced with a generic message.
func Fail(ctx *gin.Context, logger logrus.FieldLogger, err error) {
	kind := apperror.KindOf(err)
	if kind == apperror.KindInternal {
		if logger != nil {
			logger.WithError(err).
				WithField("request_id", ctx.GetString("request_id")).
				WithField("path", ctx.FullPath()).
				Error("request failed")
		}
		Error[any](ctx, http.StatusInternalServerError, internalMessage, nil)
		return
	}
	message := kind.String()
	var ae *apperror.Error
	if errors.As(err, &ae) {
		message = ae.Message
	}
	Error[any](ctx, kind.HTTPStatus(), message, kind.String())
}

// InternalError is the JSON handler used by the panic recovery middleware.
func InternalError(ctx *gin.Context, _ any) {
	Error[any](ctx, http.StatusInternalServerError, internalMessage, nil)
}
