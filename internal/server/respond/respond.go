// Package respond writes the JSON envelope shared by every endpoint.
package respond

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"neighborly/internal/apperror"
)

// Response is the envelope around every payload
type Response struct {
	Success bool       `json:"success"`
	Data    any        `json:"data,omitempty"`
	Error   *ErrorData `json:"error,omitempty"`
}

// ErrorData describes a failed request
type ErrorData struct {
	Code    string              `json:"code"`
	Message string              `json:"message"`
	Fields  []map[string]string `json:"fields,omitempty"`
}

// JSON writes data wrapped in a success envelope
func JSON(w http.ResponseWriter, status int, data any) {
	write(w, status, Response{Success: true, Data: data})
}

// OK writes a 200 success envelope
func OK(w http.ResponseWriter, data any) {
	JSON(w, http.StatusOK, data)
}

// Created writes a 201 success envelope
func Created(w http.ResponseWriter, data any) {
	JSON(w, http.StatusCreated, data)
}

// Fail writes an error envelope
func Fail(w http.ResponseWriter, status int, code, message string) {
	write(w, status, Response{Error: &ErrorData{Code: code, Message: message}})
}

// Unauthorized writes a 401 error envelope
func Unauthorized(w http.ResponseWriter, message string) {
	Fail(w, http.StatusUnauthorized, "UNAUTHORIZED", message)
}

// Error maps err to a status code and writes it. Internal errors are logged
// and answered with a generic message.
func Error(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	appErr, ok := apperror.As(err)
	if !ok {
		appErr = apperror.Internal(err)
	}

	status := Status(appErr)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}

	write(w, status, Response{Error: &ErrorData{
		Code:    appErr.Code,
		Message: appErr.Message,
		Fields:  appErr.Fields,
	}})
}

// Status returns the HTTP status for an application error
func Status(err *apperror.Error) int {
	switch err.Kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindConflict:
		if err.Code == apperror.CodeNotJoined {
			return http.StatusBadRequest
		}
		return http.StatusConflict
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAuthorization:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, payload Response) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Failed to marshal response"}}`))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
