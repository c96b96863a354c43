package notifications

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
)

// StatusError is implemented by errors that carry an HTTP status from an
// upstream response.
type StatusError interface {
	error
	HTTPStatus() int
	APIMessage() string
}

var statusMessages = map[int]string{
	http.StatusBadRequest:          "Invalid request. Please check your input and try again.",
	http.StatusUnauthorized:        "You are not authorized to perform this action.",
	http.StatusForbidden:           "Access denied. You do not have the required permission.",
	http.StatusNotFound:            "The requested resource was not found.",
	http.StatusConflict:            "A conflict occurred. The resource may have changed.",
	http.StatusUnprocessableEntity: "Invalid data provided. Please check your input.",
	http.StatusTooManyRequests:     "Too many requests. Please wait and try again.",
	http.StatusInternalServerError: "Internal server error. Please try again later.",
	http.StatusBadGateway:          "Service temporarily unavailable. Please try again.",
	http.StatusServiceUnavailable:  "Service unavailable. Please try again later.",
	http.StatusGatewayTimeout:      "The request timed out. Please try again.",
}

const unexpectedErrorMessage = "An unexpected error occurred"

// ErrorHandler turns errors into user-facing messages and reports them to a sink.
type ErrorHandler struct {
	sink Sink
}

func NewErrorHandler(sink Sink) *ErrorHandler {
	return &ErrorHandler{sink: sink}
}

// Handle reports err, prefixed with context when given, and returns the
// message it reported.
func (h *ErrorHandler) Handle(err error, context string) string {
	msg := Describe(err)
	if context != "" {
		msg = context + ": " + msg
	}
	if h.sink != nil {
		h.sink.ShowError(msg)
	}
	return msg
}

// Describe maps err to a message without reporting it.
func Describe(err error) string {
	if err == nil {
		return unexpectedErrorMessage
	}

	var se StatusError
	if errors.As(err, &se) {
		return describeStatus(se.HTTPStatus(), se.APIMessage())
	}

	if isNetworkError(err) {
		return "Network error: " + err.Error()
	}

	return err.Error()
}

func describeStatus(status int, apiMessage string) string {
	msg, ok := statusMessages[status]
	if !ok {
		msg = fmt.Sprintf("An error occurred: %d %s", status, http.StatusText(status))
	}
	if apiMessage != "" {
		msg += " (" + apiMessage + ")"
	}
	return msg
}

func isNetworkError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
