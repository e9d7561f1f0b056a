package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

var (
	ErrStorage            = fmt.Errorf("storage failure")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity rules")
	ErrInvalidRequest     = fmt.Errorf("invalid request")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrUnauthorized       = fmt.Errorf("unauthorized")
	ErrEmptyMessage       = fmt.Errorf("message must carry a text or an image")
	ErrInvalidImage       = fmt.Errorf("image must be a base64 data URI of an image")
	ErrUpload             = fmt.Errorf("image upload failed")
	ErrConnectionClosed   = fmt.Errorf("connection closed")
	ErrBackpressure       = fmt.Errorf("connection buffer full")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

// MapToHTTPStatus translates a domain error into the status code sent back by the REST layer.
// Unknown errors, storage failures included, end up as 500.
func MapToHTTPStatus(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case stderrors.Is(err, ErrInvalidRequest),
		stderrors.Is(err, ErrInvalidPassword),
		stderrors.Is(err, ErrEmptyMessage),
		stderrors.Is(err, ErrInvalidImage),
		stderrors.Is(err, ErrUserAlreadyExists):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrInvalidCredentials):
		return http.StatusBadRequest
	case stderrors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case stderrors.Is(err, ErrUserNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text exposed to HTTP clients for err.
// Server side failures never leak their cause.
func PublicMessage(err error) string {
	if MapToHTTPStatus(err) == http.StatusInternalServerError {
		return "Internal Server Error"
	}
	switch {
	case stderrors.Is(err, ErrInvalidCredentials):
		return "Invalid credentials"
	case stderrors.Is(err, ErrUserAlreadyExists):
		return "Email already exists"
	case stderrors.Is(err, ErrUnauthorized):
		return "Unauthorized"
	case stderrors.Is(err, ErrUserNotFound):
		return "User not found"
	}
	return err.Error()
}
