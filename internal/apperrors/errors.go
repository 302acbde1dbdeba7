package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeInputValidation = "INPUT_VALIDATION"
	CodeUnsupportedSite = "UNSUPPORTED_SITE"
	CodeScrape          = "SCRAPE_FAILED"
	CodePersistence     = "PERSISTENCE_FAILED"
	CodeNotFound        = "NOT_FOUND"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeRateLimited     = "RATE_LIMITED"
)

// UnsupportedSiteMessage is shown to the user verbatim
const UnsupportedSiteMessage = "Unsupported website. Currently supporting Steam, Comfy and Rozetka only."

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func InputValidation(message string, err error) *AppError {
	return New(CodeInputValidation, message, http.StatusBadRequest, err)
}

func UnsupportedSite() *AppError {
	return New(CodeUnsupportedSite, UnsupportedSiteMessage, http.StatusBadRequest, nil)
}

// Scrape reports a page that could not be fetched or loaded. The message names the platform,
// the cause keeps the underlying network or parse failure.
func Scrape(platform string, err error) *AppError {
	return New(CodeScrape, fmt.Sprintf("Failed to parse %s page", platform), http.StatusBadGateway, err)
}

func Persistence(message string, err error) *AppError {
	return New(CodePersistence, message, http.StatusInternalServerError, err)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, nil)
}

func Unauthorized(message string, err error) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized, err)
}

func Forbidden(message string) *AppError {
	return New(CodeForbidden, message, http.StatusForbidden, nil)
}

func RateLimited() *AppError {
	return New(CodeRateLimited, "Rate limit exceeded. Please try again later.", http.StatusTooManyRequests, nil)
}

// Is reports whether err carries an AppError with the given code
func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusOf returns the HTTP status for err, 500 for anything that is not an AppError
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Status != 0 {
		return appErr.Status
	}
	return http.StatusInternalServerError
}

// Details returns the message of the wrapped cause, if any
func Details(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Err != nil {
		return appErr.Err.Error()
	}
	return ""
}
