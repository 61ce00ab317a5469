package response

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Response is the unified API response format.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Kind classifies an AppError independently of its transport mapping.
type Kind string

const (
	KindValidation     Kind = "validation"
	KindConflict       Kind = "conflict"
	KindAuthentication Kind = "authentication"
	KindRateLimited    Kind = "rate_limited"
	KindInternal       Kind = "internal"
)

// AppError represents a structured application error with HTTP status and error code.
type AppError struct {
	Kind       Kind
	HTTPStatus int    // HTTP status code (e.g. 400, 401, 500)
	Code       int    // Application-level error code
	Message    string // Human-readable error message
	RetryAfter int    // Seconds, only set for KindRateLimited
}

func (e *AppError) Error() string {
	return e.Message
}

// Pre-defined error constructors

func NewValidation(msg string) *AppError {
	return &AppError{Kind: KindValidation, HTTPStatus: http.StatusBadRequest, Code: 400, Message: msg}
}

func NewUnauthorized(msg string) *AppError {
	return &AppError{Kind: KindAuthentication, HTTPStatus: http.StatusUnauthorized, Code: 401, Message: msg}
}

func NewConflict(msg string) *AppError {
	return &AppError{Kind: KindConflict, HTTPStatus: http.StatusConflict, Code: 409, Message: msg}
}

func NewTooManyRequests(retryAfterSeconds int) *AppError {
	return &AppError{
		Kind:       KindRateLimited,
		HTTPStatus: http.StatusTooManyRequests,
		Code:       429,
		Message:    "too many requests, please try again later",
		RetryAfter: retryAfterSeconds,
	}
}

func NewServerError(msg string) *AppError {
	return &AppError{Kind: KindInternal, HTTPStatus: http.StatusInternalServerError, Code: 500, Message: msg}
}

// IsKind reports whether err wraps an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// --- Gin response helpers ---

// Success sends a 200 OK response with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "ok",
		Data:    data,
	})
}

// Created sends a 201 Created response with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. If err is an *AppError, its code and status
// are used; otherwise a generic 500 internal server error is returned without
// leaking the underlying cause.
func Error(c *gin.Context, err error) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		if appErr.Kind == KindRateLimited && appErr.RetryAfter > 0 {
			c.Header("Retry-After", strconv.Itoa(appErr.RetryAfter))
		}
		c.JSON(appErr.HTTPStatus, Response{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
		return
	}
	c.JSON(http.StatusInternalServerError, Response{
		Code:    500,
		Message: "internal server error",
	})
}

// Abort is Error followed by c.Abort, for use in middleware.
func Abort(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}
