package response

import (
	"net/http"
	"sync/atomic"

	"github.com/gin-gonic/gin"
	"github.com/jengzang/opportunity-map-go/internal/logging"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

var logger atomic.Value // logging.Logger

func init() {
	logger.Store(logging.NewNop())
}

// SetLogger sets the logger that records error causes
func SetLogger(l logging.Logger) {
	if l == nil {
		l = logging.NewNop()
	}
	logger.Store(l.Named("response"))
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response. The cause is logged, never returned to the client.
func Error(c *gin.Context, code int, message string, cause error) {
	if cause != nil {
		_ = c.Error(cause)
		l := logger.Load().(logging.Logger)
		fields := []logging.Field{
			logging.Int("status", code),
			logging.String("path", c.Request.URL.Path),
			logging.Err(cause),
		}
		if code >= http.StatusInternalServerError {
			l.Error(message, fields...)
		} else {
			l.Debug(message, fields...)
		}
	}
	c.AbortWithStatusJSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string, cause error) {
	Error(c, http.StatusBadRequest, message, cause)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, message, nil)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message, nil)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	Error(c, http.StatusTooManyRequests, message, nil)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string, cause error) {
	Error(c, http.StatusInternalServerError, message, cause)
}
