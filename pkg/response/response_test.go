package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jengzang/opportunity-map-go/internal/logging"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var r Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r))
	return r
}

func TestSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	Success(c, gin.H{"n": 1})

	assert.Equal(t, http.StatusOK, w.Code)
	r := decode(t, w)
	assert.Equal(t, 0, r.Code)
	assert.Equal(t, "success", r.Message)
	assert.Equal(t, map[string]interface{}{"n": float64(1)}, r.Data)
}

func TestError_LogsCauseNotClient(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(logging.FromZap(zap.New(core)))
	t.Cleanup(func() { SetLogger(nil) })

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/map/clusters", nil)

	InternalError(c, "Failed to cluster entities", errors.New("disk on fire"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.True(t, c.IsAborted())
	r := decode(t, w)
	assert.Equal(t, 500, r.Code)
	assert.Nil(t, r.Data)
	assert.NotContains(t, w.Body.String(), "disk on fire")

	entries := logs.FilterMessage("Failed to cluster entities").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, "disk on fire", entries[0].ContextMap()["error"])
}

func TestNotFound(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

	NotFound(c, "Entity not found")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Entity not found", decode(t, w).Message)
}
