package apperrors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError_ValidationShape(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, ValidationError(map[string]string{"title": "This field is required"}))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "The given data was invalid.", body["message"])
	assert.Equal(t, map[string]any{"title": "This field is required"}, body["errors"])
}

func TestHandleError_UnknownErrorIsInternal(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, errors.New("boom"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "boom")
	assert.NotContains(t, w.Body.String(), "errors")
}

func TestHandleError_UnauthorizedChallenge(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, ErrInvalidToken)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, `Bearer realm="api"`, w.Header().Get("WWW-Authenticate"))
	assert.Equal(t, string(ErrInvalidToken.Code), c.GetString(ErrorCodeKey))
	assert.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
}

func TestHandleError_StartedResponseIsNotRewritten(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	c.Status(http.StatusOK)
	_, err := c.Writer.Write([]byte("partial image"))
	require.NoError(t, err)

	HandleError(c, errors.New("storage read failed"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "partial image", w.Body.String())
	assert.True(t, c.IsAborted())
	assert.Equal(t, string(CodeInternalError), c.GetString(ErrorCodeKey))
}

func TestWithField_DoesNotMutateShared(t *testing.T) {
	extended := ErrEmailTaken.WithField("name", "too short")

	assert.Len(t, ErrEmailTaken.Fields, 1)
	assert.Len(t, extended.Fields, 2)
}

func TestWrappedAppErrorIsFound(t *testing.T) {
	wrapped := errors.Join(errors.New("context"), ErrPropertyNotFound)

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, appErr.HTTPCode)
}
