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
)

func init() {
	gin.SetMode(gin.TestMode)
}

func record(handler gin.HandlerFunc) *httptest.ResponseRecorder {
	r := gin.New()
	r.GET("/", handler)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	return w
}

func TestOKWrapsSlices(t *testing.T) {
	w := record(func(c *gin.Context) {
		OK(c, []string{"a", "b"})
	})
	assert.Equal(t, http.StatusOK, w.Code)

	var body map[string][]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []string{"a", "b"}, body["data"])
}

func TestOKPassesObjectsThrough(t *testing.T) {
	w := record(func(c *gin.Context) {
		OK(c, gin.H{"token": "abc"})
	})

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "abc", body["token"])
	assert.NotContains(t, body, "data")
}

func TestPagedEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		Paged(c, []int{1, 2, 3}, Pagination{Total: 3, CurrentPage: 1, TotalPage: 1, Size: 10})
	})

	var body struct {
		Data       []int      `json:"data"`
		Pagination Pagination `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Data, 3)
	assert.Equal(t, int64(3), body.Pagination.Total)
}

func TestErrorEnvelope(t *testing.T) {
	w := record(func(c *gin.Context) {
		BadRequest(c, "this code has expired, scan the current one")
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var body struct {
		OK      int    `json:"ok"`
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, 0, body.OK)
	assert.Equal(t, http.StatusBadRequest, body.Code)
	assert.Equal(t, "this code has expired, scan the current one", body.Message)
}

func TestInternalErrorHidesCause(t *testing.T) {
	var captured *gin.Context
	w := record(func(c *gin.Context) {
		captured = c
		InternalError(c, errors.New("dial tcp 127.0.0.1:3306: connect: connection refused"))
	})
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	// The storage detail must not leak into the body, only into c.Errors
	// for the request logger.
	assert.NotContains(t, w.Body.String(), "3306")
	assert.Contains(t, w.Body.String(), "internal server error")
	require.Len(t, captured.Errors, 1)
}
