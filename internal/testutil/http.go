package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// Do serves one request on router. A non-nil body is sent as JSON.
func Do(t *testing.T, router http.Handler, method, path string, body any, headers ...map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, h := range headers {
		for k, v := range h {
			req.Header.Set(k, v)
		}
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func NewRouter() *gin.Engine {
	return gin.New()
}

// JSONBodyAs decodes the response body into T
func JSONBodyAs[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), "response body: %s", w.Body.String())
	return out
}

// AssertErrorResponse checks w carries the error envelope with code
func AssertErrorResponse(t *testing.T, w *httptest.ResponseRecorder, code string) {
	t.Helper()
	resp := JSONBodyAs[dto.Response](t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error, "error object in response")
	assert.Equal(t, code, resp.Error.Code)
}
