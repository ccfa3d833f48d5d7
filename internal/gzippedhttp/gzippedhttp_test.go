package gzippedhttp

import (
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(handler http.HandlerFunc, acceptEncoding string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if acceptEncoding != "" {
		req.Header.Set("Accept-Encoding", acceptEncoding)
	}
	rec := httptest.NewRecorder()
	GzipResponse(handler).ServeHTTP(rec, req)

	return rec
}

func jsonHandler(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}
}

func TestGzipResponse(t *testing.T) {
	t.Run("compresses json", func(t *testing.T) {
		rec := serve(jsonHandler(http.StatusOK, `{"following":[]}`), "gzip, deflate")

		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(rec.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		assert.JSONEq(t, `{"following":[]}`, string(body))
	})

	t.Run("client without gzip", func(t *testing.T) {
		rec := serve(jsonHandler(http.StatusOK, `{}`), "")

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, `{}`, rec.Body.String())
	})

	t.Run("error responses stay plain", func(t *testing.T) {
		rec := serve(jsonHandler(http.StatusNotFound, `{"detail":"not found"}`), "gzip")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, `{"detail":"not found"}`, rec.Body.String())
	})

	t.Run("non json stays plain", func(t *testing.T) {
		rec := serve(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/plain")
			_, _ = w.Write([]byte("pong"))
		}, "gzip")

		assert.Empty(t, rec.Header().Get("Content-Encoding"))
		assert.Equal(t, "pong", rec.Body.String())
	})
}
