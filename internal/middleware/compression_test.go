package middleware

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var payload = bytes.Repeat([]byte("stored file contents "), 200)

func newServer(config CompressionConfig) *echo.Echo {
	e := echo.New()
	e.Use(CompressionWithConfig(config))
	e.POST("/download", func(c echo.Context) error {
		return c.Stream(http.StatusOK, "application/octet-stream", bytes.NewReader(payload))
	})
	e.POST("/empty", func(c echo.Context) error {
		return c.NoContent(http.StatusNoContent)
	})
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "Hello World!")
	})
	return e
}

func request(e *echo.Echo, method, target, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	if accept != "" {
		req.Header.Set(echo.HeaderAcceptEncoding, accept)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestCompression(t *testing.T) {
	tests := []struct {
		name         string
		accept       string
		wantEncoding string
	}{
		{"brotli preferred", "gzip, deflate, br", "br"},
		{"gzip only", "gzip", "gzip"},
		{"brotli refused", "br;q=0, gzip", "gzip"},
		{"identity", "", ""},
		{"unsupported", "deflate", ""},
	}

	e := newServer(DefaultCompressionConfig)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := request(e, http.MethodPost, "/download", tt.accept)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantEncoding, rec.Header().Get(echo.HeaderContentEncoding))
			assert.Contains(t, rec.Header().Get(echo.HeaderVary), echo.HeaderAcceptEncoding)

			var r io.Reader
			switch tt.wantEncoding {
			case "br":
				r = brotli.NewReader(rec.Body)
			case "gzip":
				gz, err := gzip.NewReader(rec.Body)
				require.NoError(t, err)
				r = gz
			default:
				r = rec.Body
			}

			body, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, payload, body)
		})
	}
}

func TestCompression_Skipper(t *testing.T) {
	e := newServer(CompressionConfig{
		Skipper: func(c echo.Context) bool {
			return !strings.HasPrefix(c.Path(), "/download")
		},
		BrotliLevel: brotli.BestSpeed,
		GzipLevel:   gzip.BestSpeed,
	})

	rec := request(e, http.MethodGet, "/", "br")
	assert.Empty(t, rec.Header().Get(echo.HeaderContentEncoding))
	assert.Equal(t, "Hello World!", rec.Body.String())

	rec = request(e, http.MethodPost, "/download", "br")
	assert.Equal(t, "br", rec.Header().Get(echo.HeaderContentEncoding))
}

func TestCompression_EmptyBody(t *testing.T) {
	e := newServer(DefaultCompressionConfig)

	rec := request(e, http.MethodPost, "/empty", "gzip")

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Zero(t, rec.Body.Len())
}

func TestNegotiate(t *testing.T) {
	assert.Equal(t, "br", negotiate("BR"))
	assert.Equal(t, "gzip", negotiate("gzip;q=0.5"))
	assert.Equal(t, "", negotiate("gzip;q=0"))
	assert.Equal(t, "", negotiate("*"))
}
