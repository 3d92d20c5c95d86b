package middleware

import (
	"bufio"
	"compress/gzip"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
)

const (
	brotliScheme = "br"
	gzipScheme   = "gzip"
)

type CompressionConfig struct {
	Skipper echomw.Skipper

	// BrotliLevel is passed to brotli.NewWriterLevel, 0-11.
	BrotliLevel int
	// GzipLevel is passed to gzip.NewWriterLevel, -2-9.
	GzipLevel int
}

var DefaultCompressionConfig = CompressionConfig{
	Skipper:     echomw.DefaultSkipper,
	BrotliLevel: brotli.DefaultCompression,
	GzipLevel:   gzip.DefaultCompression,
}

// Compression encodes response bodies with brotli when the client accepts it
// and falls back to gzip otherwise.
func Compression() echo.MiddlewareFunc {
	return CompressionWithConfig(DefaultCompressionConfig)
}

func CompressionWithConfig(config CompressionConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultCompressionConfig.Skipper
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}

			res := c.Response()
			scheme := negotiate(c.Request().Header.Get(echo.HeaderAcceptEncoding))
			res.Header().Add(echo.HeaderVary, echo.HeaderAcceptEncoding)
			if scheme == "" {
				return next(c)
			}

			w, err := newEncoder(scheme, res.Writer, config)
			if err != nil {
				return err
			}

			res.Header().Set(echo.HeaderContentEncoding, scheme)
			rw := res.Writer
			cw := &compressResponseWriter{Writer: w, ResponseWriter: rw}
			defer func() {
				if !cw.wroteBody {
					if res.Header().Get(echo.HeaderContentEncoding) == scheme {
						res.Header().Del(echo.HeaderContentEncoding)
					}
					res.Writer = rw
					return
				}
				w.Close()
			}()
			res.Writer = cw
			return next(c)
		}
	}
}

// negotiate picks the preferred scheme from an Accept-Encoding header,
// ignoring quality values other than an explicit q=0.
func negotiate(accept string) string {
	var br, gz bool
	for _, part := range strings.Split(accept, ",") {
		fields := strings.Split(part, ";")
		name := strings.ToLower(strings.TrimSpace(fields[0]))
		if len(fields) > 1 && strings.ReplaceAll(strings.TrimSpace(fields[1]), " ", "") == "q=0" {
			continue
		}
		switch name {
		case brotliScheme:
			br = true
		case gzipScheme:
			gz = true
		}
	}

	switch {
	case br:
		return brotliScheme
	case gz:
		return gzipScheme
	default:
		return ""
	}
}

func newEncoder(scheme string, dst io.Writer, config CompressionConfig) (io.WriteCloser, error) {
	if scheme == brotliScheme {
		return brotli.NewWriterLevel(dst, config.BrotliLevel), nil
	}
	return gzip.NewWriterLevel(dst, config.GzipLevel)
}

type flusher interface {
	Flush() error
}

type compressResponseWriter struct {
	io.Writer
	http.ResponseWriter
	wroteHeader bool
	wroteBody   bool
}

func (w *compressResponseWriter) WriteHeader(code int) {
	w.Header().Del(echo.HeaderContentLength)
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(code)
}

func (w *compressResponseWriter) Write(b []byte) (int, error) {
	if w.Header().Get(echo.HeaderContentType) == "" {
		w.Header().Set(echo.HeaderContentType, http.DetectContentType(b))
	}
	w.wroteBody = true
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.Writer.Write(b)
}

// Flush pushes buffered compressed bytes to the client, which keeps
// c.Stream responses incremental.
func (w *compressResponseWriter) Flush() {
	if f, ok := w.Writer.(flusher); ok {
		f.Flush()
	}
	http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}

func (w *compressResponseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
