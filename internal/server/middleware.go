package server

import (
	"bytes"
	"compress/gzip"
	"io"
	"log"
	"net/http"
	"strings"

	"familytasks/internal/domain/errors"
	"familytasks/internal/domain/messages"

	"github.com/gin-gonic/gin"
)

// gzipMinSize is the smallest body worth compressing.
const gzipMinSize = 1024

var compressibleTypes = []string{
	"application/json",
	"application/xml",
	"application/javascript",
	"text/html",
	"text/css",
	"text/plain",
	"text/xml",
	"text/javascript",
}

// statuses whose bodies are empty or must reach the client untouched
var skipGzipStatuses = map[int]bool{
	http.StatusNoContent:         true,
	http.StatusNotModified:       true,
	http.StatusPartialContent:    true,
	http.StatusMultipleChoices:   true,
	http.StatusMovedPermanently:  true,
	http.StatusFound:             true,
	http.StatusSeeOther:          true,
	http.StatusTemporaryRedirect: true,
	http.StatusPermanentRedirect: true,
}

// gzipBody closes both the decompressor and the original request body.
type gzipBody struct {
	*gzip.Reader
	src io.ReadCloser
}

func (b *gzipBody) Close() error {
	gzErr := b.Reader.Close()
	if err := b.src.Close(); err != nil {
		return err
	}
	return gzErr
}

// GzipRequestDecompress transparently inflates gzip request bodies. A body
// that is not valid gzip is rejected as a malformed request.
func GzipRequestDecompress(catalog *messages.Catalog) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if !strings.Contains(strings.ToLower(ctx.GetHeader("Content-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		gr, err := gzip.NewReader(ctx.Request.Body)
		if err != nil {
			log.Println("[WARN]", errors.ErrInvalidGzipRequest.Error()+":", err)
			ctx.AbortWithStatusJSON(http.StatusBadRequest, errorBody(catalog.Format(messages.IncorrectRequestFormat)))
			return
		}

		ctx.Request.Body = &gzipBody{Reader: gr, src: ctx.Request.Body}
		ctx.Request.Header.Del("Content-Encoding")
		ctx.Request.Header.Del("Content-Length")
		ctx.Request.ContentLength = -1

		ctx.Next()
	}
}

// gzipWriter buffers the body until it reaches gzipMinSize and only then
// decides whether to compress it.
type gzipWriter struct {
	gin.ResponseWriter
	gz  *gzip.Writer
	buf bytes.Buffer
}

func (w *gzipWriter) Write(data []byte) (int, error) {
	if w.gz != nil {
		if _, err := w.gz.Write(data); err != nil {
			return 0, errors.ErrGzipCompressionFailed
		}
		return len(data), nil
	}

	w.buf.Write(data)
	if w.buf.Len() >= gzipMinSize && w.compressible() {
		w.startGzip()
		if _, err := w.gz.Write(w.buf.Bytes()); err != nil {
			return 0, errors.ErrGzipCompressionFailed
		}
		w.buf.Reset()
	}
	return len(data), nil
}

func (w *gzipWriter) WriteString(s string) (int, error) { return w.Write([]byte(s)) }

func (w *gzipWriter) Flush() {
	if w.gz != nil {
		_ = w.gz.Flush()
	} else {
		_ = w.flushBuffer()
	}
	w.ResponseWriter.Flush()
}

func (w *gzipWriter) compressible() bool {
	h := w.Header()
	if skipGzipStatuses[w.Status()] || h.Get("Content-Encoding") != "" {
		return false
	}

	ct := strings.ToLower(h.Get("Content-Type"))
	if ct == "" || strings.HasPrefix(ct, "text/event-stream") {
		return false
	}
	for _, prefix := range compressibleTypes {
		if strings.HasPrefix(ct, prefix) {
			return true
		}
	}
	return false
}

func (w *gzipWriter) startGzip() {
	h := w.Header()
	h.Del("Content-Length")
	h.Set("Content-Encoding", "gzip")
	addVary(h)
	w.gz = gzip.NewWriter(w.ResponseWriter)
}

func (w *gzipWriter) flushBuffer() error {
	if w.buf.Len() == 0 {
		return nil
	}
	_, err := w.ResponseWriter.Write(w.buf.Bytes())
	w.buf.Reset()
	return err
}

// finish completes the response. Bodies that never reached gzipMinSize are
// sent as they are.
func (w *gzipWriter) finish() error {
	if w.gz != nil {
		if err := w.gz.Close(); err != nil {
			return errors.ErrGzipCompressionFailed
		}
		return nil
	}
	return w.flushBuffer()
}

func addVary(h http.Header) {
	vary := h.Get("Vary")
	switch {
	case vary == "":
		h.Set("Vary", "Accept-Encoding")
	case !strings.Contains(vary, "Accept-Encoding"):
		h.Set("Vary", vary+", Accept-Encoding")
	}
}

// GzipResponseCompress compresses responses of at least gzipMinSize bytes
// for clients that accept gzip.
func GzipResponseCompress() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method == http.MethodHead ||
			!strings.Contains(strings.ToLower(ctx.GetHeader("Accept-Encoding")), "gzip") {
			ctx.Next()
			return
		}

		addVary(ctx.Writer.Header())

		gw := &gzipWriter{ResponseWriter: ctx.Writer}
		ctx.Writer = gw
		ctx.Next()

		if err := gw.finish(); err != nil {
			log.Println("[ERROR] Не удалось завершить ответ:", err)
			_ = ctx.Error(err)
		}
	}
}
