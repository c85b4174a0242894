package middleware

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/configuration"
	"github.com/urnevurnev-lab/ambassador-crm-sub000/pkg/constants"
)

type LoggerOptions struct {
	LogRequestBody  bool
	LogResponseBody bool
	MaxBodyLength   int
	Repanic         bool
}

func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		LogRequestBody:  true,
		LogResponseBody: false,
		MaxBodyLength:   512,
	}
}

type responseCaptureWriter struct {
	http.ResponseWriter
	statusCode    int
	statusWritten bool
	body          *bytes.Buffer
}

func (w *responseCaptureWriter) WriteHeader(code int) {
	if !w.statusWritten {
		w.statusCode = code
		w.statusWritten = true
		w.ResponseWriter.WriteHeader(code)
	}
}

func (w *responseCaptureWriter) Status() int {
	if w.statusCode == 0 {
		return http.StatusOK
	}
	return w.statusCode
}

func (w *responseCaptureWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseCaptureWriter) Flush() {
	if flusher, ok := w.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (w *responseCaptureWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hijacker, ok := w.ResponseWriter.(http.Hijacker); ok {
		return hijacker.Hijack()
	}
	return nil, nil, fmt.Errorf("underlying ResponseWriter does not implement http.Hijacker")
}

func wrapResponseWriter(w http.ResponseWriter) *responseCaptureWriter {
	return &responseCaptureWriter{ResponseWriter: w, body: &bytes.Buffer{}}
}

func getRealIP(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RealIPHeader)) > 0 {
		return r.Header.Get(conf.RealIPHeader)
	}
	return r.RemoteAddr
}

func getRequestID(r *http.Request, conf *configuration.Configuration) string {
	if len(r.Header.Get(conf.RequestIDHeader)) > 0 {
		return r.Header.Get(conf.RequestIDHeader)
	}
	return uuid.New().String()
}

func truncate(s string, max int) string {
	if max > 0 && len(s) > max {
		return s[:max] + "..."
	}
	return s
}

// WithLogger logs every request with a stable request id, captures the
// response status, and recovers from handler panics with a JSON error
// envelope. The field logger is placed on the context for downstream code.
func WithLogger(logger *logrus.Logger, opts LoggerOptions) mux.MiddlewareFunc {
	conf := configuration.Use()
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			requestID := getRequestID(r, conf)

			fieldsLogger := logger.WithFields(logrus.Fields{
				"request-id": requestID,
				"path":       r.RequestURI,
				"method":     r.Method,
				"ip":         getRealIP(r, conf),
			})
			fieldsLogger.Info("request started")

			ctx := context.WithValue(r.Context(), constants.LoggerKey, fieldsLogger)
			w.Header().Set("X-Request-Id", requestID)
			wrappedWriter := wrapResponseWriter(w)

			defer func() {
				if recovered := recover(); recovered != nil {
					fieldsLogger.WithFields(logrus.Fields{
						"panic":    recovered,
						"stack":    string(debug.Stack()),
						"duration": time.Since(start),
					}).Error("panic recovered in request handler")

					if !wrappedWriter.statusWritten {
						wrappedWriter.Header().Set("Content-Type", "application/json")
						wrappedWriter.WriteHeader(http.StatusInternalServerError)
						_ = json.NewEncoder(wrappedWriter).Encode(map[string]any{
							"code":    "INTERNAL_SERVER_ERROR",
							"message": "internal server error",
							"meta": map[string]string{
								"request_id": requestID,
								"path":       r.URL.Path,
							},
						})
					}
					if opts.Repanic {
						panic(recovered)
					}
				}
			}()

			next.ServeHTTP(wrappedWriter, r.WithContext(ctx))

			statusCode := wrappedWriter.Status()
			entry := fieldsLogger.WithFields(logrus.Fields{
				"duration":     time.Since(start),
				"status-code":  statusCode,
				"status-class": statusCode / 100,
			})
			if opts.LogResponseBody && strings.Contains(wrappedWriter.Header().Get("Content-Type"), "application/json") {
				entry = entry.WithField("response-body", truncate(wrappedWriter.body.String(), opts.MaxBodyLength))
			}
			entry.Info("request completed")
		})
	}
}
