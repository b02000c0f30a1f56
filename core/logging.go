package core

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const RequestIDHeader = "X-Request-ID"

// NewLogger builds the process logger. Dev mode and debugLogs turn on debug
// output.
func NewLogger(env string, config Config) *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	logger.SetLevel(logrus.InfoLevel)
	if env == "dev" || config.DebugLogs {
		logger.SetLevel(logrus.DebugLevel)
	}
	return logger
}

// statusRecorder keeps the status code and body size written through it.
type statusRecorder struct {
	http.ResponseWriter
	status int
	size   int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.size += n
	return n, err
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// Hijack lets the live reload websocket upgrade through the logger.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hijacker, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hello: response writer does not support hijacking")
	}
	r.status = http.StatusSwitchingProtocols
	return hijacker.Hijack()
}

// LogHandler logs one line per request and tags the response with a request
// id, reusing the caller's X-Request-ID when present.
func LogHandler(next http.Handler, logger logrus.FieldLogger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, requestID)

		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()

		next.ServeHTTP(rec, r)

		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"remote":     r.RemoteAddr,
			"method":     r.Method,
			"uri":        r.RequestURI,
			"status":     rec.Status(),
			"bytes":      rec.size,
			"duration":   time.Since(start).String(),
			"user_agent": r.UserAgent(),
		})

		switch {
		case rec.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		default:
			entry.Info("request")
		}
	})
}
