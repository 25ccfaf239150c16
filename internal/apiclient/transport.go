package apiclient

import (
	"net/http"
	"time"

	"go.uber.org/zap"
)

// loggingTransport logs one line per request, like an access log seen from the client side.
type loggingTransport struct {
	logger *zap.Logger
	next   http.RoundTripper
}

func newLoggingTransport(logger *zap.Logger, next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &loggingTransport{logger: logger, next: next}
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	resp, err := t.next.RoundTrip(req)

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		t.logger.Warn("api request failed", append(fields, zap.Error(err))...)
		return nil, err
	}
	t.logger.Info("api request completed", append(fields, zap.Int("status", resp.StatusCode))...)
	return resp, nil
}
