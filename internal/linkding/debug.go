package linkding

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type logTransport struct {
	base http.RoundTripper
	log  *logrus.Logger
}

// RoundTrip tags the request with an ID and logs its outcome.
// Headers and bodies are never logged.
func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqID := uuid.New().String()
	req = req.Clone(req.Context())
	req.Header.Set("X-Request-ID", reqID)

	entry := t.log.WithFields(logrus.Fields{
		"request_id": reqID,
		"method":     req.Method,
		"url":        req.URL.Redacted(),
	})

	start := time.Now()
	resp, err := t.base.RoundTrip(req)
	dur := time.Since(start)
	if err != nil {
		entry.WithError(err).WithField("duration_ms", dur.Milliseconds()).Warn("linkding: request failed")
		return nil, err
	}
	entry.WithFields(logrus.Fields{
		"status":      resp.StatusCode,
		"duration_ms": dur.Milliseconds(),
	}).Debug("linkding: request")
	return resp, nil
}

// EnableLogging routes every request through the given logger.
func (c *Client) EnableLogging(log *logrus.Logger) {
	if c == nil || log == nil {
		return
	}
	c.Log = log
	base := c.HTTP.Transport
	if base == nil {
		base = http.DefaultTransport
	}
	if _, ok := base.(*logTransport); ok {
		return
	}
	c.HTTP.Transport = &logTransport{base: base, log: log}
}
