// Package errtrack reports unexpected errors and panics to Sentry. A Tracker
// built without a DSN is a no-op, so callers never need to nil-check it.
package errtrack

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

// Tracker forwards errors to Sentry when enabled.
type Tracker struct {
	enabled bool
}

// New initializes the Sentry client. An empty dsn yields a disabled tracker.
func New(dsn, environment, release string) (*Tracker, error) {
	if dsn == "" {
		return &Tracker{}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		Environment:      environment,
		Release:          release,
		AttachStacktrace: true,
	})
	if err != nil {
		return nil, fmt.Errorf("errtrack: init sentry: %w", err)
	}
	return &Tracker{enabled: true}, nil
}

// Enabled reports whether events are sent anywhere.
func (t *Tracker) Enabled() bool {
	return t != nil && t.enabled
}

// Capture reports err with the request and tags attached to the event scope.
func (t *Tracker) Capture(err error, r *http.Request, tags map[string]string) {
	if !t.Enabled() || err == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
		}
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		sentry.CaptureException(err)
	})
}

// CapturePanic reports a recovered panic value.
func (t *Tracker) CapturePanic(recovered any, r *http.Request) {
	if !t.Enabled() || recovered == nil {
		return
	}
	sentry.WithScope(func(scope *sentry.Scope) {
		if r != nil {
			scope.SetRequest(r)
		}
		sentry.CurrentHub().Recover(recovered)
	})
}

// Flush waits for buffered events to be delivered.
func (t *Tracker) Flush(timeout time.Duration) bool {
	if !t.Enabled() {
		return true
	}
	return sentry.Flush(timeout)
}
