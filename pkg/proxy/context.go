package proxy

import (
	"context"

	"github.com/dpruessner/lambda-event-to-http/pkg/lambdahttp"
)

type contextKey int

const (
	eventKey contextKey = iota
	connKey
	subdomainsKey
)

// EventFromContext returns the Lambda event behind the current request, for
// handlers that need platform fields the HTTP view does not carry
func EventFromContext(ctx context.Context) (*lambdahttp.Event, bool) {
	ev, ok := ctx.Value(eventKey).(*lambdahttp.Event)
	return ev, ok
}

// ConnFromContext returns the simulated connection serving the current
// request
func ConnFromContext(ctx context.Context) (*lambdahttp.Conn, bool) {
	conn, ok := ctx.Value(connKey).(*lambdahttp.Conn)
	return conn, ok
}

// SubdomainsFromContext returns the subdomain labels extracted from the
// request host, rightmost-first
func SubdomainsFromContext(ctx context.Context) ([]string, bool) {
	subdomains, ok := ctx.Value(subdomainsKey).([]string)
	return subdomains, ok
}
