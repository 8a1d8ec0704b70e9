// Package proxy runs an http.Handler against AWS Lambda proxy events. Each
// invocation is parsed and validated, translated into a simulated connection
// pair, served synchronously, and serialized back into the result shape the
// event's payload format expects.
package proxy

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dpruessner/lambda-event-to-http/pkg/lambdahttp"
)

// DefaultSubdomainOffset is how many trailing host labels count as the
// registered domain when extracting subdomains
const DefaultSubdomainOffset = 2

// Proxy translates Lambda proxy invocations for a single http.Handler
type Proxy struct {
	handler         http.Handler
	log             *logrus.Logger
	subdomainOffset int
	basePath        string
}

// Option configures a Proxy
type Option func(*Proxy)

// WithLogger replaces the standard logger
func WithLogger(log *logrus.Logger) Option {
	return func(p *Proxy) {
		p.log = log
	}
}

// WithSubdomainOffset sets how many trailing host labels are dropped before
// subdomains are extracted
func WithSubdomainOffset(offset int) Option {
	return func(p *Proxy) {
		p.subdomainOffset = offset
	}
}

// WithBasePath strips a stage or mount prefix from the event path before the
// URL reaches the handler
func WithBasePath(basePath string) Option {
	return func(p *Proxy) {
		p.basePath = basePath
	}
}

// New creates a new Proxy around handler
func New(handler http.Handler, opts ...Option) *Proxy {
	p := &Proxy{
		handler:         handler,
		log:             logrus.StandardLogger(),
		subdomainOffset: DefaultSubdomainOffset,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Handle is the Lambda entrypoint. Taking the raw payload lets one function
// serve both proxy formats; the format is detected from the event itself.
func (p *Proxy) Handle(ctx context.Context, raw json.RawMessage) (any, error) {
	ev, err := lambdahttp.ParseEvent(raw)
	if err != nil {
		p.log.WithError(err).Error("Rejecting invalid invocation event")
		return nil, err
	}
	return p.serve(ctx, ev)
}

// HandleV1 serves a typed REST proxy event
func (p *Proxy) HandleV1(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	ev, err := lambdahttp.NewEventV1(event)
	if err != nil {
		p.log.WithError(err).Error("Rejecting invalid invocation event")
		return events.APIGatewayProxyResponse{}, err
	}
	result, err := p.serve(ctx, ev)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return result.(events.APIGatewayProxyResponse), nil
}

// HandleV2 serves a typed HTTP API event
func (p *Proxy) HandleV2(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	ev, err := lambdahttp.NewEventV2(event)
	if err != nil {
		p.log.WithError(err).Error("Rejecting invalid invocation event")
		return events.APIGatewayV2HTTPResponse{}, err
	}
	result, err := p.serve(ctx, ev)
	if err != nil {
		return events.APIGatewayV2HTTPResponse{}, err
	}
	return result.(events.APIGatewayV2HTTPResponse), nil
}

// serve runs one invocation end to end: pair construction, synchronous
// dispatch into the handler, finalization, serialization
func (p *Proxy) serve(ctx context.Context, ev *lambdahttp.Event) (result any, err error) {
	start := time.Now()
	invocation := invocationID(ctx)

	req, resp, err := lambdahttp.NewPair(ev)
	if err != nil {
		p.log.WithError(err).WithField("invocation_id", invocation).Error("Failed to build connection pair")
		return nil, err
	}

	if p.basePath != "" {
		stripBasePath(req, p.basePath)
	}

	subdomains := lambdahttp.Subdomains(req.Headers()["host"], p.subdomainOffset)

	ctx = context.WithValue(ctx, eventKey, ev)
	ctx = context.WithValue(ctx, connKey, req.Socket())
	ctx = context.WithValue(ctx, subdomainsKey, subdomains)

	httpReq, err := req.HTTPRequest(ctx)
	if err != nil {
		p.log.WithError(err).WithField("invocation_id", invocation).Error("Failed to materialize request")
		return nil, err
	}

	// A handler panic becomes the invocation error; finalization itself
	// never raises past this point.
	defer func() {
		if r := recover(); r != nil {
			p.log.WithFields(logrus.Fields{
				"invocation_id": invocation,
				"panic":         r,
				"stack":         string(debug.Stack()),
			}).Error("Handler panicked")
			result = nil
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	p.handler.ServeHTTP(resp, httpReq)
	resp.End(nil)
	<-resp.Done()

	result, err = resp.LambdaResponse()
	if err != nil {
		p.log.WithError(err).WithField("invocation_id", invocation).Error("Failed to serialize result")
		return nil, err
	}

	p.log.WithFields(logrus.Fields{
		"invocation_id":   invocation,
		"payload_version": ev.Version.String(),
		"method":          ev.Method(),
		"path":            ev.Path(),
		"status":          resultStatus(result),
		"duration_ms":     time.Since(start).Milliseconds(),
		"bytes_written":   req.Socket().BytesWritten(),
	}).Info("Invocation completed")

	return result, nil
}

// invocationID prefers the platform-assigned request id and falls back to a
// fresh one outside the Lambda runtime
func invocationID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.New().String()
}

// resultStatus extracts the serialized status code for logging
func resultStatus(result any) int {
	switch r := result.(type) {
	case events.APIGatewayProxyResponse:
		return r.StatusCode
	case events.APIGatewayV2HTTPResponse:
		return r.StatusCode
	}
	return 0
}

// stripBasePath removes the configured prefix from the request URL when
// present. API Gateway stages prepend one; handlers route without it.
func stripBasePath(req *lambdahttp.Request, basePath string) {
	base := "/" + strings.Trim(basePath, "/")
	if base == "/" {
		return
	}

	u := req.URL()
	if u != base && !strings.HasPrefix(u, base+"/") && !strings.HasPrefix(u, base+"?") {
		return
	}
	trimmed := strings.TrimPrefix(u, base)
	if trimmed == "" || strings.HasPrefix(trimmed, "?") {
		trimmed = "/" + trimmed
	}
	req.SetURL(trimmed)
}
