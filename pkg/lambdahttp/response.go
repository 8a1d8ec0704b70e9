package lambdahttp

import (
	"bufio"
	"encoding/base64"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/sirupsen/logrus"
)

// Response is the outbound adapter: an http.ResponseWriter whose writes
// accumulate on the paired simulated connection instead of a socket. When the
// handler finishes, the collected status, headers, and body serialize into
// the result shape matching the bound request's payload format.
//
// State advances one way: writing, then ending, then finished. Once finished
// the body and the finish signal are frozen; later writes are dropped.
type Response struct {
	req  *Request
	conn *Conn

	header      http.Header
	status      int
	statusSet   bool
	wroteHeader bool
	finished    bool

	finish sync.Once
	done   chan struct{}
}

var (
	_ http.ResponseWriter = (*Response)(nil)
	_ http.Flusher        = (*Response)(nil)
	_ http.Hijacker       = (*Response)(nil)
	_ io.StringWriter     = (*Response)(nil)
)

// newResponse binds a fresh outbound adapter to req's simulated connection
func newResponse(req *Request) *Response {
	return &Response{
		req:    req,
		conn:   req.conn,
		header: make(http.Header),
		done:   make(chan struct{}),
	}
}

// Header returns the header store to be serialized when the response ends
func (w *Response) Header() http.Header {
	return w.header
}

// WriteHeader records the status code. Only the first call takes effect;
// calls after the response has finished are dropped.
func (w *Response) WriteHeader(code int) {
	if w.finished {
		logrus.WithField("status", code).Debug("WriteHeader on finished response dropped")
		return
	}
	if w.wroteHeader {
		logrus.WithField("status", code).Debug("Superfluous WriteHeader ignored")
		return
	}
	w.status = code
	w.statusSet = true
	w.wroteHeader = true
}

// Write appends p to the response body. Writes never backpressure; after the
// response has finished they are dropped.
func (w *Response) Write(p []byte) (int, error) {
	if w.finished {
		logrus.WithField("bytes", len(p)).Debug("Write to finished response dropped")
		return len(p), nil
	}
	return w.conn.Write(p)
}

// WriteString appends the string form of a chunk
func (w *Response) WriteString(s string) (int, error) {
	return w.Write([]byte(s))
}

// Flush is a no-op. The whole body is delivered to the platform at once, so
// there is nothing to push early.
func (w *Response) Flush() {}

// Hijack always fails; there is no real connection to hand over
func (w *Response) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return nil, nil, ErrNotImplemented
}

// Status returns the recorded status code, zero when none was set
func (w *Response) Status() int {
	return w.status
}

// Finished reports whether End has run
func (w *Response) Finished() bool {
	return w.finished
}

// Done returns a channel closed exactly once, when the response finishes.
// The invocation result is not serialized before this signal.
func (w *Response) Done() <-chan struct{} {
	return w.done
}

// End writes the optional final chunk, closes the write side, and emits the
// finish signal. Calling End again changes nothing: the body stays as
// finalized and no second signal fires. Failures on this path are logged and
// swallowed so finalization can never take down the invocation.
func (w *Response) End(chunk []byte) {
	if w.finished {
		if len(chunk) > 0 {
			logrus.WithField("bytes", len(chunk)).Debug("Final chunk after response end dropped")
		}
		return
	}
	if len(chunk) > 0 {
		if _, err := w.conn.Write(chunk); err != nil {
			logrus.WithError(err).Error("Failed to write final response chunk")
		}
	}
	w.finished = true
	if err := w.conn.CloseWrite(); err != nil {
		logrus.WithError(err).Error("Failed to close response sink")
	}
	w.finish.Do(func() {
		close(w.done)
	})
}

// SetURL absorbs URL assignments from handler code that treats request and
// response interchangeably. It changes nothing.
func (w *Response) SetURL(u string) {
	logrus.WithField("url", u).Debug("URL assignment on response ignored")
}

// flattenHeaders collapses the header store into the flat single-value map
// the result shapes carry. Keys are lowercased; multiple set-cookie values
// join with "; " for later re-splitting, any other multi-value header joins
// with ",".
func (w *Response) flattenHeaders() map[string]string {
	flat := make(map[string]string, len(w.header))
	for key, values := range w.header {
		if len(values) == 0 {
			continue
		}
		k := strings.ToLower(key)
		if k == "set-cookie" {
			flat[k] = strings.Join(values, "; ")
			continue
		}
		flat[k] = strings.Join(values, ",")
	}
	return flat
}

// isPrintableASCII reports whether every byte sits in [32, 126]
func isPrintableASCII(body []byte) bool {
	for _, b := range body {
		if b < 32 || b > 126 {
			return false
		}
	}
	return true
}

// materializeBody concatenates the accumulated chunks and applies the
// binary-safety rule: printable ASCII passes through as text, anything else
// is base64-encoded and flagged. The rule looks only at the bytes, never at
// the declared content type.
func (w *Response) materializeBody() (string, bool) {
	body := w.conn.WrittenBytes()
	if isPrintableASCII(body) {
		return string(body), false
	}
	return base64.StdEncoding.EncodeToString(body), true
}

// ToV1 serializes into the REST proxy result shape. An unset status forces
// the default 200 here; this format has no platform-side default.
func (w *Response) ToV1() events.APIGatewayProxyResponse {
	status := w.status
	if !w.statusSet {
		status = http.StatusOK
	}
	body, encoded := w.materializeBody()
	return events.APIGatewayProxyResponse{
		StatusCode:      status,
		Headers:         w.flattenHeaders(),
		Body:            body,
		IsBase64Encoded: encoded,
	}
}

// ToV2 serializes into the HTTP API result shape. Cookies are first-class
// here: the joined set-cookie header re-splits into the cookies list and
// leaves the header map, so it never appears in both places. An unset status
// stays zero for the platform to default.
func (w *Response) ToV2() events.APIGatewayV2HTTPResponse {
	headers := w.flattenHeaders()
	var cookies []string
	if joined, ok := headers["set-cookie"]; ok {
		cookies = strings.Split(joined, "; ")
		delete(headers, "set-cookie")
	}
	body, encoded := w.materializeBody()
	return events.APIGatewayV2HTTPResponse{
		StatusCode:      w.status,
		Headers:         headers,
		Cookies:         cookies,
		Body:            body,
		IsBase64Encoded: encoded,
	}
}

// LambdaResponse serializes into the result shape matching the payload
// format detected for the bound request's event
func (w *Response) LambdaResponse() (any, error) {
	switch w.req.event.Version {
	case PayloadV2:
		return w.ToV2(), nil
	case PayloadV1:
		return w.ToV1(), nil
	default:
		return nil, fmt.Errorf("%w: unknown payload version %d", ErrInvalidEvent, int(w.req.event.Version))
	}
}
