package lambdahttp

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// Request is the inbound adapter: it wraps one immutable Event and the Conn
// primed with the event's body, and exposes the request view stream-oriented
// handler code expects. Header views are recomputed on every access from the
// event; only the URL is mutable.
type Request struct {
	event *Event
	conn  *Conn
	resp  *Response

	url string
}

// Method returns the request method for the event's payload format
func (r *Request) Method() string {
	return r.event.Method()
}

// Headers returns the request headers with lowercased keys. The view is
// rebuilt from the event on every call, so repeated reads stay correct no
// matter what casing the event carried.
func (r *Request) Headers() map[string]string {
	headers := make(map[string]string)
	for k, v := range r.event.Headers() {
		headers[strings.ToLower(k)] = v
	}
	return headers
}

// HeadersDistinct returns the same headers with each value wrapped in a
// single-element list
func (r *Request) HeadersDistinct() map[string][]string {
	headers := r.Headers()
	distinct := make(map[string][]string, len(headers))
	for k, v := range headers {
		distinct[k] = []string{v}
	}
	return distinct
}

// RawHeaders flattens the headers into an alternating key/value sequence in
// deterministic key order
func (r *Request) RawHeaders() []string {
	headers := r.Headers()
	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	raw := make([]string, 0, 2*len(keys))
	for _, k := range keys {
		raw = append(raw, k, headers[k])
	}
	return raw
}

// Trailers returns an empty map; the platform never delivers trailers
func (r *Request) Trailers() map[string]string {
	return map[string]string{}
}

// HTTPVersion returns the protocol version from the event's request context
// with the "HTTP/" prefix stripped, defaulting to "1.1" when the platform
// did not report one.
func (r *Request) HTTPVersion() string {
	proto := strings.TrimPrefix(r.event.Protocol(), "HTTP/")
	if proto == "" {
		return "1.1"
	}
	return proto
}

// HTTPVersionMajor returns the major component of the protocol version
func (r *Request) HTTPVersionMajor() int {
	major, _ := splitHTTPVersion(r.HTTPVersion())
	return major
}

// HTTPVersionMinor returns the minor component of the protocol version
func (r *Request) HTTPVersionMinor() int {
	_, minor := splitHTTPVersion(r.HTTPVersion())
	return minor
}

// splitHTTPVersion parses "major.minor"; a missing minor component is zero
func splitHTTPVersion(version string) (int, int) {
	parts := strings.SplitN(version, ".", 2)
	major, _ := strconv.Atoi(parts[0])
	minor := 0
	if len(parts) == 2 {
		minor, _ = strconv.Atoi(parts[1])
	}
	return major, minor
}

// URL returns the request URL. It is computed once at construction from the
// event's path and query and may have been rewritten since.
func (r *Request) URL() string {
	return r.url
}

// SetURL overwrites the request URL. Handler code is free to rewrite it;
// the event itself is never touched.
func (r *Request) SetURL(u string) {
	r.url = u
}

// Aborted reports whether the request was aborted mid-flight. The platform
// only delivers complete requests, so this is always false.
func (r *Request) Aborted() bool {
	return false
}

// Complete reports whether the whole request has arrived. The body is fully
// buffered before the adapter exists, so this is always true.
func (r *Request) Complete() bool {
	return true
}

// Destroy tears down the underlying simulated connection
func (r *Request) Destroy(err error) error {
	return r.conn.Destroy(err)
}

// Socket returns the simulated connection backing this request
func (r *Request) Socket() *Conn {
	return r.conn
}

// Response returns the paired outbound adapter
func (r *Request) Response() *Response {
	return r.resp
}

// LambdaEvent returns the original platform event, for downstream consumers
// that need fields the request view does not model
func (r *Request) LambdaEvent() *Event {
	return r.event
}

// HTTPRequest materializes the adapter as a standard *http.Request so stock
// HTTP handler stacks can consume it. The body reads from the simulated
// connection, the host header is promoted to the Host field, and the remote
// address reflects the calling client reported by the platform.
func (r *Request) HTTPRequest(ctx context.Context) (*http.Request, error) {
	target, err := url.ParseRequestURI(r.url)
	if err != nil {
		return nil, fmt.Errorf("%w: request url %q: %v", ErrInvalidEvent, r.url, err)
	}

	header := make(http.Header)
	host := ""
	for k, v := range r.Headers() {
		if k == "host" {
			host = v
			continue
		}
		header.Set(k, v)
	}

	major, minor := splitHTTPVersion(r.HTTPVersion())
	remoteAddr := ""
	if r.conn.remote.IP != "" {
		remoteAddr = net.JoinHostPort(r.conn.remote.IP, strconv.Itoa(r.conn.remote.Port))
	}

	req := &http.Request{
		Method:        r.Method(),
		URL:           target,
		Proto:         "HTTP/" + r.HTTPVersion(),
		ProtoMajor:    major,
		ProtoMinor:    minor,
		Header:        header,
		Body:          r.conn,
		ContentLength: int64(len(r.conn.body)),
		Host:          host,
		RemoteAddr:    remoteAddr,
		RequestURI:    r.url,
	}
	return req.WithContext(ctx), nil
}

// initialURL assembles path plus encoded query for the one-time URL
// computation at construction
func initialURL(ev *Event) string {
	query := ev.QueryString()
	if query == "" {
		return ev.Path()
	}
	return ev.Path() + "?" + query
}
