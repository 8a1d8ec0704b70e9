package lambdahttp

import "strings"

// NewPair creates the linked request/response pair for one invocation. The
// event body primes the read side of a fresh simulated connection, both
// adapters share that connection, and each holds a reference to the other.
// The pair serves exactly one invocation and is discarded with it.
func NewPair(ev *Event) (*Request, *Response, error) {
	body, err := ev.BodyBytes()
	if err != nil {
		return nil, nil, err
	}

	conn := NewConn(body, ConnMetadata{
		RemoteAddress: ev.SourceIP(),
		Secure:        eventIsSecure(ev),
	})
	req := &Request{
		event: ev,
		conn:  conn,
		url:   initialURL(ev),
	}
	resp := newResponse(req)
	req.resp = resp
	return req, resp, nil
}

// eventIsSecure reports whether the edge terminated TLS for this request,
// read from the forwarded-proto header under any casing
func eventIsSecure(ev *Event) bool {
	for k, v := range ev.Headers() {
		if strings.EqualFold(k, "x-forwarded-proto") {
			return strings.EqualFold(v, "https")
		}
	}
	return false
}
