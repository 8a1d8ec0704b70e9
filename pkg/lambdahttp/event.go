package lambdahttp

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-lambda-go/events"
)

// PayloadVersion identifies which API Gateway proxy payload format an event
// uses. The version is detected once, when the event is constructed, and
// drives every later field extraction.
type PayloadVersion int

const (
	// PayloadV1 is the REST API / proxy integration format ("1.0")
	PayloadV1 PayloadVersion = iota + 1
	// PayloadV2 is the HTTP API format ("2.0")
	PayloadV2
)

// String returns the wire name of the payload format
func (v PayloadVersion) String() string {
	if v == PayloadV2 {
		return "2.0"
	}
	return "1.0"
}

// Event is the discriminated union of the two supported payload formats.
// Exactly one of the typed views is populated, selected by Version.
type Event struct {
	Version PayloadVersion

	v1 *events.APIGatewayProxyRequest
	v2 *events.APIGatewayV2HTTPRequest
}

// eventProbe carries only the fields that discriminate the payload formats
type eventProbe struct {
	Version    string `json:"version"`
	HTTPMethod string `json:"httpMethod"`
}

// DetectVersion applies the structural probing rule to a raw event:
// version == "2.0" selects the 2.0 format; otherwise a present httpMethod
// selects 1.0; anything else defaults to 1.0.
func DetectVersion(raw []byte) (PayloadVersion, error) {
	var probe eventProbe
	if err := json.Unmarshal(raw, &probe); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}
	if probe.Version == "2.0" {
		return PayloadV2, nil
	}
	return PayloadV1, nil
}

// ParseEvent probes a raw invocation payload, unmarshals it into the typed
// shape for its format, and validates the minimum identifying fields. Invalid
// events are rejected here, before any stream state exists.
func ParseEvent(raw []byte) (*Event, error) {
	version, err := DetectVersion(raw)
	if err != nil {
		return nil, err
	}

	if version == PayloadV2 {
		var v2 events.APIGatewayV2HTTPRequest
		if err := json.Unmarshal(raw, &v2); err != nil {
			return nil, &EventError{Version: PayloadV2, Err: err}
		}
		return NewEventV2(v2)
	}

	var v1 events.APIGatewayProxyRequest
	if err := json.Unmarshal(raw, &v1); err != nil {
		return nil, &EventError{Version: PayloadV1, Err: err}
	}
	return NewEventV1(v1)
}

// NewEventV1 wraps an already-typed 1.0 event, applying the same validation
// as ParseEvent
func NewEventV1(ev events.APIGatewayProxyRequest) (*Event, error) {
	if ev.HTTPMethod == "" {
		return nil, missingFieldError(PayloadV1, "httpMethod")
	}
	if ev.Path == "" {
		return nil, missingFieldError(PayloadV1, "path")
	}
	return &Event{Version: PayloadV1, v1: &ev}, nil
}

// NewEventV2 wraps an already-typed 2.0 event, applying the same validation
// as ParseEvent
func NewEventV2(ev events.APIGatewayV2HTTPRequest) (*Event, error) {
	if ev.RouteKey == "" {
		return nil, missingFieldError(PayloadV2, "routeKey")
	}
	if ev.RawPath == "" {
		return nil, missingFieldError(PayloadV2, "rawPath")
	}
	return &Event{Version: PayloadV2, v2: &ev}, nil
}

// V1 returns the typed 1.0 view, or nil for 2.0 events
func (e *Event) V1() *events.APIGatewayProxyRequest {
	return e.v1
}

// V2 returns the typed 2.0 view, or nil for 1.0 events
func (e *Event) V2() *events.APIGatewayV2HTTPRequest {
	return e.v2
}

// Method returns the HTTP method for either format. 1.0 carries it at the top
// level; 2.0 nests it under the request context.
func (e *Event) Method() string {
	switch e.Version {
	case PayloadV2:
		return e.v2.RequestContext.HTTP.Method
	default:
		return e.v1.HTTPMethod
	}
}

// Path returns the request path: path for 1.0, rawPath for 2.0
func (e *Event) Path() string {
	if e.Version == PayloadV2 {
		return e.v2.RawPath
	}
	return e.v1.Path
}

// Headers returns the event's single-value header map. 2.0 events deliver
// cookies out of band; they are folded back into a cookie header so handler
// code sees the request a server would have seen.
func (e *Event) Headers() map[string]string {
	if e.Version == PayloadV2 {
		headers := make(map[string]string, len(e.v2.Headers)+1)
		for k, v := range e.v2.Headers {
			headers[k] = v
		}
		if len(e.v2.Cookies) > 0 {
			headers["cookie"] = strings.Join(e.v2.Cookies, "; ")
		}
		return headers
	}
	return e.v1.Headers
}

// QueryString builds the query portion of the request URL.
//
// 1.0 events prefer the multi-value map over the single-value one, encoded
// with standard URL escaping in deterministic key order. 2.0 events carry the
// original encoding in rawQueryString, which is used verbatim whenever
// present; the structured map is only a fallback.
func (e *Event) QueryString() string {
	if e.Version == PayloadV2 {
		if e.v2.RawQueryString != "" {
			return e.v2.RawQueryString
		}
		return encodeQuery(e.v2.QueryStringParameters)
	}

	if len(e.v1.MultiValueQueryStringParameters) > 0 {
		return url.Values(e.v1.MultiValueQueryStringParameters).Encode()
	}
	return encodeQuery(e.v1.QueryStringParameters)
}

// encodeQuery applies standard URL encoding to a single-value parameter map
func encodeQuery(params map[string]string) string {
	if len(params) == 0 {
		return ""
	}
	values := url.Values{}
	for k, v := range params {
		values.Set(k, v)
	}
	return values.Encode()
}

// Protocol returns the HTTP protocol string from the request context, for
// example "HTTP/1.1". Empty when the platform did not supply one.
func (e *Event) Protocol() string {
	if e.Version == PayloadV2 {
		return e.v2.RequestContext.HTTP.Protocol
	}
	return e.v1.RequestContext.Protocol
}

// SourceIP returns the calling client's address as reported by the platform
func (e *Event) SourceIP() string {
	if e.Version == PayloadV2 {
		return e.v2.RequestContext.HTTP.SourceIP
	}
	return e.v1.RequestContext.Identity.SourceIP
}

// RequestID returns the platform-assigned request identifier
func (e *Event) RequestID() string {
	if e.Version == PayloadV2 {
		return e.v2.RequestContext.RequestID
	}
	return e.v1.RequestContext.RequestID
}

// BodyBytes returns the request body, decoding base64 transport encoding when
// the event is flagged as encoded. A missing body yields nil.
func (e *Event) BodyBytes() ([]byte, error) {
	var body string
	var encoded bool
	if e.Version == PayloadV2 {
		body, encoded = e.v2.Body, e.v2.IsBase64Encoded
	} else {
		body, encoded = e.v1.Body, e.v1.IsBase64Encoded
	}

	if body == "" {
		return nil, nil
	}
	if encoded {
		decoded, err := base64.StdEncoding.DecodeString(body)
		if err != nil {
			return nil, fmt.Errorf("%w: body is flagged base64 but does not decode: %v", ErrInvalidEvent, err)
		}
		return decoded, nil
	}
	return []byte(body), nil
}
