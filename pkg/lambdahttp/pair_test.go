package lambdahttp

import (
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestNewPairPrimesBody(t *testing.T) {
	req, _ := mustPairV1(t, events.APIGatewayProxyRequest{
		HTTPMethod: "POST",
		Path:       "/",
		Body:       "request payload",
	})

	body, err := io.ReadAll(req.Socket())
	if err != nil {
		t.Fatalf("Expected body read to succeed, got %v", err)
	}
	if string(body) != "request payload" {
		t.Errorf("Expected primed body, got %q", body)
	}
}

func TestNewPairRejectsBadBodyEncoding(t *testing.T) {
	event, err := NewEventV1(events.APIGatewayProxyRequest{
		HTTPMethod:      "POST",
		Path:            "/",
		Body:            "not base64 at all!",
		IsBase64Encoded: true,
	})
	if err != nil {
		t.Fatalf("Expected event to validate, got %v", err)
	}
	if _, _, err := NewPair(event); !errors.Is(err, ErrInvalidEvent) {
		t.Errorf("Expected ErrInvalidEvent, got %v", err)
	}
}

func TestNewPairConnectionMetadata(t *testing.T) {
	t.Run("remote address from source ip", func(t *testing.T) {
		req, _ := mustPairV1(t, events.APIGatewayProxyRequest{
			HTTPMethod: "GET",
			Path:       "/",
			RequestContext: events.APIGatewayProxyRequestContext{
				Identity: events.APIGatewayRequestIdentity{SourceIP: "198.51.100.23"},
			},
		})
		if got := req.Socket().RemoteAddr().String(); got != "198.51.100.23:0" {
			t.Errorf("Expected remote addr from source ip, got %q", got)
		}
	})

	t.Run("insecure default port", func(t *testing.T) {
		req, _ := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
		if got := req.Socket().Address().Port; got != 80 {
			t.Errorf("Expected port 80, got %d", got)
		}
	})

	t.Run("forwarded proto selects secure port regardless of casing", func(t *testing.T) {
		req, _ := mustPairV1(t, events.APIGatewayProxyRequest{
			HTTPMethod: "GET",
			Path:       "/",
			Headers:    map[string]string{"x-ForWarded-pRoto": "HTTPS"},
		})
		if got := req.Socket().Address().Port; got != 443 {
			t.Errorf("Expected port 443, got %d", got)
		}
	})
}
