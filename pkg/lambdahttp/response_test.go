package lambdahttp

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"

	"github.com/aws/aws-lambda-go/events"
)

func TestResponseWriteConcat(t *testing.T) {
	_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})

	if _, err := resp.Write([]byte("Hello")); err != nil {
		t.Fatalf("Expected write to succeed, got %v", err)
	}
	if _, err := resp.WriteString(", "); err != nil {
		t.Fatalf("Expected string write to succeed, got %v", err)
	}
	if _, err := resp.Write([]byte("world")); err != nil {
		t.Fatalf("Expected write to succeed, got %v", err)
	}
	resp.End(nil)

	out := resp.ToV1()
	if out.Body != "Hello, world" {
		t.Errorf("Expected concatenated body, got %q", out.Body)
	}
	if out.IsBase64Encoded {
		t.Error("Expected printable body to stay text")
	}
}

func TestResponseBinarySafety(t *testing.T) {
	tests := []struct {
		name       string
		body       []byte
		wantBase64 bool
	}{
		{name: "printable ascii", body: []byte("plain text, even with punctuation!"), wantBase64: false},
		{name: "empty body", body: nil, wantBase64: false},
		{name: "tab is below printable range", body: []byte("a\tb"), wantBase64: true},
		{name: "newline is below printable range", body: []byte("line1\nline2"), wantBase64: true},
		{name: "utf8 multibyte", body: []byte("café"), wantBase64: true},
		{name: "raw binary", body: []byte{0x00, 0xFF, 0x10}, wantBase64: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
			if len(tt.body) > 0 {
				if _, err := resp.Write(tt.body); err != nil {
					t.Fatalf("Expected write to succeed, got %v", err)
				}
			}
			resp.End(nil)

			out := resp.ToV1()
			if out.IsBase64Encoded != tt.wantBase64 {
				t.Fatalf("Expected isBase64Encoded=%v, got %v", tt.wantBase64, out.IsBase64Encoded)
			}
			if tt.wantBase64 {
				decoded, err := base64.StdEncoding.DecodeString(out.Body)
				if err != nil {
					t.Fatalf("Expected valid base64 body, got %v", err)
				}
				if string(decoded) != string(tt.body) {
					t.Errorf("Expected round-trip %q, got %q", tt.body, decoded)
				}
			} else if out.Body != string(tt.body) {
				t.Errorf("Expected literal body %q, got %q", tt.body, out.Body)
			}
		})
	}
}

func TestResponseEndIdempotent(t *testing.T) {
	_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})

	select {
	case <-resp.Done():
		t.Fatal("Expected finish signal only after End")
	default:
	}

	resp.WriteHeader(http.StatusCreated)
	if _, err := resp.Write([]byte("ok")); err != nil {
		t.Fatalf("Expected write to succeed, got %v", err)
	}
	resp.End([]byte(" done"))

	select {
	case <-resp.Done():
	default:
		t.Fatal("Expected finish signal after End")
	}
	if !resp.Finished() {
		t.Error("Expected response to report finished")
	}

	// A second End and later writes must leave the body untouched
	resp.End([]byte(" extra"))
	if n, err := resp.Write([]byte("more")); err != nil || n != 4 {
		t.Errorf("Expected dropped write to stay silent, got (%d, %v)", n, err)
	}
	resp.WriteHeader(http.StatusTeapot)

	out := resp.ToV1()
	if out.Body != "ok done" {
		t.Errorf("Expected finalized body %q, got %q", "ok done", out.Body)
	}
	if out.StatusCode != http.StatusCreated {
		t.Errorf("Expected status %d, got %d", http.StatusCreated, out.StatusCode)
	}
}

func TestResponseStatusDefaults(t *testing.T) {
	t.Run("v1 unset status forces 200", func(t *testing.T) {
		_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
		resp.End(nil)
		if out := resp.ToV1(); out.StatusCode != http.StatusOK {
			t.Errorf("Expected default 200, got %d", out.StatusCode)
		}
	})

	t.Run("v1 explicit status kept", func(t *testing.T) {
		_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
		resp.WriteHeader(http.StatusNotFound)
		resp.End(nil)
		if out := resp.ToV1(); out.StatusCode != http.StatusNotFound {
			t.Errorf("Expected 404, got %d", out.StatusCode)
		}
	})

	t.Run("v2 unset status left for the platform", func(t *testing.T) {
		_, resp := mustPairV2(t, events.APIGatewayV2HTTPRequest{RouteKey: "GET /", RawPath: "/"})
		resp.End(nil)
		if out := resp.ToV2(); out.StatusCode != 0 {
			t.Errorf("Expected unset status to stay zero, got %d", out.StatusCode)
		}
	})

	t.Run("v2 explicit status kept", func(t *testing.T) {
		_, resp := mustPairV2(t, events.APIGatewayV2HTTPRequest{RouteKey: "GET /", RawPath: "/"})
		resp.WriteHeader(http.StatusAccepted)
		resp.End(nil)
		if out := resp.ToV2(); out.StatusCode != http.StatusAccepted {
			t.Errorf("Expected 202, got %d", out.StatusCode)
		}
	})

	t.Run("first WriteHeader wins", func(t *testing.T) {
		_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
		resp.WriteHeader(http.StatusCreated)
		resp.WriteHeader(http.StatusNotFound)
		resp.End(nil)
		if resp.Status() != http.StatusCreated {
			t.Errorf("Expected first status to stick, got %d", resp.Status())
		}
	})
}

func TestResponseHeaderFlattening(t *testing.T) {
	_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})

	resp.Header().Set("Content-Type", "text/plain")
	resp.Header().Add("X-Multi", "a")
	resp.Header().Add("X-Multi", "b")
	resp.Header().Add("Set-Cookie", "a=1")
	resp.Header().Add("Set-Cookie", "b=2")
	resp.End(nil)

	out := resp.ToV1()
	if out.Headers["content-type"] != "text/plain" {
		t.Errorf("Expected lowercased content-type, got %v", out.Headers)
	}
	if out.Headers["x-multi"] != "a,b" {
		t.Errorf("Expected comma-joined multi value, got %q", out.Headers["x-multi"])
	}
	if out.Headers["set-cookie"] != "a=1; b=2" {
		t.Errorf("Expected cookie join with semicolon-space, got %q", out.Headers["set-cookie"])
	}
}

func TestResponseCookieDispatch(t *testing.T) {
	t.Run("v2 splits cookies out of headers", func(t *testing.T) {
		_, resp := mustPairV2(t, events.APIGatewayV2HTTPRequest{RouteKey: "GET /", RawPath: "/"})
		resp.Header().Add("Set-Cookie", "a=1")
		resp.Header().Add("Set-Cookie", "b=2")
		resp.End(nil)

		out := resp.ToV2()
		if len(out.Cookies) != 2 || out.Cookies[0] != "a=1" || out.Cookies[1] != "b=2" {
			t.Errorf("Expected cookies [a=1 b=2], got %v", out.Cookies)
		}
		if _, ok := out.Headers["set-cookie"]; ok {
			t.Error("Expected set-cookie to leave the header map")
		}
	})

	t.Run("v1 keeps cookies in headers", func(t *testing.T) {
		_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
		resp.Header().Add("Set-Cookie", "a=1")
		resp.Header().Add("Set-Cookie", "b=2")
		resp.End(nil)

		out := resp.ToV1()
		if out.Headers["set-cookie"] != "a=1; b=2" {
			t.Errorf("Expected joined set-cookie header, got %q", out.Headers["set-cookie"])
		}
	})

	t.Run("v2 without cookies has none", func(t *testing.T) {
		_, resp := mustPairV2(t, events.APIGatewayV2HTTPRequest{RouteKey: "GET /", RawPath: "/"})
		resp.End(nil)
		if out := resp.ToV2(); out.Cookies != nil {
			t.Errorf("Expected no cookies, got %v", out.Cookies)
		}
	})
}

func TestResponseLambdaResponseDispatch(t *testing.T) {
	t.Run("v1 event yields v1 shape", func(t *testing.T) {
		_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
		resp.End([]byte("ok"))
		result, err := resp.LambdaResponse()
		if err != nil {
			t.Fatalf("Expected serialization to succeed, got %v", err)
		}
		if _, ok := result.(events.APIGatewayProxyResponse); !ok {
			t.Errorf("Expected APIGatewayProxyResponse, got %T", result)
		}
	})

	t.Run("v2 event yields v2 shape", func(t *testing.T) {
		_, resp := mustPairV2(t, events.APIGatewayV2HTTPRequest{RouteKey: "GET /", RawPath: "/"})
		resp.End([]byte("ok"))
		result, err := resp.LambdaResponse()
		if err != nil {
			t.Fatalf("Expected serialization to succeed, got %v", err)
		}
		if _, ok := result.(events.APIGatewayV2HTTPResponse); !ok {
			t.Errorf("Expected APIGatewayV2HTTPResponse, got %T", result)
		}
	})
}

func TestResponseHijackNotImplemented(t *testing.T) {
	_, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/"})
	if _, _, err := resp.Hijack(); !errors.Is(err, ErrNotImplemented) {
		t.Errorf("Expected ErrNotImplemented from Hijack, got %v", err)
	}
	// Flush has nothing to push; it must simply not blow up
	resp.Flush()
}

func TestResponseSetURLAbsorbed(t *testing.T) {
	req, resp := mustPairV1(t, events.APIGatewayProxyRequest{HTTPMethod: "GET", Path: "/keep"})
	resp.SetURL("/elsewhere")
	if req.URL() != "/keep" {
		t.Errorf("Expected request URL untouched, got %q", req.URL())
	}
}
