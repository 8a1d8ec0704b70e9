package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dpruessner/lambda-event-to-http/internal/middleware"
	"github.com/dpruessner/lambda-event-to-http/pkg/proxy"
)

// pngMagic falls outside printable ASCII, so responses carrying it must
// travel back to API Gateway base64-encoded.
var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}

// DemoHandler handles routes that exercise the event translation paths
type DemoHandler struct{}

// NewDemoHandler creates a new demo handler
func NewDemoHandler() *DemoHandler {
	return &DemoHandler{}
}

// Echo streams the request body back with the caller's content type.
func (h *DemoHandler) Echo(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, middleware.ErrorResponse{
			Error:   "Failed to read request body",
			Message: err.Error(),
		})
		return
	}

	contentType := c.ContentType()
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	c.Data(http.StatusOK, contentType, body)
}

// Event reports the Lambda event the current request was translated from.
// Requests served directly by net/http have no event attached.
func (h *DemoHandler) Event(c *gin.Context) {
	ev, ok := proxy.EventFromContext(c.Request.Context())
	if !ok {
		c.JSON(http.StatusNotFound, middleware.ErrorResponse{
			Error: "No Lambda event attached to this request",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"payload_version": ev.Version.String(),
		"method":          ev.Method(),
		"path":            ev.Path(),
		"request_id":      ev.RequestID(),
		"source_ip":       ev.SourceIP(),
	})
}

// Binary serves non-text bytes.
func (h *DemoHandler) Binary(c *gin.Context) {
	c.Data(http.StatusOK, "application/octet-stream", pngMagic)
}

// Cookies sets two cookies on a single response. Attribute-free values keep
// each cookie a single token on the wire.
func (h *DemoHandler) Cookies(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{Name: "session", Value: "abc123"})
	http.SetCookie(c.Writer, &http.Cookie{Name: "theme", Value: "dark"})

	c.JSON(http.StatusOK, gin.H{"cookies_set": 2})
}

// Subdomains reports the subdomain labels parsed from the Host header.
func (h *DemoHandler) Subdomains(c *gin.Context) {
	subdomains, ok := proxy.SubdomainsFromContext(c.Request.Context())
	if !ok || subdomains == nil {
		subdomains = []string{}
	}

	c.JSON(http.StatusOK, gin.H{"subdomains": subdomains})
}
