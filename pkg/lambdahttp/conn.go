package lambdahttp

import (
	"io"
	"net"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Default local ports chosen by the secure-scheme flag when no explicit port
// is configured.
const (
	defaultSecurePort   = 443
	defaultInsecurePort = 80
)

// ConnMetadata fixes the connection-level facts a Conn reports for its
// lifetime. A zero value yields a loopback IPv4 endpoint on port 80.
type ConnMetadata struct {
	LocalAddress  string
	RemoteAddress string
	RemotePort    int
	Port          int    // Local port; 0 selects 443 or 80 from Secure
	Family        string // "IPv4" or "IPv6"; derived from LocalAddress when empty
	Secure        bool   // Only used to pick the default local port
}

// ConnAddress is the address view a Conn reports, mirroring the metadata it
// was constructed with.
type ConnAddress struct {
	IP     string `json:"address"`
	Port   int    `json:"port"`
	Family string `json:"family"`
}

// Conn is a simulated bidirectional connection endpoint. The read side
// replays a pre-buffered request body; the write side accumulates into a
// Sink. No network I/O ever happens: connection-lifecycle operations either
// behave as no-ops or fail explicitly, so stream-oriented handler code runs
// against it without knowing there is no socket underneath.
//
// Conn implements net.Conn.
type Conn struct {
	mu sync.Mutex

	body []byte // Immutable read source; nil means empty body
	off  int    // Next read position, monotonic, never exceeds len(body)

	sink *Sink // Write accumulator

	local  ConnAddress
	remote ConnAddress

	timer    *time.Timer
	timedOut bool

	bytesRead int64

	destroyed  bool
	destroyErr error
}

var _ net.Conn = (*Conn)(nil)

// NewConn creates a simulated endpoint whose read side replays body. A nil or
// empty body produces an endpoint that is immediately at end-of-stream.
func NewConn(body []byte, meta ConnMetadata) *Conn {
	if meta.LocalAddress == "" {
		meta.LocalAddress = "127.0.0.1"
	}
	if meta.Port == 0 {
		if meta.Secure {
			meta.Port = defaultSecurePort
		} else {
			meta.Port = defaultInsecurePort
		}
	}
	if meta.Family == "" {
		meta.Family = addressFamily(meta.LocalAddress)
	}

	return &Conn{
		body: body,
		sink: NewSink(),
		local: ConnAddress{
			IP:     meta.LocalAddress,
			Port:   meta.Port,
			Family: meta.Family,
		},
		remote: ConnAddress{
			IP:     meta.RemoteAddress,
			Port:   meta.RemotePort,
			Family: addressFamily(meta.RemoteAddress),
		},
	}
}

// addressFamily maps an IP literal to the family label a socket would report
func addressFamily(addr string) string {
	ip := net.ParseIP(addr)
	if ip != nil && ip.To4() == nil {
		return "IPv6"
	}
	return "IPv4"
}

// Read copies up to len(p) bytes of the buffered body, advancing the read
// offset. The read that drains the final byte returns io.EOF alongside the
// data; every read after exhaustion returns (0, io.EOF).
func (c *Conn) Read(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		if c.destroyErr != nil {
			return 0, c.destroyErr
		}
		return 0, io.ErrClosedPipe
	}
	if c.off >= len(c.body) {
		return 0, io.EOF
	}

	n := copy(p, c.body[c.off:])
	c.off += n
	c.bytesRead += int64(n)
	if c.off == len(c.body) {
		return n, io.EOF
	}
	return n, nil
}

// Write appends p to the accumulated response bytes. Writes never
// backpressure; the invoking platform bounds the response size, not this
// endpoint.
func (c *Conn) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.destroyed {
		return 0, io.ErrClosedPipe
	}
	return c.sink.Write(p)
}

// WriteString appends the string form of a chunk
func (c *Conn) WriteString(s string) (int, error) {
	return c.Write([]byte(s))
}

// WrittenBytes returns the concatenation of everything written so far
func (c *Conn) WrittenBytes() []byte {
	return c.sink.Bytes()
}

// BytesRead returns how many body bytes have been consumed
func (c *Conn) BytesRead() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytesRead
}

// BytesWritten returns how many bytes have been accumulated on the write side
func (c *Conn) BytesWritten() int64 {
	return c.sink.Len()
}

// ReadyState reports the fixed connection state. A simulated endpoint is
// delivered complete and stays "open" for the single invocation it serves.
func (c *Conn) ReadyState() string {
	return "open"
}

// Address returns the local address view built from the stored metadata
func (c *Conn) Address() ConnAddress {
	return c.local
}

// LocalAddr returns the configured local endpoint address
func (c *Conn) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(c.local.IP), Port: c.local.Port}
}

// RemoteAddr returns the configured remote endpoint address
func (c *Conn) RemoteAddr() net.Addr {
	return &net.TCPAddr{IP: net.ParseIP(c.remote.IP), Port: c.remote.Port}
}

// newSingleShotTimer arms a timer that fires fn exactly once after d.
// Non-positive durations have no single-shot meaning and are rejected.
func newSingleShotTimer(d time.Duration, fn func()) (*time.Timer, error) {
	if d <= 0 {
		return nil, ErrTimerDuration
	}
	return time.AfterFunc(d, fn), nil
}

// SetTimeout arms the endpoint's single inactivity timer. A zero duration
// cancels any pending timer and nothing more. A positive duration replaces
// the pending timer; when it fires, the timed-out flag is set, callback runs
// if non-nil, and the timer clears itself. Negative durations are rejected.
func (c *Conn) SetTimeout(d time.Duration, callback func()) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	if d == 0 {
		c.mu.Unlock()
		return nil
	}

	timer, err := newSingleShotTimer(d, func() {
		c.mu.Lock()
		c.timedOut = true
		c.timer = nil
		c.mu.Unlock()

		logrus.WithField("timeout", d).Debug("Simulated connection timed out")
		if callback != nil {
			callback()
		}
	})
	if err != nil {
		c.mu.Unlock()
		return err
	}
	c.timer = timer
	c.mu.Unlock()
	return nil
}

// TimedOut reports whether the inactivity timer ever fired
func (c *Conn) TimedOut() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timedOut
}

// Connect has no meaning for an endpoint that never dials anything
func (c *Conn) Connect(network, address string) error {
	return ErrNotImplemented
}

// DestroySoon has no meaning without a real socket to drain
func (c *Conn) DestroySoon() error {
	return ErrNotImplemented
}

// ResetAndDestroy degrades to an ordinary destroy; there is no peer to reset
func (c *Conn) ResetAndDestroy() error {
	return c.Destroy(nil)
}

// SetNoDelay is accepted and ignored; there is no socket to tune
func (c *Conn) SetNoDelay(noDelay bool) error {
	logrus.WithField("no_delay", noDelay).Debug("SetNoDelay ignored on simulated connection")
	return nil
}

// SetKeepAlive is accepted and ignored; there is no socket to tune
func (c *Conn) SetKeepAlive(keepAlive bool) error {
	logrus.WithField("keep_alive", keepAlive).Debug("SetKeepAlive ignored on simulated connection")
	return nil
}

// Ref is accepted and ignored; invocation lifetime is managed by the platform
func (c *Conn) Ref() {}

// Unref is accepted and ignored; invocation lifetime is managed by the platform
func (c *Conn) Unref() {}

// SetDeadline is accepted and ignored; SetTimeout carries the one supported
// timing primitive
func (c *Conn) SetDeadline(t time.Time) error {
	logrus.Debug("SetDeadline ignored on simulated connection")
	return nil
}

// SetReadDeadline is accepted and ignored
func (c *Conn) SetReadDeadline(t time.Time) error {
	logrus.Debug("SetReadDeadline ignored on simulated connection")
	return nil
}

// SetWriteDeadline is accepted and ignored
func (c *Conn) SetWriteDeadline(t time.Time) error {
	logrus.Debug("SetWriteDeadline ignored on simulated connection")
	return nil
}

// CloseWrite closes the accumulating side only, leaving the read side and the
// collected bytes intact
func (c *Conn) CloseWrite() error {
	return c.sink.Close()
}

// Destroy tears the endpoint down, recording err as the reason when non-nil.
// The pending timer is cancelled, the write side is closed, and subsequent
// reads surface the recorded error. Destroying twice is harmless.
func (c *Conn) Destroy(err error) error {
	c.mu.Lock()
	if c.destroyed {
		c.mu.Unlock()
		return nil
	}
	c.destroyed = true
	c.destroyErr = err
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	if err != nil {
		logrus.WithError(err).Debug("Simulated connection destroyed with error")
	}
	return c.sink.Close()
}

// Close implements net.Conn by destroying the endpoint without an error
func (c *Conn) Close() error {
	return c.Destroy(nil)
}

// Destroyed reports whether the endpoint has been torn down
func (c *Conn) Destroyed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.destroyed
}
