package alert

import (
	"context"
	"net"
	"time"
)

// Sender delivers one preformatted axe message.
type Sender interface {
	Send(ctx context.Context, message string) error
}

// TCPSender opens a fresh connection per message, writes the raw bytes and
// closes, matching the ProServer listener's one-shot protocol. The address
// is resolved per send so config reloads take effect immediately.
type TCPSender struct {
	addr    func() string
	timeout time.Duration
}

func NewTCPSender(addr func() string, timeout time.Duration) *TCPSender {
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	return &TCPSender{addr: addr, timeout: timeout}
}

func (s *TCPSender) Send(ctx context.Context, message string) error {
	d := net.Dialer{Timeout: s.timeout}
	conn, err := d.DialContext(ctx, "tcp", s.addr())
	if err != nil {
		return err
	}
	defer conn.Close()

	conn.SetWriteDeadline(time.Now().Add(s.timeout))
	_, err = conn.Write([]byte(message))
	return err
}
