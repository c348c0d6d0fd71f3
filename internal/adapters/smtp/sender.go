// Package smtp implements the outbound transport over net/smtp.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"os"
	"time"

	"github.com/mailbuf/mailbuf/internal/ports"
)

const (
	defaultPort  = "25"
	dialTimeout  = 30 * time.Second
	sessionLimit = 2 * time.Minute
)

// Sender delivers one message per Send call. The session is opened,
// optionally upgraded to TLS and authenticated, used for exactly one
// message, and closed before Send returns.
type Sender struct {
	host     string
	port     string
	useTLS   bool
	creds    *ports.Credentials
	heloName string
	logger   ports.Logger
}

// NewSender creates a sender for the given host. The host may carry an
// explicit port ("smtp.example.com:587"); without one, port 25 is used.
func NewSender(host string, useTLS bool, creds *ports.Credentials, logger ports.Logger) *Sender {
	h, p, err := net.SplitHostPort(host)
	if err != nil {
		h, p = host, defaultPort
	}
	name, err := os.Hostname()
	if err != nil || name == "" {
		name = "localhost"
	}
	return &Sender{
		host:     h,
		port:     p,
		useTLS:   useTLS,
		creds:    creds,
		heloName: name,
		logger:   logger,
	}
}

// Send performs the full SMTP conversation for one message: dial,
// HELO, optional STARTTLS, optional AUTH, MAIL/RCPT/DATA, QUIT.
// Any failure is returned as-is; there is no retry here.
func (s *Sender) Send(ctx context.Context, from string, to []string, msg []byte) error {
	addr := net.JoinHostPort(s.host, s.port)
	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	defer conn.Close()

	deadline := time.Now().Add(sessionLimit)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		return fmt.Errorf("set deadline: %w", err)
	}

	client, err := smtp.NewClient(conn, s.host)
	if err != nil {
		return fmt.Errorf("new client: %w", err)
	}
	defer client.Close()

	if err := client.Hello(s.heloName); err != nil {
		return fmt.Errorf("helo: %w", err)
	}

	if s.useTLS {
		tlsConf := &tls.Config{
			ServerName: s.host,
			MinVersion: tls.VersionTLS12,
		}
		if err := client.StartTLS(tlsConf); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
		if err := client.Hello(s.heloName); err != nil {
			return fmt.Errorf("post-starttls helo: %w", err)
		}
	}

	if s.creds != nil {
		auth := smtp.PlainAuth("", s.creds.Username, s.creds.Password, s.host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(from); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	for _, rcpt := range to {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("rcpt to %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data start: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("data write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("data close: %w", err)
	}

	if err := client.Quit(); err != nil {
		return fmt.Errorf("quit: %w", err)
	}

	s.logger.Debug("message delivered",
		ports.String("host", addr),
		ports.Int("bytes", len(msg)),
	)
	return nil
}
