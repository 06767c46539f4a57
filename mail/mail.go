package mail

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	netmail "net/mail"
	"strconv"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/rs/zerolog"
)

var (
	ErrNotConfigured = errors.New("mail: SMTP host and sender are required")
	ErrNoRecipient   = errors.New("mail: at least one recipient is required")
	ErrNoBody        = errors.New("mail: text body is required")
)

// Config describes an SMTP submission endpoint.
//
// TLS selects implicit TLS (port 465 style). Username enables SASL PLAIN.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	TLS      bool
}

// Message is a plain-text message.
type Message struct {
	To       []string
	Cc       []string
	Subject  string
	TextBody string
}

// Sender submits messages over SMTP.
type Sender struct {
	cfg Config
	log zerolog.Logger
	now func() time.Time
}

// Option configures a Sender.
type Option func(*Sender)

// WithLogger sets the sender logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Sender) {
		s.log = logger
	}
}

// NewSender returns a Sender for cfg.
func NewSender(cfg Config, opts ...Option) *Sender {
	s := &Sender{cfg: cfg, log: zerolog.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Configured reports whether cfg names a host and a sender.
func (c Config) Configured() bool {
	return strings.TrimSpace(c.Host) != "" && strings.TrimSpace(c.From) != ""
}

func (c Config) address() string {
	port := c.Port
	if port == 0 {
		port = 465
		if !c.TLS {
			port = 25
		}
	}
	return net.JoinHostPort(c.Host, strconv.Itoa(port))
}

// Send validates msg, submits it and returns its Message-ID.
func (s *Sender) Send(ctx context.Context, msg Message) (string, error) {
	if !s.cfg.Configured() {
		return "", ErrNotConfigured
	}
	from, err := netmail.ParseAddress(s.cfg.From)
	if err != nil {
		return "", fmt.Errorf("mail: invalid sender %q: %w", s.cfg.From, err)
	}
	to, err := parseRecipients(msg.To)
	if err != nil {
		return "", err
	}
	cc, err := parseRecipients(msg.Cc)
	if err != nil {
		return "", err
	}
	recipients := uniqueRecipients(to, cc)
	if len(recipients) == 0 {
		return "", ErrNoRecipient
	}
	if strings.TrimSpace(msg.TextBody) == "" {
		return "", ErrNoBody
	}

	messageID := generateMessageID(from.Address, s.now())
	raw := buildMessage(from.String(), to, cc, msg, messageID, s.now())

	client, err := s.connect(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	if err := client.Mail(from.Address, nil); err != nil {
		return "", fmt.Errorf("mail: MAIL FROM failed: %w", err)
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt, nil); err != nil {
			return "", fmt.Errorf("mail: RCPT TO %q failed: %w", rcpt, err)
		}
	}

	writer, err := client.Data()
	if err != nil {
		return "", fmt.Errorf("mail: DATA failed: %w", err)
	}
	if _, err := writer.Write(raw); err != nil {
		return "", fmt.Errorf("mail: writing message failed: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("mail: finalizing message failed: %w", err)
	}
	if err := client.Quit(); err != nil {
		return "", fmt.Errorf("mail: QUIT failed: %w", err)
	}

	s.log.Info().Str("message_id", messageID).Int("recipients", len(recipients)).Msg("mail sent")
	return messageID, nil
}

func (s *Sender) connect(ctx context.Context) (*smtp.Client, error) {
	addr := s.cfg.address()
	dialer := &net.Dialer{Timeout: 30 * time.Second}

	var (
		conn net.Conn
		err  error
	)
	if s.cfg.TLS {
		tlsDialer := &tls.Dialer{NetDialer: dialer, Config: &tls.Config{ServerName: s.cfg.Host}}
		conn, err = tlsDialer.DialContext(ctx, "tcp", addr)
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, fmt.Errorf("mail: SMTP dial %s failed: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client := smtp.NewClient(conn)
	if s.cfg.Username != "" {
		auth := sasl.NewPlainClient("", s.cfg.Username, s.cfg.Password)
		if err := client.Auth(auth); err != nil {
			client.Close()
			return nil, fmt.Errorf("mail: SMTP auth failed: %w", err)
		}
	}
	return client, nil
}

func parseRecipients(values []string) ([]string, error) {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		addr, err := netmail.ParseAddress(value)
		if err != nil {
			return nil, fmt.Errorf("mail: invalid recipient %q: %w", value, err)
		}
		out = append(out, addr.Address)
	}
	return out, nil
}

func uniqueRecipients(groups ...[]string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, 8)
	for _, group := range groups {
		for _, recipient := range group {
			key := strings.ToLower(recipient)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, recipient)
		}
	}
	return out
}

func buildMessage(from string, to, cc []string, msg Message, messageID string, now time.Time) []byte {
	subject := sanitizeHeader(msg.Subject)
	if subject == "" {
		subject = "(no subject)"
	}

	headers := []string{
		"From: " + from,
		"To: " + strings.Join(to, ", "),
		"Subject: " + subject,
		"Date: " + now.Format(time.RFC1123Z),
		"Message-ID: " + messageID,
		"MIME-Version: 1.0",
	}
	if len(cc) > 0 {
		headers = append(headers, "Cc: "+strings.Join(cc, ", "))
	}
	headers = append(headers, "Content-Type: text/plain; charset=UTF-8")
	return []byte(strings.Join(headers, "\r\n") + "\r\n\r\n" + normalizeBody(msg.TextBody) + "\r\n")
}

func sanitizeHeader(value string) string {
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return strings.TrimSpace(value)
}

func normalizeBody(body string) string {
	body = strings.ReplaceAll(body, "\r\n", "\n")
	body = strings.ReplaceAll(body, "\r", "\n")
	body = strings.ReplaceAll(body, "\n", "\r\n")
	return strings.TrimSpace(body)
}

func generateMessageID(address string, now time.Time) string {
	domain := "localhost"
	if at := strings.LastIndex(address, "@"); at >= 0 && at < len(address)-1 {
		domain = address[at+1:]
	}
	return fmt.Sprintf("<%d.%s>", now.UnixNano(), domain)
}
