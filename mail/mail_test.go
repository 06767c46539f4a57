package mail

import (
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/nalgeon/be"
)

type received struct {
	from string
	to   []string
	data string
	user string
}

type backend struct {
	mu       sync.Mutex
	messages []received
	password string
}

func (b *backend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &session{backend: b}, nil
}

func (b *backend) inbox() []received {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]received(nil), b.messages...)
}

type session struct {
	backend *backend
	current received
}

func (s *session) AuthMechanisms() []string {
	return []string{sasl.Plain}
}

func (s *session) Auth(_ string) (sasl.Server, error) {
	return sasl.NewPlainServer(func(_, username, password string) error {
		if password != s.backend.password {
			return errors.New("invalid credentials")
		}
		s.current.user = username
		return nil
	}), nil
}

func (s *session) Mail(from string, _ *smtp.MailOptions) error {
	s.current.from = from
	return nil
}

func (s *session) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.current.to = append(s.current.to, to)
	return nil
}

func (s *session) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.current.data = string(b)
	s.backend.mu.Lock()
	s.backend.messages = append(s.backend.messages, s.current)
	s.backend.mu.Unlock()
	return nil
}

func (s *session) Reset() {
	s.current = received{user: s.current.user}
}

func (s *session) Logout() error {
	return nil
}

// startServer runs a plain-TCP SMTP server on a loopback port.
func startServer(t *testing.T) (*backend, Config) {
	t.Helper()
	b := &backend{password: "secret"}
	srv := smtp.NewServer(b)
	srv.Domain = "localhost"
	srv.AllowInsecureAuth = true

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })

	host, port, _ := net.SplitHostPort(l.Addr().String())
	p, _ := strconv.Atoi(port)
	return b, Config{Host: host, Port: p, From: "Phone Book <book@example.com>"}
}

func TestSend(t *testing.T) {
	srv, cfg := startServer(t)
	sender := NewSender(cfg)
	sender.now = func() time.Time { return time.Unix(1700000000, 42) }

	id, err := sender.Send(context.Background(), Message{
		To:       []string{"Ada Lovelace <ada@example.com>", "ADA@example.com"},
		Cc:       []string{"grace@example.com"},
		Subject:  "Hello\r\nBcc: evil@example.com",
		TextBody: "line one\nline two\n",
	})
	be.Err(t, err, nil)
	be.Equal(t, id, "<1700000000000000042.example.com>")

	got := srv.inbox()
	be.Equal(t, len(got), 1)
	be.Equal(t, got[0].from, "book@example.com")
	be.Equal(t, got[0].to, []string{"ada@example.com", "grace@example.com"})
	be.Equal(t, got[0].user, "")

	data := got[0].data
	be.True(t, strings.Contains(data, "Subject: Hello  Bcc: evil@example.com\r\n"))
	be.True(t, strings.Contains(data, "To: ada@example.com, ADA@example.com\r\n"))
	be.True(t, strings.Contains(data, "Cc: grace@example.com\r\n"))
	be.True(t, strings.Contains(data, "Message-ID: <1700000000000000042.example.com>\r\n"))
	be.True(t, strings.Contains(data, "\r\n\r\nline one\r\nline two"))
}

func TestSendWithAuth(t *testing.T) {
	srv, cfg := startServer(t)
	cfg.Username = "book"
	cfg.Password = "secret"

	_, err := NewSender(cfg).Send(context.Background(), Message{To: []string{"ada@example.com"}, TextBody: "hi"})
	be.Err(t, err, nil)
	got := srv.inbox()
	be.Equal(t, len(got), 1)
	be.Equal(t, got[0].user, "book")
	be.True(t, strings.Contains(got[0].data, "Subject: (no subject)\r\n"))

	cfg.Password = "wrong"
	_, err = NewSender(cfg).Send(context.Background(), Message{To: []string{"ada@example.com"}, TextBody: "hi"})
	be.Err(t, err)
	be.Equal(t, len(srv.inbox()), 1)
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Host: "127.0.0.1", Port: 1, From: "book@example.com"}

	_, err := NewSender(Config{}).Send(ctx, Message{To: []string{"ada@example.com"}, TextBody: "hi"})
	be.Err(t, err, ErrNotConfigured)

	_, err = NewSender(cfg).Send(ctx, Message{To: []string{" "}, TextBody: "hi"})
	be.Err(t, err, ErrNoRecipient)

	_, err = NewSender(cfg).Send(ctx, Message{To: []string{"ada@example.com"}, TextBody: "  "})
	be.Err(t, err, ErrNoBody)

	_, err = NewSender(cfg).Send(ctx, Message{To: []string{"not an address"}, TextBody: "hi"})
	be.Err(t, err, "invalid recipient")

	bad := cfg
	bad.From = "nobody"
	_, err = NewSender(bad).Send(ctx, Message{To: []string{"ada@example.com"}, TextBody: "hi"})
	be.Err(t, err, "invalid sender")
}

func TestSendDialFailure(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	be.Err(t, err, nil)
	addr := l.Addr().(*net.TCPAddr)
	l.Close()

	cfg := Config{Host: "127.0.0.1", Port: addr.Port, From: "book@example.com"}
	_, err = NewSender(cfg).Send(context.Background(), Message{To: []string{"ada@example.com"}, TextBody: "hi"})
	be.Err(t, err, "SMTP dial")
}

func TestConfigAddress(t *testing.T) {
	be.Equal(t, Config{Host: "smtp.example.com", TLS: true}.address(), "smtp.example.com:465")
	be.Equal(t, Config{Host: "smtp.example.com"}.address(), "smtp.example.com:25")
	be.Equal(t, Config{Host: "smtp.example.com", Port: 587}.address(), "smtp.example.com:587")
}
