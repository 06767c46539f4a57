package main

import (
	"bytes"
	"context"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/nalgeon/be"

	"github.com/spachava753/phonebook/provider"
	"github.com/spachava753/phonebook/provider/sqlitestore"
)

// setupEnv points the CLI at a fresh database and settings file.
func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("CONTACTS_DB_PATH", filepath.Join(dir, "contacts.db"))
	t.Setenv("CONTACTS_SETTINGS_PATH", filepath.Join(dir, "settings.toml"))
	t.Setenv("CONTACTS_SMTP_HOST", "")
	t.Setenv("CONTACTS_SMTP_FROM", "")
	return dir
}

// run executes one CLI invocation with a fresh root command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func firstID(t *testing.T) string {
	t.Helper()
	out, err := run(t, "list")
	be.Err(t, err, nil)
	fields := strings.Fields(strings.Split(out, "\n")[0])
	be.True(t, len(fields) > 1)
	return fields[1]
}

func TestCLI_AddListShowEditDelete(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "list")
	be.Err(t, err, nil)
	be.Equal(t, out, "no contacts\n")

	out, err = run(t, "add", "--first", "Ada", "--last", "Lovelace", "--phone", "15551234567")
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "created raw contact "))

	_, err = run(t, "add", "--first", "Grace", "--last", "Hopper", "--phone", "+15550001111")
	be.Err(t, err, nil)

	out, err = run(t, "list")
	be.Err(t, err, nil)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	be.Equal(t, len(lines), 2)
	be.True(t, strings.Contains(lines[0], "Ada Lovelace"))
	be.True(t, strings.Contains(lines[1], "Grace Hopper"))

	out, err = run(t, "list", "-q", "hop")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "Grace Hopper"))
	be.True(t, !strings.Contains(out, "Ada"))

	id := firstID(t)
	out, err = run(t, "show", id)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "Name: Ada Lovelace\nPhone: 15551234567\n"))

	out, err = run(t, "edit", id, "--last", "King", "--photo", "file:///ada.jpg")
	be.Err(t, err, nil)
	be.True(t, strings.HasPrefix(out, "updated contact "+id))

	out, err = run(t, "show", id)
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "Name: Ada King\n"))
	be.True(t, strings.Contains(out, "Photo: file:///ada.jpg\n"))

	out, err = run(t, "edit", id, "--email", "ada@example.com")
	be.Err(t, err, nil)
	be.True(t, strings.Contains(out, "email not saved"))

	_, err = run(t, "delete", id)
	be.Err(t, err, "without --yes")

	out, err = run(t, "delete", id, "--yes")
	be.Err(t, err, nil)
	be.Equal(t, out, "deleted contact "+id+"\n")

	_, err = run(t, "delete", id, "--yes")
	be.Err(t, err, "not found")

	_, err = run(t, "show", id)
	be.Err(t, err, "not_found")
}

func TestCLI_AddValidation(t *testing.T) {
	dir := setupEnv(t)

	_, err := run(t, "add", "--first", "Ada", "--phone", "12345")
	be.Err(t, err, "phone_number")
	_, err = run(t, "add", "--phone", "1234567890")
	be.Err(t, err, "first_name")

	// validation fails before the database is created
	_, statErr := os.Stat(filepath.Join(dir, "contacts.db"))
	be.True(t, os.IsNotExist(statErr))
}

func TestCLI_InvalidID(t *testing.T) {
	setupEnv(t)
	_, err := run(t, "show", "abc")
	be.Err(t, err, "invalid contact id")
	_, err = run(t, "delete", "0", "--yes")
	be.Err(t, err, "invalid contact id")
}

func TestCLI_Call(t *testing.T) {
	dir := setupEnv(t)
	record := filepath.Join(dir, "dialed")
	script := filepath.Join(dir, "opener")
	be.Err(t, os.WriteFile(script, []byte("#!/bin/sh\nprintf '%s' \"$1\" > '"+record+"'\n"), 0o755), nil)
	t.Setenv("CONTACTS_OPENER", script)

	_, err := run(t, "add", "--first", "Ada", "--phone", "+15551234567")
	be.Err(t, err, nil)

	out, err := run(t, "call", firstID(t))
	be.Err(t, err, nil)
	be.Equal(t, out, "calling Ada at tel:+15551234567\n")

	got, err := os.ReadFile(record)
	be.Err(t, err, nil)
	be.Equal(t, string(got), "tel:+15551234567")

	out, err = run(t, "text", firstID(t), "--body", "on my way")
	be.Err(t, err, nil)
	be.Equal(t, out, "texting Ada at +15551234567\n")

	got, err = os.ReadFile(record)
	be.Err(t, err, nil)
	be.Equal(t, string(got), "sms:+15551234567?body=on%20my%20way")
}

func TestCLI_Theme(t *testing.T) {
	setupEnv(t)

	out, err := run(t, "theme")
	be.Err(t, err, nil)
	be.Equal(t, out, "follow_system\n")

	out, err = run(t, "theme", "toggle")
	be.Err(t, err, nil)
	be.Equal(t, out, "night\n")

	out, err = run(t, "theme", "toggle")
	be.Err(t, err, nil)
	be.Equal(t, out, "day\n")

	_, err = run(t, "theme", "set", "sepia")
	be.Err(t, err, "unknown theme")

	out, err = run(t, "theme", "set", "night")
	be.Err(t, err, nil)
	be.Equal(t, out, "night\n")

	out, err = run(t, "theme")
	be.Err(t, err, nil)
	be.Equal(t, out, "night\n")
}

type inbox struct {
	mu   sync.Mutex
	rcpt []string
	data []string
}

func (b *inbox) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &inboxSession{inbox: b}, nil
}

type inboxSession struct {
	inbox *inbox
}

func (s *inboxSession) Mail(string, *smtp.MailOptions) error { return nil }

func (s *inboxSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.inbox.mu.Lock()
	defer s.inbox.mu.Unlock()
	s.inbox.rcpt = append(s.inbox.rcpt, to)
	return nil
}

func (s *inboxSession) Data(r io.Reader) error {
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.inbox.mu.Lock()
	defer s.inbox.mu.Unlock()
	s.inbox.data = append(s.inbox.data, string(b))
	return nil
}

func (s *inboxSession) Reset()        {}
func (s *inboxSession) Logout() error { return nil }

func TestCLI_Email(t *testing.T) {
	dir := setupEnv(t)

	b := &inbox{}
	srv := smtp.NewServer(b)
	srv.Domain = "localhost"
	l, err := net.Listen("tcp", "127.0.0.1:0")
	be.Err(t, err, nil)
	go srv.Serve(l)
	t.Cleanup(func() { srv.Close() })

	host, port, _ := net.SplitHostPort(l.Addr().String())
	t.Setenv("CONTACTS_SMTP_HOST", host)
	t.Setenv("CONTACTS_SMTP_PORT", port)
	t.Setenv("CONTACTS_SMTP_TLS", "false")
	t.Setenv("CONTACTS_SMTP_FROM", "book@example.com")

	_, err = run(t, "add", "--first", "Ada", "--phone", "15551234567")
	be.Err(t, err, nil)
	id := firstID(t)

	_, err = run(t, "email", id, "--body", "hello")
	be.Err(t, err, "has no email address")

	// the create form has no email field, so seed the row directly
	store, err := sqlitestore.Open(filepath.Join(dir, "contacts.db"))
	be.Err(t, err, nil)
	contactID, _ := strconv.ParseInt(id, 10, 64)
	raw, err := store.Query(context.Background(), provider.Query{
		View:    provider.ViewRawContacts,
		Columns: []string{provider.ColumnID},
		Where:   provider.ColumnContactID + " = ?",
		Args:    []any{contactID},
	})
	be.Err(t, err, nil)
	rawID, _ := raw[0].Int64(provider.ColumnID)
	_, err = store.ApplyBatch(context.Background(), provider.Authority, []provider.Operation{
		provider.Insert(provider.TableData, map[string]any{
			provider.ColumnRawContactID: rawID,
			provider.ColumnMimeType:     string(provider.MimeEmail),
			provider.DataAddress:        "ada@example.com",
		}),
	})
	be.Err(t, err, nil)
	be.Err(t, store.Close(), nil)

	out, err := run(t, "email", id, "--subject", "Hi", "--body", "hello")
	be.Err(t, err, nil)
	be.True(t, strings.HasSuffix(out, " to ada@example.com\n"))

	b.mu.Lock()
	defer b.mu.Unlock()
	be.Equal(t, b.rcpt, []string{"ada@example.com"})
	be.Equal(t, len(b.data), 1)
	be.True(t, strings.Contains(b.data[0], "Subject: Hi\r\n"))
}
