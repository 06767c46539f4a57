package dial

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"
)

var ErrMissingNumber = errors.New("dial: phone number is missing")

// Opener hands a URI to whatever handles it on this machine.
type Opener interface {
	Open(ctx context.Context, uri string) error
}

// CommandOpener runs Command with the URI as its only argument.
type CommandOpener struct {
	Command string
}

// DefaultCommand returns the platform URL opener.
func DefaultCommand() string {
	if runtime.GOOS == "darwin" {
		return "open"
	}
	return "xdg-open"
}

// Open runs the opener command and waits for it to exit.
func (o CommandOpener) Open(ctx context.Context, uri string) error {
	name := o.Command
	if name == "" {
		name = DefaultCommand()
	}
	out, err := exec.CommandContext(ctx, name, uri).CombinedOutput()
	if err != nil {
		msg := strings.TrimSpace(string(out))
		if msg == "" {
			return fmt.Errorf("dial: %s: %w", name, err)
		}
		return fmt.Errorf("dial: %s: %w: %s", name, err, msg)
	}
	return nil
}

var numberFormatting = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

// normalizeNumber drops display formatting so "+1 (555) 123-4567" dials as
// "+15551234567".
func normalizeNumber(number string) string {
	return numberFormatting.Replace(strings.TrimSpace(number))
}

// URI returns the tel: URI for number.
func URI(number string) string {
	return "tel:" + normalizeNumber(number)
}

// SMSURI returns the sms: URI for number with an optional prefilled body.
func SMSURI(number, body string) string {
	uri := "sms:" + normalizeNumber(number)
	if body = strings.TrimSpace(body); body != "" {
		uri += "?body=" + strings.ReplaceAll(url.QueryEscape(body), "+", "%20")
	}
	return uri
}

// Call starts a call to number through opener.
func Call(ctx context.Context, opener Opener, number string) error {
	if normalizeNumber(number) == "" {
		return ErrMissingNumber
	}
	if opener == nil {
		opener = CommandOpener{}
	}
	return opener.Open(ctx, URI(number))
}

// Text opens a message composer addressed to number.
func Text(ctx context.Context, opener Opener, number, body string) error {
	if normalizeNumber(number) == "" {
		return ErrMissingNumber
	}
	if opener == nil {
		opener = CommandOpener{}
	}
	return opener.Open(ctx, SMSURI(number, body))
}
