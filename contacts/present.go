package contacts

import (
	"strings"
	"unicode"
	"unicode/utf16"
)

var avatarPalette = [...]string{
	"#FF6B6B", "#4ECDC4", "#45B7D1", "#FFA07A",
	"#98D8C8", "#F7DC6F", "#BB8FCE", "#85C1E2",
	"#F8B195", "#F67280", "#C06C84", "#6C5B7B",
}

// FullName returns "first last" without surrounding space.
func (c Contact) FullName() string {
	return strings.TrimSpace(c.FirstName + " " + c.LastName)
}

// Initial returns the upper-cased first letter of the first name, or "?".
func (c Contact) Initial() string {
	for _, r := range c.FirstName {
		return string(unicode.ToUpper(r))
	}
	return "?"
}

// Details renders the contact as a short plain-text block, suitable for
// sharing. The email line is omitted when there is no email.
func (c Contact) Details() string {
	var b strings.Builder
	b.WriteString("Name: " + c.FirstName + " " + c.LastName + "\n")
	b.WriteString("Phone: " + c.PhoneNumber + "\n")
	if c.Email != "" {
		b.WriteString("Email: " + c.Email + "\n")
	}
	return b.String()
}

// AvatarColor picks a stable palette colour for an initial.
//
// The index is the 32-bit hash s[0]*31^(n-1) + ... + s[n-1] over the UTF-16
// code units of initial, modulo the palette size. A negative index maps to
// the first colour.
func AvatarColor(initial string) string {
	var h int32
	for _, u := range utf16.Encode([]rune(initial)) {
		h = 31*h + int32(u)
	}
	i := int(h % int32(len(avatarPalette)))
	if i < 0 {
		i = 0
	}
	return avatarPalette[i]
}
