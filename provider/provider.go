package provider

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Authority identifies the contacts record store in batch submissions and
// resource URIs.
const Authority = "contacts"

// View names a read-only projection of the store.
type View string

const (
	// ViewPhones has one row per phone data row, joined with the owning
	// aggregated contact's display name and photo.
	ViewPhones View = "phones"
	// ViewEmails has one row per email data row.
	ViewEmails View = "emails"
	// ViewRawContacts has one row per raw contact.
	ViewRawContacts View = "raw_contacts"
)

// Table names a writable table.
type Table string

const (
	// TableRawContacts holds raw contacts. Inserting one creates its
	// aggregated contact.
	TableRawContacts Table = "raw_contacts"
	// TableData holds typed data rows.
	TableData Table = "data"
)

// MimeType tags the kind of a data row.
type MimeType string

const (
	MimeName  MimeType = "vnd.phonebook.item/name"
	MimePhone MimeType = "vnd.phonebook.item/phone"
	MimeEmail MimeType = "vnd.phonebook.item/email"
	MimePhoto MimeType = "vnd.phonebook.item/photo"
)

// Column names shared by views and tables.
const (
	ColumnID           = "_id"
	ColumnContactID    = "contact_id"
	ColumnRawContactID = "raw_contact_id"
	ColumnDisplayName  = "display_name"
	ColumnNumber       = "number"
	ColumnType         = "type"
	ColumnPhotoURI     = "photo_uri"
	ColumnAddress      = "address"
	ColumnAccountName  = "account_name"
	ColumnAccountType  = "account_type"
	ColumnLookupKey    = "lookup_key"
	ColumnMimeType     = "mimetype"
	ColumnData1        = "data1"
	ColumnData2        = "data2"
	ColumnData3        = "data3"
	ColumnData4        = "data4"
)

// Generic data columns by mimetype.
const (
	DataDisplayName = ColumnData1 // MimeName
	DataGivenName   = ColumnData2 // MimeName
	DataFamilyName  = ColumnData3 // MimeName
	DataNumber      = ColumnData1 // MimePhone
	DataPhoneType   = ColumnData2 // MimePhone
	DataAddress     = ColumnData1 // MimeEmail
	DataPhotoURI    = ColumnData1 // MimePhoto
)

// PhoneTypeMobile is the phone type tag for mobile numbers.
const PhoneTypeMobile = 2

// Permission is a bit set of store access grants.
type Permission uint8

const (
	PermRead Permission = 1 << iota
	PermWrite

	PermAll = PermRead | PermWrite
)

// Has reports whether p includes every bit of want.
func (p Permission) Has(want Permission) bool {
	return p&want == want
}

// Query selects rows from a view.
//
// Where is a SQL boolean expression using ? placeholders bound to Args.
// SortOrder is a comma separated list of "column [ASC|DESC]" terms. Empty
// Columns selects every column of the view.
type Query struct {
	View      View
	Columns   []string
	Where     string
	Args      []any
	SortOrder string
}

// Row is one result row keyed by column name. NULL columns are nil.
type Row map[string]any

// String returns the column as a string. NULL and missing columns are empty.
func (r Row) String(column string) string {
	switch v := r[column].(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// Int64 returns the column as an integer.
func (r Row) Int64(column string) (int64, bool) {
	switch v := r[column].(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return n, err == nil
	case []byte:
		n, err := strconv.ParseInt(strings.TrimSpace(string(v)), 10, 64)
		return n, err == nil
	default:
		return 0, false
	}
}

// Client is the record store as seen by the contacts layer.
type Client interface {
	// Query returns the rows of q.View matching q.
	Query(ctx context.Context, q Query) ([]Row, error)
	// ApplyBatch applies ops in order as one atomic unit and returns one
	// Result per operation.
	ApplyBatch(ctx context.Context, authority string, ops []Operation) ([]Result, error)
	// Delete removes the resource addressed by uri and returns the number of
	// removed rows.
	Delete(ctx context.Context, uri string) (int, error)
}

// ContactURI addresses one aggregated contact.
func ContactURI(id int64) string {
	return fmt.Sprintf("content://%s/contacts/%d", Authority, id)
}

// ParseContactURI extracts the aggregated contact id from a ContactURI.
func ParseContactURI(uri string) (int64, error) {
	u, err := url.Parse(strings.TrimSpace(uri))
	if err != nil {
		return 0, &Error{Code: ErrorCodeInvalid, Message: fmt.Sprintf("malformed uri %q", uri), Err: err}
	}
	if u.Scheme != "content" || u.Host != Authority {
		return 0, &Error{Code: ErrorCodeInvalid, Message: fmt.Sprintf("uri %q is not a %s resource", uri, Authority)}
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) != 2 || parts[0] != "contacts" {
		return 0, &Error{Code: ErrorCodeInvalid, Message: fmt.Sprintf("uri %q does not address a contact", uri)}
	}
	id, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || id <= 0 {
		return 0, &Error{Code: ErrorCodeInvalid, Message: fmt.Sprintf("uri %q has invalid contact id", uri)}
	}
	return id, nil
}
