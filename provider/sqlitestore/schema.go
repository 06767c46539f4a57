package sqlitestore

import (
	"fmt"
	"strings"

	"github.com/spachava753/phonebook/provider"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS contacts (
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	lookup_key TEXT NOT NULL UNIQUE,
	created_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS raw_contacts (
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	contact_id INTEGER NOT NULL REFERENCES contacts(_id) ON DELETE CASCADE,
	account_name TEXT,
	account_type TEXT
);
CREATE TABLE IF NOT EXISTS data (
	_id INTEGER PRIMARY KEY AUTOINCREMENT,
	raw_contact_id INTEGER NOT NULL REFERENCES raw_contacts(_id) ON DELETE CASCADE,
	mimetype TEXT NOT NULL,
	data1 TEXT,
	data2 TEXT,
	data3 TEXT,
	data4 TEXT
);
CREATE INDEX IF NOT EXISTS raw_contacts_contact_id ON raw_contacts(contact_id);
CREATE INDEX IF NOT EXISTS data_raw_contact_mimetype ON data(raw_contact_id, mimetype);
`

// viewsSQL builds the read views. The display name prefers an explicit name
// row display name and falls back to "given family".
func viewsSQL() string {
	name := sqlQuote(string(provider.MimeName))
	phone := sqlQuote(string(provider.MimePhone))
	email := sqlQuote(string(provider.MimeEmail))
	photo := sqlQuote(string(provider.MimePhoto))

	return fmt.Sprintf(`
CREATE VIEW IF NOT EXISTS view_phones AS
SELECT
	d._id AS _id,
	r.contact_id AS contact_id,
	d.raw_contact_id AS raw_contact_id,
	c.lookup_key AS lookup_key,
	COALESCE(
		NULLIF(n.data1, ''),
		NULLIF(TRIM(COALESCE(n.data2, '') || ' ' || COALESCE(n.data3, '')), '')
	) AS display_name,
	d.data1 AS number,
	d.data2 AS type,
	p.data1 AS photo_uri
FROM data d
JOIN raw_contacts r ON r._id = d.raw_contact_id
JOIN contacts c ON c._id = r.contact_id
LEFT JOIN data n ON n._id = (
	SELECT MIN(x._id) FROM data x WHERE x.raw_contact_id = r._id AND x.mimetype = %[1]s
)
LEFT JOIN data p ON p._id = (
	SELECT MIN(x._id) FROM data x WHERE x.raw_contact_id = r._id AND x.mimetype = %[4]s
)
WHERE d.mimetype = %[2]s;

CREATE VIEW IF NOT EXISTS view_emails AS
SELECT
	d._id AS _id,
	r.contact_id AS contact_id,
	d.raw_contact_id AS raw_contact_id,
	d.data1 AS address,
	d.data2 AS type
FROM data d
JOIN raw_contacts r ON r._id = d.raw_contact_id
WHERE d.mimetype = %[3]s;

CREATE VIEW IF NOT EXISTS view_raw_contacts AS
SELECT
	_id,
	contact_id,
	account_name,
	account_type
FROM raw_contacts;
`, name, phone, email, photo)
}

type viewDef struct {
	name    string
	columns []string
}

var views = map[provider.View]viewDef{
	provider.ViewPhones: {
		name: "view_phones",
		columns: []string{
			provider.ColumnID,
			provider.ColumnContactID,
			provider.ColumnRawContactID,
			provider.ColumnLookupKey,
			provider.ColumnDisplayName,
			provider.ColumnNumber,
			provider.ColumnType,
			provider.ColumnPhotoURI,
		},
	},
	provider.ViewEmails: {
		name: "view_emails",
		columns: []string{
			provider.ColumnID,
			provider.ColumnContactID,
			provider.ColumnRawContactID,
			provider.ColumnAddress,
			provider.ColumnType,
		},
	},
	provider.ViewRawContacts: {
		name: "view_raw_contacts",
		columns: []string{
			provider.ColumnID,
			provider.ColumnContactID,
			provider.ColumnAccountName,
			provider.ColumnAccountType,
		},
	},
}

// writable lists the columns callers may set per table. raw_contacts.contact_id
// is owned by the store.
var writable = map[provider.Table][]string{
	provider.TableRawContacts: {
		provider.ColumnAccountName,
		provider.ColumnAccountType,
	},
	provider.TableData: {
		provider.ColumnRawContactID,
		provider.ColumnMimeType,
		provider.ColumnData1,
		provider.ColumnData2,
		provider.ColumnData3,
		provider.ColumnData4,
	},
}

func contains(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}

func sqlQuote(value string) string {
	return "'" + strings.ReplaceAll(value, "'", "''") + "'"
}

// parseSortOrder validates "col [ASC|DESC], ..." against allowed columns.
func parseSortOrder(order string, allowed []string) (string, error) {
	order = strings.TrimSpace(order)
	if order == "" {
		return "", nil
	}
	terms := strings.Split(order, ",")
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		fields := strings.Fields(term)
		if len(fields) == 0 || len(fields) > 2 {
			return "", fmt.Errorf("invalid sort term %q", strings.TrimSpace(term))
		}
		if !contains(allowed, fields[0]) {
			return "", fmt.Errorf("unknown sort column %q", fields[0])
		}
		dir := "ASC"
		if len(fields) == 2 {
			dir = strings.ToUpper(fields[1])
			if dir != "ASC" && dir != "DESC" {
				return "", fmt.Errorf("invalid sort direction %q", fields[1])
			}
		}
		out = append(out, fields[0]+" "+dir)
	}
	return strings.Join(out, ", "), nil
}
