// Package phonebook is a lightweight index for the subpackages in this module.
//
// This root package is documentation-only. Import specific subpackages to use
// concrete helpers.
//
// Available subpackages:
//   - github.com/spachava753/phonebook/contacts
//     Load, search, create, edit and delete contacts.
//   - github.com/spachava753/phonebook/provider
//     The record store protocol: views, typed data rows and batched
//     operations with back references.
//   - github.com/spachava753/phonebook/provider/sqlitestore
//     A SQLite record store.
//   - github.com/spachava753/phonebook/dial
//     Start calls by opening tel: URIs.
//   - github.com/spachava753/phonebook/mail
//     Send plain-text email to a contact over SMTP.
//   - github.com/spachava753/phonebook/settings
//     The persisted day/night theme.
//   - github.com/spachava753/phonebook/config
//     CONTACTS_* environment configuration.
//
// The contactctl command under cmd/ wires these together.
//
// Discovery workflow:
//   - Run: go doc github.com/spachava753/phonebook
//   - Then drill in with:
//     go doc github.com/spachava753/phonebook/contacts
//     go doc github.com/spachava753/phonebook/provider
package phonebook
