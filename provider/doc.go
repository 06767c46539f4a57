// Package provider defines the protocol spoken with a contacts record store.
//
// A record store keeps contacts normalized across three levels:
//
//   - aggregated contacts: one row per logical person, addressed by ContactURI;
//   - raw contacts: one source-specific record, linked to its aggregate;
//   - data rows: typed rows (name, phone, email, photo) in a single generic
//     table, distinguished by MimeType and linked by raw contact id.
//
// Reads go through read-only views (ViewPhones, ViewEmails, ViewRawContacts).
// Writes are submitted as an ordered batch of Operation values. An Operation
// is a tagged variant (OpInsert, OpUpdate, OpDelete) over a Table. A later
// operation may take a column value from the row id produced by an earlier
// insert in the same batch through a BackRef, which is how a name row is tied
// to a raw contact that does not have an id yet.
//
// A Client must apply a batch atomically: every operation commits or none do.
//
// Data rows reuse the generic columns data1..data4. The Data* constants name
// what each column holds for a given MimeType.
package provider
