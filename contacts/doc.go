// Package contacts is the synchronization, query and mutation layer over a
// provider.Client record store.
//
// The package exposes a small set of primitives:
//
//   - LoadAll: read every phone-bearing contact into a flat []Contact.
//   - Filter and Search: select contacts by a live text query.
//   - Create and Update: translate a form into one atomic batch of dependent
//     operations.
//   - ResolveRawContactID: map an aggregated contact id to its writable raw
//     contact.
//   - Delete: remove an aggregated contact.
//
// The intended composition model is:
//
//	load -> filter -> pick -> update/delete
//
// # Loading
//
// LoadAll issues one phone-view query ordered by display name, then one
// email-view query per contact. That second step is N+1 in the number of
// contacts; WithBatchedEmailLookup replaces it with chunked IN queries and
// yields the same result. Nothing is cached between calls.
//
// # Writes
//
// Create builds exactly three operations: the raw contact insert, then a name
// row and a phone row that both back-reference index 0. Update resolves the raw
// contact first and never submits anything when it is missing. An email given
// to Update only updates an existing email row; UpdateResult.EmailUpdated
// reports whether one was touched. A photo URI replaces the stored photo row.
//
// # Errors
//
// Every failure is an *Error. Use errors.Is with ErrValidation,
// ErrPermissionDenied, ErrNotFound, ErrUnavailable or ErrStore. Validation
// errors never reach the store.
//
// # Composition Examples
//
// 1) Rename the first contact matching a query:
//
//	svc := contacts.New(store)
//	found, err := svc.Search(ctx, "ada")
//	if err != nil || len(found) == 0 {
//		// handle
//	}
//
//	c := found[0]
//	_, err = svc.Update(ctx, contacts.ContactUpdate{
//		ID:          c.ID,
//		FirstName:   "Augusta",
//		LastName:    c.LastName,
//		PhoneNumber: c.PhoneNumber,
//	})
//
// 2) Create a contact and read it back:
//
//	_, err := svc.Create(ctx, contacts.NewContact{
//		FirstName:   "Grace",
//		LastName:    "Hopper",
//		PhoneNumber: "+15550001111",
//	})
//	if errors.Is(err, contacts.ErrValidation) {
//		// show the form error
//	}
//
//	list, err := svc.LoadAll(ctx)
//
// 3) Delete every contact without a last name:
//
//	list, err := svc.LoadAll(ctx)
//	for _, c := range list {
//		if c.LastName == "" {
//			if _, err := svc.Delete(ctx, c.ID); err != nil {
//				// handle
//			}
//		}
//	}
//
//nolint:revive // package comment documents API composition examples.
package contacts
