package contacts

import (
	"context"
	"fmt"
	"strings"

	"github.com/spachava753/phonebook/provider"
)

// emailLookupChunk bounds the IN list of a batched email lookup.
const emailLookupChunk = 500

// LoadAll reads every phone-bearing contact, ordered by display name.
//
// Each phone row becomes one Contact. The email is the oldest email row of the
// contact, looked up per contact unless WithBatchedEmailLookup is set.
func (s *Service) LoadAll(ctx context.Context) ([]Contact, error) {
	rows, err := s.client.Query(ctx, provider.Query{
		View: provider.ViewPhones,
		Columns: []string{
			provider.ColumnContactID,
			provider.ColumnDisplayName,
			provider.ColumnNumber,
			provider.ColumnPhotoURI,
		},
		SortOrder: provider.ColumnDisplayName + " ASC",
	})
	if err != nil {
		return nil, storeError("loading contacts failed", err)
	}

	list := make([]Contact, 0, len(rows))
	for _, row := range rows {
		id, ok := row.Int64(provider.ColumnContactID)
		if !ok {
			return nil, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("phone row has no %s", provider.ColumnContactID)}
		}
		first, last := splitDisplayName(row.String(provider.ColumnDisplayName))
		list = append(list, Contact{
			ID:          id,
			FirstName:   first,
			LastName:    last,
			PhoneNumber: row.String(provider.ColumnNumber),
			PhotoURI:    row.String(provider.ColumnPhotoURI),
		})
	}

	if s.batchEmails {
		err = s.fillEmailsBatched(ctx, list)
	} else {
		err = s.fillEmails(ctx, list)
	}
	if err != nil {
		return nil, err
	}

	s.log.Debug().Int("contacts", len(list)).Msg("contacts loaded")
	return list, nil
}

// Get returns the loaded contact with id.
func (s *Service) Get(ctx context.Context, id int64) (Contact, error) {
	list, err := s.LoadAll(ctx)
	if err != nil {
		return Contact{}, err
	}
	for _, c := range list {
		if c.ID == id {
			return c, nil
		}
	}
	return Contact{}, &Error{Code: ErrorCodeNotFound, Message: fmt.Sprintf("contact %d not found", id)}
}

// fillEmails issues one email query per contact.
func (s *Service) fillEmails(ctx context.Context, list []Contact) error {
	for i := range list {
		email, err := s.lookupEmail(ctx, list[i].ID)
		if err != nil {
			return err
		}
		list[i].Email = email
	}
	return nil
}

func (s *Service) lookupEmail(ctx context.Context, id int64) (string, error) {
	rows, err := s.client.Query(ctx, provider.Query{
		View:      provider.ViewEmails,
		Columns:   []string{provider.ColumnAddress},
		Where:     provider.ColumnContactID + " = ?",
		Args:      []any{id},
		SortOrder: provider.ColumnID + " ASC",
	})
	if err != nil {
		return "", storeError(fmt.Sprintf("loading email for contact %d failed", id), err)
	}
	if len(rows) == 0 {
		return "", nil
	}
	return rows[0].String(provider.ColumnAddress), nil
}

// fillEmailsBatched resolves the same first-address-per-contact mapping with
// one query per chunk of distinct ids.
func (s *Service) fillEmailsBatched(ctx context.Context, list []Contact) error {
	ids := make([]int64, 0, len(list))
	seen := make(map[int64]struct{}, len(list))
	for _, c := range list {
		if _, ok := seen[c.ID]; ok {
			continue
		}
		seen[c.ID] = struct{}{}
		ids = append(ids, c.ID)
	}

	emails := make(map[int64]string, len(ids))
	for start := 0; start < len(ids); start += emailLookupChunk {
		end := min(start+emailLookupChunk, len(ids))
		chunk := ids[start:end]
		args := make([]any, len(chunk))
		for i, id := range chunk {
			args[i] = id
		}
		rows, err := s.client.Query(ctx, provider.Query{
			View:      provider.ViewEmails,
			Columns:   []string{provider.ColumnContactID, provider.ColumnAddress},
			Where:     provider.ColumnContactID + " IN (" + strings.TrimSuffix(strings.Repeat("?, ", len(chunk)), ", ") + ")",
			Args:      args,
			SortOrder: provider.ColumnID + " ASC",
		})
		if err != nil {
			return storeError("loading emails failed", err)
		}
		for _, row := range rows {
			id, ok := row.Int64(provider.ColumnContactID)
			if !ok {
				continue
			}
			if _, done := emails[id]; done {
				continue
			}
			emails[id] = row.String(provider.ColumnAddress)
		}
	}

	for i := range list {
		list[i].Email = emails[list[i].ID]
	}
	return nil
}

// splitDisplayName splits on the first space: the first token is the first
// name and the remainder is the last name.
func splitDisplayName(name string) (string, string) {
	first, last, _ := strings.Cut(name, " ")
	return first, last
}
