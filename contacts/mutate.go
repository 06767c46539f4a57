package contacts

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/spachava753/phonebook/provider"
)

var phonePattern = regexp.MustCompile(`^[+]?[0-9]{10,15}$`)

// ValidateNew checks a create form. The first failure wins: first name,
// then phone presence, then phone format.
func ValidateNew(c NewContact) error {
	if strings.TrimSpace(c.FirstName) == "" {
		return validationError(FieldFirstName, "first name is required")
	}
	phone := strings.TrimSpace(c.PhoneNumber)
	if phone == "" {
		return validationError(FieldPhoneNumber, "phone number is required")
	}
	if !phonePattern.MatchString(phone) {
		return validationError(FieldPhoneNumber, "phone number must be 10 to 15 digits with an optional leading +")
	}
	return nil
}

// ValidateUpdate checks an edit form. Only presence is checked.
func ValidateUpdate(u ContactUpdate) error {
	if strings.TrimSpace(u.FirstName) == "" {
		return validationError(FieldFirstName, "first name is required")
	}
	if strings.TrimSpace(u.PhoneNumber) == "" {
		return validationError(FieldPhoneNumber, "phone number is required")
	}
	return nil
}

// BuildCreate returns the three operations that create c: the raw contact,
// its name row and its phone row. Both data rows reference the raw contact
// insert at index 0.
func BuildCreate(c NewContact) ([]provider.Operation, error) {
	c = trimNew(c)
	if err := ValidateNew(c); err != nil {
		return nil, err
	}
	return []provider.Operation{
		provider.Insert(provider.TableRawContacts, map[string]any{
			provider.ColumnAccountName: nil,
			provider.ColumnAccountType: nil,
		}),
		provider.Insert(provider.TableData, map[string]any{
			provider.ColumnMimeType: string(provider.MimeName),
			provider.DataGivenName:  c.FirstName,
			provider.DataFamilyName: c.LastName,
		}).WithBackRef(provider.ColumnRawContactID, 0),
		provider.Insert(provider.TableData, map[string]any{
			provider.ColumnMimeType: string(provider.MimePhone),
			provider.DataNumber:     c.PhoneNumber,
			provider.DataPhoneType:  provider.PhoneTypeMobile,
		}).WithBackRef(provider.ColumnRawContactID, 0),
	}, nil
}

// BuildUpdate returns the operations that apply u to the raw contact rawID.
// The email update is present only when u.Email is set. The photo
// replacement is present only when u.PhotoURI is set.
func BuildUpdate(rawID int64, u ContactUpdate) ([]provider.Operation, error) {
	u = trimUpdate(u)
	if err := ValidateUpdate(u); err != nil {
		return nil, err
	}
	ops := []provider.Operation{
		provider.Update(provider.TableData, provider.ByMimeType(rawID, provider.MimeName), map[string]any{
			provider.DataGivenName:   u.FirstName,
			provider.DataFamilyName:  u.LastName,
			provider.DataDisplayName: strings.TrimSpace(u.FirstName + " " + u.LastName),
		}),
		provider.Update(provider.TableData, provider.ByMimeType(rawID, provider.MimePhone), map[string]any{
			provider.DataNumber: u.PhoneNumber,
		}),
	}
	if u.Email != "" {
		ops = append(ops, provider.Update(provider.TableData, provider.ByMimeType(rawID, provider.MimeEmail), map[string]any{
			provider.DataAddress: u.Email,
		}))
	}
	if u.PhotoURI != "" {
		ops = append(ops,
			provider.Delete(provider.TableData, provider.ByMimeType(rawID, provider.MimePhoto)),
			provider.Insert(provider.TableData, map[string]any{
				provider.ColumnRawContactID: rawID,
				provider.ColumnMimeType:     string(provider.MimePhoto),
				provider.DataPhotoURI:       u.PhotoURI,
			}),
		)
	}
	return ops, nil
}

// Create validates c and inserts it as one atomic batch.
func (s *Service) Create(ctx context.Context, c NewContact) (CreateResult, error) {
	ops, err := BuildCreate(c)
	if err != nil {
		return CreateResult{}, err
	}
	results, err := s.client.ApplyBatch(ctx, provider.Authority, ops)
	if err != nil {
		return CreateResult{}, storeError("creating contact failed", err)
	}
	if len(results) == 0 {
		return CreateResult{}, &Error{Code: ErrorCodeStore, Message: "creating contact returned no results"}
	}

	s.log.Info().Int64("raw_contact_id", results[0].ID).Msg("contact created")
	return CreateResult{RawContactID: results[0].ID}, nil
}

// Update validates u, resolves its raw contact and applies the edit as one
// atomic batch. An unknown ID fails with ErrNotFound before anything is
// submitted.
func (s *Service) Update(ctx context.Context, u ContactUpdate) (UpdateResult, error) {
	if err := ValidateUpdate(u); err != nil {
		return UpdateResult{}, err
	}

	rawID, ok, err := s.ResolveRawContactID(ctx, u.ID)
	if err != nil {
		return UpdateResult{}, err
	}
	if !ok {
		return UpdateResult{}, &Error{Code: ErrorCodeNotFound, Message: fmt.Sprintf("contact %d has no raw contact", u.ID)}
	}

	ops, err := BuildUpdate(rawID, u)
	if err != nil {
		return UpdateResult{}, err
	}
	results, err := s.client.ApplyBatch(ctx, provider.Authority, ops)
	if err != nil {
		return UpdateResult{}, storeError(fmt.Sprintf("updating contact %d failed", u.ID), err)
	}

	res := UpdateResult{RawContactID: rawID, Operations: len(ops)}
	next := 2
	if strings.TrimSpace(u.Email) != "" {
		res.EmailUpdated = next < len(results) && results[next].Count > 0
		if !res.EmailUpdated {
			s.log.Warn().Int64("contact_id", u.ID).Msg("contact has no email row; email left unchanged")
		}
		next++
	}
	if strings.TrimSpace(u.PhotoURI) != "" {
		res.PhotoUpdated = next+1 < len(results) && results[next+1].ID > 0
	}

	s.log.Info().Int64("contact_id", u.ID).Int("operations", len(ops)).Msg("contact updated")
	return res, nil
}

// ResolveRawContactID returns the first raw contact grouped under the
// aggregated contact id. The bool is false when there is none.
//
// A contact with several raw contacts resolves to the first one only.
func (s *Service) ResolveRawContactID(ctx context.Context, id int64) (int64, bool, error) {
	rows, err := s.client.Query(ctx, provider.Query{
		View:    provider.ViewRawContacts,
		Columns: []string{provider.ColumnID},
		Where:   provider.ColumnContactID + " = ?",
		Args:    []any{id},
	})
	if err != nil {
		return 0, false, storeError(fmt.Sprintf("resolving contact %d failed", id), err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	rawID, ok := rows[0].Int64(provider.ColumnID)
	if !ok {
		return 0, false, &Error{Code: ErrorCodeStore, Message: fmt.Sprintf("raw contact row for %d has no %s", id, provider.ColumnID)}
	}
	return rawID, true, nil
}

// Delete removes the aggregated contact id and everything under it. A count
// of zero means nothing matched.
func (s *Service) Delete(ctx context.Context, id int64) (int, error) {
	n, err := s.client.Delete(ctx, provider.ContactURI(id))
	if err != nil {
		return 0, storeError(fmt.Sprintf("deleting contact %d failed", id), err)
	}
	s.log.Info().Int64("contact_id", id).Int("deleted", n).Msg("contact delete applied")
	return n, nil
}

func trimNew(c NewContact) NewContact {
	c.FirstName = strings.TrimSpace(c.FirstName)
	c.LastName = strings.TrimSpace(c.LastName)
	c.PhoneNumber = strings.TrimSpace(c.PhoneNumber)
	return c
}

func trimUpdate(u ContactUpdate) ContactUpdate {
	u.FirstName = strings.TrimSpace(u.FirstName)
	u.LastName = strings.TrimSpace(u.LastName)
	u.PhoneNumber = strings.TrimSpace(u.PhoneNumber)
	u.Email = strings.TrimSpace(u.Email)
	u.PhotoURI = strings.TrimSpace(u.PhotoURI)
	return u
}
