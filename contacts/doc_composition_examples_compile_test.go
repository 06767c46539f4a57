package contacts_test

import (
	"context"
	"errors"
	"fmt"

	"github.com/spachava753/phonebook/contacts"
	"github.com/spachava753/phonebook/provider"
)

func composeRenameFirstMatch(ctx context.Context, store provider.Client) error {
	svc := contacts.New(store)
	found, err := svc.Search(ctx, "ada")
	if err != nil {
		return err
	}
	if len(found) == 0 {
		return nil
	}

	c := found[0]
	_, err = svc.Update(ctx, contacts.ContactUpdate{
		ID:          c.ID,
		FirstName:   "Augusta",
		LastName:    c.LastName,
		PhoneNumber: c.PhoneNumber,
	})
	return err
}

func composeCreateThenLoad(ctx context.Context, store provider.Client) ([]contacts.Contact, error) {
	svc := contacts.New(store)
	_, err := svc.Create(ctx, contacts.NewContact{
		FirstName:   "Grace",
		LastName:    "Hopper",
		PhoneNumber: "+15550001111",
	})
	if errors.Is(err, contacts.ErrValidation) {
		return nil, fmt.Errorf("form rejected: %w", err)
	}
	if err != nil {
		return nil, err
	}
	return svc.LoadAll(ctx)
}

func composeDeleteWithoutLastName(ctx context.Context, store provider.Client) error {
	svc := contacts.New(store, contacts.WithBatchedEmailLookup())
	list, err := svc.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, c := range list {
		if c.LastName != "" {
			continue
		}
		if _, err := svc.Delete(ctx, c.ID); err != nil {
			return err
		}
	}
	return nil
}

