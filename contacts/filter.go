package contacts

import (
	"context"
	"strings"

	"golang.org/x/text/cases"
)

// Filter returns the contacts whose first name or last name contains query
// case-insensitively, or whose phone number contains query as typed. Order is
// preserved. An empty query returns list itself.
//
// Filter is pure and cheap enough to run per keystroke on contact-list sizes:
// it is O(n*k) in the list length and query length.
func Filter(list []Contact, query string) []Contact {
	if query == "" {
		return list
	}

	fold := cases.Fold()
	needle := fold.String(query)

	out := make([]Contact, 0, len(list))
	for _, c := range list {
		if strings.Contains(fold.String(c.FirstName), needle) ||
			strings.Contains(fold.String(c.LastName), needle) ||
			strings.Contains(c.PhoneNumber, query) {
			out = append(out, c)
		}
	}
	return out
}

// Search loads every contact and filters it with query.
func (s *Service) Search(ctx context.Context, query string) ([]Contact, error) {
	list, err := s.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(list, query), nil
}
