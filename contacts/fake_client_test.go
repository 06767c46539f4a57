package contacts

import (
	"context"

	"github.com/spachava753/phonebook/provider"
)

// fakeClient serves fixed rows per view and records every call.
type fakeClient struct {
	phones []provider.Row
	emails []provider.Row
	raw    []provider.Row

	queryErr   error
	batchErr   error
	deleteErr  error
	deleteN    int
	results    []provider.Result
	queries    []provider.Query
	batches    [][]provider.Operation
	deletedURI []string
}

func (f *fakeClient) Query(_ context.Context, q provider.Query) ([]provider.Row, error) {
	f.queries = append(f.queries, q)
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	var src []provider.Row
	switch q.View {
	case provider.ViewPhones:
		return f.phones, nil
	case provider.ViewEmails:
		src = f.emails
	case provider.ViewRawContacts:
		src = f.raw
	}

	// every filtered query in this package selects by contact_id
	want := make(map[int64]bool, len(q.Args))
	for _, arg := range q.Args {
		want[arg.(int64)] = true
	}
	var out []provider.Row
	for _, row := range src {
		id, _ := row.Int64(provider.ColumnContactID)
		if len(q.Args) == 0 || want[id] {
			out = append(out, row)
		}
	}
	return out, nil
}

func (f *fakeClient) ApplyBatch(_ context.Context, _ string, ops []provider.Operation) ([]provider.Result, error) {
	f.batches = append(f.batches, ops)
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	if f.results != nil {
		return f.results, nil
	}
	out := make([]provider.Result, len(ops))
	for i, op := range ops {
		if op.Kind == provider.OpInsert {
			out[i].ID = int64(100 + i)
		} else {
			out[i].Count = 1
		}
	}
	return out, nil
}

func (f *fakeClient) Delete(_ context.Context, uri string) (int, error) {
	f.deletedURI = append(f.deletedURI, uri)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return f.deleteN, nil
}
