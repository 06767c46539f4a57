package contacts

import (
	"context"
	"strings"
	"testing"

	"github.com/nalgeon/be"

	"github.com/spachava753/phonebook/provider"
)

var sample = []Contact{
	{ID: 1, FirstName: "Ada", LastName: "Lovelace", PhoneNumber: "15551234567"},
	{ID: 2, FirstName: "Grace", LastName: "Hopper", PhoneNumber: "+15550001111"},
	{ID: 3, FirstName: "Édith", LastName: "Piaf", PhoneNumber: "33140000000"},
	{ID: 4, FirstName: "Alan", LastName: "Turing", PhoneNumber: "44201234567"},
}

func ids(list []Contact) []int64 {
	out := []int64{}
	for _, c := range list {
		out = append(out, c.ID)
	}
	return out
}

func TestFilter(t *testing.T) {
	tests := []struct {
		query string
		want  []int64
	}{
		{"ada", []int64{1}},
		{"LOVE", []int64{1}},
		{"a", []int64{1, 2, 3, 4}},
		{"ho", []int64{2}},
		{"ÉDITH", []int64{3}},
		{"555", []int64{1, 2}},
		{"+1555", []int64{2}},
		{"1234567", []int64{1, 4}},
		{"zzz", []int64{}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			be.Equal(t, ids(Filter(sample, tt.query)), tt.want)
		})
	}
}

func TestFilterEmptyQueryReturnsInput(t *testing.T) {
	got := Filter(sample, "")
	be.Equal(t, got, sample)
	be.Equal(t, len(Filter(nil, "")), 0)
}

func TestFilterResultIsMatchingSubsequence(t *testing.T) {
	for _, q := range []string{"a", "r", "15", "n", "Tu", "x"} {
		got := Filter(sample, q)
		be.True(t, len(got) <= len(sample))

		// order preserved: ids strictly increase as they do in sample
		for i := 1; i < len(got); i++ {
			be.True(t, got[i-1].ID < got[i].ID)
		}
		for _, c := range got {
			lq := strings.ToLower(q)
			match := strings.Contains(strings.ToLower(c.FirstName), lq) ||
				strings.Contains(strings.ToLower(c.LastName), lq) ||
				strings.Contains(c.PhoneNumber, q)
			be.True(t, match)
		}
	}
}

func TestSearch(t *testing.T) {
	client := &fakeClient{phones: []provider.Row{
		{provider.ColumnContactID: int64(1), provider.ColumnDisplayName: "Ada Lovelace", provider.ColumnNumber: "15551234567"},
		{provider.ColumnContactID: int64(2), provider.ColumnDisplayName: "Grace Hopper", provider.ColumnNumber: "15550001111"},
	}}

	got, err := New(client).Search(context.Background(), "hop")
	be.Err(t, err, nil)
	be.Equal(t, ids(got), []int64{2})

	_, err = New(&fakeClient{queryErr: provider.ErrPermissionDenied}).Search(context.Background(), "hop")
	be.Err(t, err, ErrPermissionDenied)
}
