package repository

import "testing"

func TestParseSortFieldAllowList(t *testing.T) {
	cases := []struct {
		in   string
		want SortField
	}{
		{"name", SortByName},
		{"price", SortByPrice},
		{"created_at", SortByCreatedAt},
		{"updated_at", SortByUpdatedAt},
		{"banana", SortByCreatedAt},
		{"price; DROP TABLE products", SortByCreatedAt},
		{"", SortByCreatedAt},
		{"NAME", SortByCreatedAt},
	}

	for _, c := range cases {
		if got := ParseSortField(c.in); got != c.want {
			t.Errorf("ParseSortField(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestParseSortOrder(t *testing.T) {
	cases := []struct {
		in   string
		want SortOrder
	}{
		{"asc", SortOrderAsc},
		{"ASC", SortOrderAsc},
		{"desc", SortOrderDesc},
		{"DESC", SortOrderDesc},
		{"sideways", SortOrderDesc},
		{"", SortOrderDesc},
	}

	for _, c := range cases {
		if got := ParseSortOrder(c.in); got != c.want {
			t.Errorf("ParseSortOrder(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestSortFieldColumnIsQualified(t *testing.T) {
	fields := []SortField{SortByName, SortByPrice, SortByCreatedAt, SortByUpdatedAt}
	want := map[SortField]string{
		SortByName:      "p.name",
		SortByPrice:     "p.price",
		SortByCreatedAt: "p.created_at",
		SortByUpdatedAt: "p.updated_at",
	}

	for _, f := range fields {
		if got := f.column(); got != want[f] {
			t.Errorf("column(%q) = %q, want %q", f, got, want[f])
		}
	}
}
