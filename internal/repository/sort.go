package repository

// SortField enumerates the columns a caller may sort product listings by.
// Anything outside the allow-list falls back to created_at; sort input is
// never interpolated into SQL from raw strings.
type SortField string

const (
	SortByName      SortField = "name"
	SortByPrice     SortField = "price"
	SortByCreatedAt SortField = "created_at"
	SortByUpdatedAt SortField = "updated_at"
)

// SortOrder represents the sort direction
type SortOrder string

const (
	SortOrderAsc  SortOrder = "ASC"
	SortOrderDesc SortOrder = "DESC"
)

// ParseSortField maps caller input onto the allow-list, silently falling
// back to created_at for unrecognized values.
func ParseSortField(s string) SortField {
	switch SortField(s) {
	case SortByName, SortByPrice, SortByCreatedAt, SortByUpdatedAt:
		return SortField(s)
	default:
		return SortByCreatedAt
	}
}

// ParseSortOrder accepts asc/desc in any case, falling back to descending.
func ParseSortOrder(s string) SortOrder {
	switch s {
	case "asc", "ASC":
		return SortOrderAsc
	case "desc", "DESC":
		return SortOrderDesc
	default:
		return SortOrderDesc
	}
}

// column returns the qualified column identifier for the sort field. Only
// values produced by ParseSortField ever reach query assembly.
func (f SortField) column() string {
	switch f {
	case SortByName:
		return "p.name"
	case SortByPrice:
		return "p.price"
	case SortByUpdatedAt:
		return "p.updated_at"
	default:
		return "p.created_at"
	}
}
