package model

// Pagination defaults shared by every list endpoint.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// Page is a limit/offset window.
type Page struct {
	Limit  int
	Offset int
}

// NewPage clamps limit to [1, MaxListLimit] (0 or negative means the default)
// and offset to >= 0.
func NewPage(limit, offset int) Page {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return Page{Limit: limit, Offset: offset}
}
