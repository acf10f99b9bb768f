package models

// QueryResult is the list payload of the admin UI: one page of records plus the
// total row count.
type QueryResult[T any] struct {
	Records []T `json:"records"`
	Total   int `json:"total"`
}

// NewQueryResult never returns a nil Records slice so it encodes as [].
func NewQueryResult[T any](records []T, total int) QueryResult[T] {
	if records == nil {
		records = []T{}
	}
	return QueryResult[T]{Records: records, Total: total}
}

// PageParams is pageNo/pageSize as sent by the UI (pageNo is 1-based).
type PageParams struct {
	PageNo   int
	PageSize int
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 500
)

// Normalize clamps out-of-range values to the defaults.
func (p PageParams) Normalize() PageParams {
	if p.PageNo < 1 {
		p.PageNo = 1
	}
	if p.PageSize < 1 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	return p
}
