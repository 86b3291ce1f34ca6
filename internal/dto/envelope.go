package dto

import "github.com/shopspring/decimal"

func init() {
	// Hours and costs are rendered as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// Envelope is the body of every API response.
type Envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message,omitempty"`
	Count      *int              `json:"count,omitempty"`
	Pagination *Pagination       `json:"pagination,omitempty"`
	Data       any               `json:"data,omitempty"`
	Fields     map[string]string `json:"fields,omitempty"`
}

type Pagination struct {
	Total       int64 `json:"total"`
	Pages       int64 `json:"pages"`
	CurrentPage int   `json:"currentPage"`
	Limit       int   `json:"limit"`
}

// NewPagination computes pages as ceil(total/limit).
func NewPagination(total int64, page, limit int) *Pagination {
	var pages int64
	if limit > 0 {
		pages = (total + int64(limit) - 1) / int64(limit)
	}
	return &Pagination{Total: total, Pages: pages, CurrentPage: page, Limit: limit}
}

// Page is a page request. Page is 1-based.
type Page struct {
	Page  int
	Limit int
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

func (p Page) Offset() int { return (p.Page - 1) * p.Limit }

// OK wraps data in a success envelope.
func OK(data any) Envelope { return Envelope{Success: true, Data: data} }

// List wraps a slice with its count.
func List[T any](items []T) Envelope {
	if items == nil {
		items = []T{}
	}
	n := len(items)
	return Envelope{Success: true, Count: &n, Data: items}
}

// Paged wraps one page of results with its pagination block.
func Paged[T any](items []T, total int64, p Page) Envelope {
	env := List(items)
	env.Pagination = NewPagination(total, p.Page, p.Limit)
	return env
}
