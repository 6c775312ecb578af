package repository

import (
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// ErrUnknownField is returned when a filter names a column outside the allowed set
var ErrUnknownField = errors.New("unknown filter field")

// Operator is a comparison operator usable in a Comparison filter
type Operator string

const (
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpNotEqual     Operator = "<>"
)

// Filter is a typed predicate; filters passed together are AND-combined.
type Filter interface {
	apply(q *gorm.DB, columns map[string]bool) (*gorm.DB, error)
}

// Equals matches rows whose field equals Value
type Equals struct {
	Field string
	Value interface{}
}

// Contains matches rows whose field contains Value as a substring
type Contains struct {
	Field string
	Value string
}

// Range matches rows whose field lies within [From, To]; a nil bound is open
type Range struct {
	Field string
	From  interface{}
	To    interface{}
}

// Comparison matches rows using a single comparison operator
type Comparison struct {
	Field string
	Op    Operator
	Value interface{}
}

func (f Equals) apply(q *gorm.DB, columns map[string]bool) (*gorm.DB, error) {
	if err := checkField(f.Field, columns); err != nil {
		return nil, err
	}
	return q.Where(f.Field+" = ?", f.Value), nil
}

func (f Contains) apply(q *gorm.DB, columns map[string]bool) (*gorm.DB, error) {
	if err := checkField(f.Field, columns); err != nil {
		return nil, err
	}
	return q.Where(f.Field+` LIKE ? ESCAPE '\'`, "%"+escapeLike(f.Value)+"%"), nil
}

func (f Range) apply(q *gorm.DB, columns map[string]bool) (*gorm.DB, error) {
	if err := checkField(f.Field, columns); err != nil {
		return nil, err
	}
	if f.From != nil {
		q = q.Where(f.Field+" >= ?", f.From)
	}
	if f.To != nil {
		q = q.Where(f.Field+" <= ?", f.To)
	}
	return q, nil
}

func (f Comparison) apply(q *gorm.DB, columns map[string]bool) (*gorm.DB, error) {
	if err := checkField(f.Field, columns); err != nil {
		return nil, err
	}
	switch f.Op {
	case OpGreater, OpGreaterEqual, OpLess, OpLessEqual, OpNotEqual:
	default:
		return nil, fmt.Errorf("unsupported operator %q", f.Op)
	}
	return q.Where(fmt.Sprintf("%s %s ?", f.Field, f.Op), f.Value), nil
}

// ApplyFilters adds every filter to the query, rejecting fields outside columns
func ApplyFilters(q *gorm.DB, columns map[string]bool, filters ...Filter) (*gorm.DB, error) {
	var err error
	for _, f := range filters {
		q, err = f.apply(q, columns)
		if err != nil {
			return nil, err
		}
	}
	return q, nil
}

func checkField(field string, columns map[string]bool) error {
	if !columns[field] {
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}
	return nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`).Replace(s)
}

// Page requests one slice of a result set
type Page struct {
	Page  int
	Limit int
}

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// Normalize clamps page and limit to usable values
func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = defaultPageLimit
	}
	if p.Limit > maxPageLimit {
		p.Limit = maxPageLimit
	}
	return p
}

// Offset returns the number of rows to skip
func (p Page) Offset() int {
	return (p.Page - 1) * p.Limit
}

// PageResult is one page of records plus pagination metadata
type PageResult[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
	HasPrev    bool  `json:"has_prev"`
}

// NewPageResult computes pagination metadata for items out of total rows
func NewPageResult[T any](items []T, total int64, page Page) *PageResult[T] {
	totalPages := int((total + int64(page.Limit) - 1) / int64(page.Limit))
	if items == nil {
		items = []T{}
	}
	return &PageResult[T]{
		Items:      items,
		Total:      total,
		Page:       page.Page,
		Limit:      page.Limit,
		TotalPages: totalPages,
		HasNext:    page.Page < totalPages,
		HasPrev:    page.Page > 1,
	}
}
