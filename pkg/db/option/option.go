// Package option composes reusable gorm query fragments.
package option

import (
	"fmt"

	"github.com/shopstack/shopbill/pkg/db/pagination"
	"gorm.io/gorm"
)

type Operator string

const (
	EQ  Operator = "="
	GT  Operator = ">"
	GTE Operator = ">="
	LT  Operator = "<"
	LTE Operator = "<="
)

type QueryOption interface {
	Apply(*gorm.DB) *gorm.DB
}

type optionFunc func(*gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

// WithSearch adds a LIKE filter matching the term against any of the columns.
func WithSearch(term string, columns ...string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if term == "" || len(columns) == 0 {
			return db
		}
		like := "%" + term + "%"
		clause := ""
		args := make([]any, 0, len(columns))
		for i, col := range columns {
			if i > 0 {
				clause += " OR "
			}
			clause += col + " LIKE ?"
			args = append(args, like)
		}
		return db.Where(clause, args...)
	})
}

// ApplyOperator adds a single comparison condition.
func ApplyOperator(cond Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
	})
}

type QuerySortBy struct {
	Field string
	Desc  bool
	Allow map[string]bool
}

// WithSortBy adds an ORDER BY for a whitelisted column. Unknown fields fall
// back to created_at desc.
func WithSortBy(sort QuerySortBy) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		field := sort.Field
		if field == "" || (sort.Allow != nil && !sort.Allow[field]) {
			return db.Order("created_at desc")
		}
		dir := "asc"
		if sort.Desc {
			dir = "desc"
		}
		return db.Order(fmt.Sprintf("%s %s", field, dir))
	})
}

// ApplyPagination applies a decoded cursor and page-size limit.
func ApplyPagination(page pagination.Pagination) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if page.PageToken != "" {
			cursor, err := pagination.DecodeCursor(page.PageToken)
			if err == nil && cursor.CreatedAt != "" {
				db = db.Where("created_at < ?", cursor.CreatedAt)
			}
		}
		if page.PageSize > 0 {
			db = db.Limit(page.PageSize)
		}
		return db
	})
}

// ApplyOffset applies classic page/limit pagination.
func ApplyOffset(page, limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit > 0 {
			db = db.Limit(limit)
			if page > 1 {
				db = db.Offset((page - 1) * limit)
			}
		}
		return db
	})
}
