// Package option provides composable query options for gorm-backed stores.
package option

import (
	"fmt"

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

type Condition struct {
	Field    string
	Operator Operator
	Value    any
}

type QueryOption interface {
	Apply(db *gorm.DB) *gorm.DB
}

type optionFunc func(db *gorm.DB) *gorm.DB

func (f optionFunc) Apply(db *gorm.DB) *gorm.DB { return f(db) }

// ApplyOperator adds a single comparison condition.
func ApplyOperator(cond Condition) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		return db.Where(fmt.Sprintf("%s %s ?", cond.Field, cond.Operator), cond.Value)
	})
}

// WithLimit bounds the result set.
func WithLimit(limit int) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if limit <= 0 {
			return db
		}
		return db.Limit(limit)
	})
}

// WithSortBy orders results by field. Direction must be "asc" or "desc";
// anything else falls back to "asc". Field names are expected to be
// application constants, never user input.
func WithSortBy(field, direction string) QueryOption {
	return optionFunc(func(db *gorm.DB) *gorm.DB {
		if direction != "desc" {
			direction = "asc"
		}
		return db.Order(fmt.Sprintf("%s %s", field, direction))
	})
}
