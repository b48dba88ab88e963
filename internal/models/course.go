package models

import (
	"github.com/shopspring/decimal"
)

type CourseKind string

const (
	CourseKindFree CourseKind = "free"
	CourseKindRent CourseKind = "rent"
	CourseKindBuy  CourseKind = "buy"
)

func (k CourseKind) Valid() bool {
	switch k {
	case CourseKindFree, CourseKindRent, CourseKindBuy:
		return true
	}
	return false
}

// Course is read-only for the billing core, the catalog owns it
type Course struct {
	Code  string
	Title string
	Kind  CourseKind
	Price decimal.Decimal
}
