package store

import "musiccatalog/internal/models"

// Condition selects a single entity. Conditions built with ByID or Equal run
// as SQL equality on a column; Matching conditions are evaluated in process.
type Condition[T any] struct {
	column string
	value  any
	match  func(*T) bool
}

// ByID matches the entity with the given identity.
func ByID[T any](id int64) Condition[T] {
	return Condition[T]{
		column: "id",
		value:  id,
		match: func(t *T) bool {
			e, ok := any(t).(models.Entity)
			return ok && e.GetID() == id
		},
	}
}

// Equal matches rows whose column equals value. match must agree with the
// SQL comparison so in-memory implementations can evaluate it.
func Equal[T any](column string, value any, match func(*T) bool) Condition[T] {
	return Condition[T]{column: column, value: value, match: match}
}

// Matching evaluates fn against every row in id order.
func Matching[T any](fn func(*T) bool) Condition[T] {
	return Condition[T]{match: fn}
}

// Matches reports whether t satisfies the condition. The zero Condition
// matches everything.
func (c Condition[T]) Matches(t *T) bool {
	if c.match == nil {
		return true
	}
	return c.match(t)
}

func (c Condition[T]) pushdown() (string, any, bool) {
	return c.column, c.value, c.column != ""
}
