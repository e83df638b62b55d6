// Package relations edits the ordered child collections of catalog entities.
// Children are addressed by 1-based position; removing position k shifts the
// later children down by one.
package relations

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"musiccatalog/internal/store"
)

var (
	// ErrInvalidPosition indicates the position could not be parsed.
	ErrInvalidPosition = fmt.Errorf("%w: invalid position", store.ErrValidation)
	// ErrPositionOutOfRange indicates no child exists at the position.
	ErrPositionOutOfRange = fmt.Errorf("%w: position out of range", store.ErrNotFound)
)

// Finder looks up a single entity.
type Finder[T any] interface {
	GetSingleByCondition(ctx context.Context, cond store.Condition[T], includes ...string) (*T, error)
}

// Repository is the persistence needed for the parent side of a relation.
type Repository[T any] interface {
	Finder[T]
	Update(ctx context.Context, entity *T) (*T, error)
}

// Editor manages one named relation between parents P and children C.
type Editor[P, C any] struct {
	parents  Repository[P]
	children Finder[C]
	relation string
	items    func(*P) *[]C
}

// NewEditor builds an Editor for relation. items must return the parent's
// slice backing that relation.
func NewEditor[P, C any](parents Repository[P], children Finder[C], relation string, items func(*P) *[]C) *Editor[P, C] {
	return &Editor[P, C]{
		parents:  parents,
		children: children,
		relation: relation,
		items:    items,
	}
}

// Relation returns the relation name the editor loads.
func (e *Editor[P, C]) Relation() string {
	return e.relation
}

// Items returns the loaded children of parent.
func (e *Editor[P, C]) Items(parent *P) []C {
	return *e.items(parent)
}

// List returns the children of the parent in order.
func (e *Editor[P, C]) List(ctx context.Context, parentID int64) ([]C, error) {
	parent, err := e.parent(ctx, parentID)
	if err != nil {
		return nil, err
	}
	return *e.items(parent), nil
}

// At returns the child at the 1-based position.
func (e *Editor[P, C]) At(ctx context.Context, parentID int64, position int) (*C, error) {
	parent, err := e.parent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	items := *e.items(parent)
	if err := checkPosition(position, len(items)); err != nil {
		return nil, err
	}
	child := items[position-1]
	return &child, nil
}

// Attach appends the child to the parent's collection and persists the
// parent. The same child may be attached more than once.
func (e *Editor[P, C]) Attach(ctx context.Context, parentID, childID int64) (*P, error) {
	parent, err := e.parent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	child, err := e.children.GetSingleByCondition(ctx, store.ByID[C](childID))
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", e.relation, err)
	}

	items := e.items(parent)
	*items = append(*items, *child)

	updated, err := e.parents.Update(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("attach %s: %w", e.relation, err)
	}
	return updated, nil
}

// Detach removes the child at the 1-based position and persists the parent.
func (e *Editor[P, C]) Detach(ctx context.Context, parentID int64, position int) (*P, error) {
	parent, err := e.parent(ctx, parentID)
	if err != nil {
		return nil, err
	}

	items := e.items(parent)
	current := *items
	if err := checkPosition(position, len(current)); err != nil {
		return nil, err
	}

	next := make([]C, 0, len(current)-1)
	next = append(next, current[:position-1]...)
	next = append(next, current[position:]...)
	*items = next

	updated, err := e.parents.Update(ctx, parent)
	if err != nil {
		return nil, fmt.Errorf("detach %s: %w", e.relation, err)
	}
	return updated, nil
}

func (e *Editor[P, C]) parent(ctx context.Context, parentID int64) (*P, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("load %s: %w: %w", e.relation, store.ErrStorage, err)
	}

	parent, err := e.parents.GetSingleByCondition(ctx, store.ByID[P](parentID), e.relation)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", e.relation, err)
	}
	if *e.items(parent) == nil {
		*e.items(parent) = []C{}
	}
	return parent, nil
}

// ParsePosition parses a position taken from a request path. Range checks
// happen against the loaded collection.
func ParsePosition(raw string) (int, error) {
	position, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidPosition, raw)
	}
	return position, nil
}

func checkPosition(position, length int) error {
	if position < 1 || position > length {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrPositionOutOfRange, position, length)
	}
	return nil
}
