package store

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/lib/pq"
)

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Schema describes how an entity maps onto its table. Columns are written on
// insert and update; Derived columns are only read because a relation
// maintains them.
type Schema[T any] struct {
	Table     string
	Columns   []string
	Derived   []string
	Fields    func(*T) []any
	Values    func(*T) []any
	ID        func(*T) *int64
	Version   func(*T) *int64
	Validate  func(*T) error
	Relations []Relation[T]
}

func (s *Schema[T]) selectList(alias string) string {
	prefix := ""
	if alias != "" {
		prefix = alias + "."
	}
	cols := make([]string, 0, len(s.Columns)+len(s.Derived)+2)
	cols = append(cols, prefix+"id")
	for _, c := range s.Columns {
		cols = append(cols, prefix+c)
	}
	for _, c := range s.Derived {
		cols = append(cols, prefix+c)
	}
	cols = append(cols, prefix+"version")
	return strings.Join(cols, ", ")
}

func (s *Schema[T]) dest(t *T) []any {
	d := make([]any, 0, len(s.Columns)+len(s.Derived)+2)
	d = append(d, s.ID(t))
	d = append(d, s.Fields(t)...)
	return append(d, s.Version(t))
}

func (s *Schema[T]) hasColumn(name string) bool {
	return name == "id" || slices.Contains(s.Columns, name) || slices.Contains(s.Derived, name)
}

func (s *Schema[T]) validate(t *T) error {
	if s.Validate == nil {
		return nil
	}
	if err := s.Validate(t); err != nil {
		return fmt.Errorf("%s: %w: %w", s.Table, ErrValidation, err)
	}
	return nil
}

func (s *Schema[T]) resolve(names []string) ([]Relation[T], error) {
	if len(names) == 0 {
		return nil, nil
	}
	resolved := make([]Relation[T], 0, len(names))
	for _, name := range names {
		idx := slices.IndexFunc(s.Relations, func(r Relation[T]) bool { return r.Name() == name })
		if idx < 0 {
			return nil, fmt.Errorf("%s: %w: %q", s.Table, ErrUnknownRelation, name)
		}
		resolved = append(resolved, s.Relations[idx])
	}
	return resolved, nil
}

// Relation is a named association that can be loaded for a batch of parents
// and persisted for a single parent.
type Relation[P any] interface {
	Name() string
	load(ctx context.Context, q querier, ids []int64, parents map[int64]*P) error
	save(ctx context.Context, tx *sql.Tx, parentID int64, parent *P) error
}

// Collection is an ordered many-to-many association stored in a join table
// keyed by (parent, position). Duplicates are allowed. When BackRef is set the
// child table column of that name points at the parent holding the child.
type Collection[P, C any] struct {
	RelationName string
	JoinTable    string
	ParentColumn string
	ChildColumn  string
	BackRef      string
	SetBackRef   func(*C, *int64)
	Child        *Schema[C]
	Items        func(*P) *[]C
}

func (c *Collection[P, C]) Name() string { return c.RelationName }

func (c *Collection[P, C]) load(ctx context.Context, q querier, ids []int64, parents map[int64]*P) error {
	for _, p := range parents {
		*c.Items(p) = []C{}
	}

	query := fmt.Sprintf(`
		SELECT j.%s, %s
		FROM %s j
		JOIN %s c ON c.id = j.%s
		WHERE j.%s = ANY($1)
		ORDER BY j.%s, j.position
	`, c.ParentColumn, c.Child.selectList("c"), c.JoinTable, c.Child.Table, c.ChildColumn, c.ParentColumn, c.ParentColumn)

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return classify("select "+c.JoinTable, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			parentID int64
			child    C
		)
		dest := append([]any{&parentID}, c.Child.dest(&child)...)
		if err := rows.Scan(dest...); err != nil {
			return classify("scan "+c.JoinTable, err)
		}
		if p, ok := parents[parentID]; ok {
			items := c.Items(p)
			*items = append(*items, child)
		}
	}
	if err := rows.Err(); err != nil {
		return classify("iterate "+c.JoinTable, err)
	}
	return nil
}

// save rewrites the join rows of a loaded collection as positions 1..n.
func (c *Collection[P, C]) save(ctx context.Context, tx *sql.Tx, parentID int64, parent *P) error {
	items := *c.Items(parent)
	if items == nil {
		return nil
	}

	childIDs := make([]int64, len(items))
	for i := range items {
		childIDs[i] = *c.Child.ID(&items[i])
	}

	if c.BackRef != "" {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			UPDATE %s
			SET %s = NULL
			WHERE %s = $1
		`, c.Child.Table, c.BackRef, c.BackRef), parentID); err != nil {
			return classify("clear "+c.Child.Table+"."+c.BackRef, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		DELETE FROM %s
		WHERE %s = $1
	`, c.JoinTable, c.ParentColumn), parentID); err != nil {
		return classify("delete "+c.JoinTable, err)
	}

	if len(childIDs) == 0 {
		return nil
	}

	// A child with a back-reference belongs to one parent at a time, so
	// attaching it here detaches it from any other parent's collection.
	if c.BackRef != "" {
		if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
			DELETE FROM %s
			WHERE %s = ANY($1)
		`, c.JoinTable, c.ChildColumn), pq.Array(childIDs)); err != nil {
			return classify("move "+c.JoinTable, err)
		}
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, position, %s)
		SELECT $1, t.position, t.child_id
		FROM unnest($2::bigint[]) WITH ORDINALITY AS t(child_id, position)
	`, c.JoinTable, c.ParentColumn, c.ChildColumn), parentID, pq.Array(childIDs)); err != nil {
		return classify("insert "+c.JoinTable, err)
	}

	if c.BackRef == "" {
		return nil
	}

	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET %s = $1
		WHERE id = ANY($2)
	`, c.Child.Table, c.BackRef), parentID, pq.Array(childIDs)); err != nil {
		return classify("set "+c.Child.Table+"."+c.BackRef, err)
	}
	if c.SetBackRef != nil {
		for i := range items {
			ref := parentID
			c.SetBackRef(&items[i], &ref)
		}
	}
	return nil
}

// Owned is a read-only one-to-many association where each child row carries
// the parent id in ForeignKey. Children are ordered by id.
type Owned[P, C any] struct {
	RelationName string
	ForeignKey   string
	Child        *Schema[C]
	Items        func(*P) *[]C
}

func (o *Owned[P, C]) Name() string { return o.RelationName }

func (o *Owned[P, C]) load(ctx context.Context, q querier, ids []int64, parents map[int64]*P) error {
	for _, p := range parents {
		*o.Items(p) = []C{}
	}

	query := fmt.Sprintf(`
		SELECT c.%s, %s
		FROM %s c
		WHERE c.%s = ANY($1)
		ORDER BY c.%s, c.id
	`, o.ForeignKey, o.Child.selectList("c"), o.Child.Table, o.ForeignKey, o.ForeignKey)

	rows, err := q.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return classify("select "+o.Child.Table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			parentID int64
			child    C
		)
		dest := append([]any{&parentID}, o.Child.dest(&child)...)
		if err := rows.Scan(dest...); err != nil {
			return classify("scan "+o.Child.Table, err)
		}
		if p, ok := parents[parentID]; ok {
			items := o.Items(p)
			*items = append(*items, child)
		}
	}
	if err := rows.Err(); err != nil {
		return classify("iterate "+o.Child.Table, err)
	}
	return nil
}

func (o *Owned[P, C]) save(context.Context, *sql.Tx, int64, *P) error {
	return nil
}
