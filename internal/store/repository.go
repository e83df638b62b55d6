package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// Repository provides CRUD access to one entity type described by a Schema.
type Repository[T any] struct {
	db     *sql.DB
	schema *Schema[T]
}

// NewRepository binds schema to the database handle.
func NewRepository[T any](db *sql.DB, schema *Schema[T]) *Repository[T] {
	return &Repository[T]{db: db, schema: schema}
}

// GetAll returns every row ordered by id with the named relations loaded.
func (r *Repository[T]) GetAll(ctx context.Context, includes ...string) ([]*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled("select "+r.schema.Table, err)
	}

	relations, err := r.schema.resolve(includes)
	if err != nil {
		return nil, err
	}

	items, err := r.query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM %s
		ORDER BY id
	`, r.schema.selectList(""), r.schema.Table))
	if err != nil {
		return nil, err
	}

	if err := r.loadRelations(ctx, items, relations); err != nil {
		return nil, err
	}
	return items, nil
}

// GetSingleByCondition returns the first row satisfying cond, or ErrNotFound.
func (r *Repository[T]) GetSingleByCondition(ctx context.Context, cond Condition[T], includes ...string) (*T, error) {
	if err := ctx.Err(); err != nil {
		return nil, canceled("select "+r.schema.Table, err)
	}

	relations, err := r.schema.resolve(includes)
	if err != nil {
		return nil, err
	}

	var found *T
	if column, value, ok := cond.pushdown(); ok {
		if !r.schema.hasColumn(column) {
			return nil, fmt.Errorf("%s: %w: %q", r.schema.Table, ErrUnknownColumn, column)
		}
		items, err := r.query(ctx, fmt.Sprintf(`
			SELECT %s
			FROM %s
			WHERE %s = $1
			ORDER BY id
			LIMIT 1
		`, r.schema.selectList(""), r.schema.Table, column), value)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			found = items[0]
		}
	} else {
		items, err := r.query(ctx, fmt.Sprintf(`
			SELECT %s
			FROM %s
			ORDER BY id
		`, r.schema.selectList(""), r.schema.Table))
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			if cond.Matches(item) {
				found = item
				break
			}
		}
	}

	if found == nil {
		return nil, fmt.Errorf("select %s: %w", r.schema.Table, ErrNotFound)
	}

	if err := r.loadRelations(ctx, []*T{found}, relations); err != nil {
		return nil, err
	}
	return found, nil
}

// Create inserts entity and assigns its id and initial version. Relations are
// not persisted; they are attached afterwards through Update.
func (r *Repository[T]) Create(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("insert %s: %w: nil entity", r.schema.Table, ErrValidation)
	}
	if err := r.schema.validate(entity); err != nil {
		return nil, err
	}

	placeholders := make([]string, len(r.schema.Columns))
	for i := range r.schema.Columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	err := r.db.QueryRowContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (%s, version)
		VALUES (%s, 1)
		RETURNING id, version
	`, r.schema.Table, strings.Join(r.schema.Columns, ", "), strings.Join(placeholders, ", ")),
		r.schema.Values(entity)...,
	).Scan(r.schema.ID(entity), r.schema.Version(entity))
	if err != nil {
		return nil, classify("insert "+r.schema.Table, err)
	}
	return entity, nil
}

// Update writes the scalar columns and every loaded relation in one
// transaction. A positive version must match the stored one.
func (r *Repository[T]) Update(ctx context.Context, entity *T) (*T, error) {
	if entity == nil {
		return nil, fmt.Errorf("update %s: %w: nil entity", r.schema.Table, ErrValidation)
	}
	if err := r.schema.validate(entity); err != nil {
		return nil, err
	}

	id := *r.schema.ID(entity)
	version := *r.schema.Version(entity)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, classify("begin tx", err)
	}
	defer func() {
		if tx != nil {
			_ = tx.Rollback()
		}
	}()

	args := r.schema.Values(entity)
	set := make([]string, len(r.schema.Columns))
	for i, col := range r.schema.Columns {
		set[i] = fmt.Sprintf("%s = $%d", col, i+1)
	}
	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if version > 0 {
		args = append(args, version)
		where += fmt.Sprintf(" AND version = $%d", len(args))
	}

	var next int64
	err = tx.QueryRowContext(ctx, fmt.Sprintf(`
		UPDATE %s
		SET %s, version = version + 1
		WHERE %s
		RETURNING version
	`, r.schema.Table, strings.Join(set, ", "), where), args...).Scan(&next)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, r.missing(ctx, tx, "update", id)
		}
		return nil, classify("update "+r.schema.Table, err)
	}

	for _, rel := range r.schema.Relations {
		if err := rel.save(ctx, tx, id, entity); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, classify("commit tx", err)
	}
	tx = nil

	*r.schema.Version(entity) = next
	return entity, nil
}

// Delete removes entity. Rows still referenced elsewhere yield ErrHasDependents.
func (r *Repository[T]) Delete(ctx context.Context, entity *T) error {
	if entity == nil {
		return fmt.Errorf("delete %s: %w", r.schema.Table, ErrNotFound)
	}

	id := *r.schema.ID(entity)
	version := *r.schema.Version(entity)

	query := fmt.Sprintf(`
		DELETE FROM %s
		WHERE id = $1
	`, r.schema.Table)
	args := []any{id}
	if version > 0 {
		query += " AND version = $2"
		args = append(args, version)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if pgCode(err) == codeForeignKeyViolation {
			return fmt.Errorf("delete %s %d: %w: %w", r.schema.Table, id, ErrHasDependents, err)
		}
		return classify("delete "+r.schema.Table, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return classify("delete "+r.schema.Table, err)
	}
	if affected == 0 {
		return r.missing(ctx, r.db, "delete", id)
	}
	return nil
}

// missing explains why a guarded write touched no rows.
func (r *Repository[T]) missing(ctx context.Context, q queryRower, op string, id int64) error {
	var exists bool
	err := q.QueryRowContext(ctx, fmt.Sprintf(`
		SELECT EXISTS (SELECT 1 FROM %s WHERE id = $1)
	`, r.schema.Table), id).Scan(&exists)
	if err != nil {
		return classify(op+" "+r.schema.Table, err)
	}
	if exists {
		return fmt.Errorf("%s %s %d: %w", op, r.schema.Table, id, ErrConcurrency)
	}
	return fmt.Errorf("%s %s %d: %w", op, r.schema.Table, id, ErrNotFound)
}

func (r *Repository[T]) query(ctx context.Context, query string, args ...any) ([]*T, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, classify("select "+r.schema.Table, err)
	}
	defer rows.Close()

	var items []*T
	for rows.Next() {
		item := new(T)
		if err := rows.Scan(r.schema.dest(item)...); err != nil {
			return nil, classify("scan "+r.schema.Table, err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, classify("iterate "+r.schema.Table, err)
	}
	return items, nil
}

func (r *Repository[T]) loadRelations(ctx context.Context, items []*T, relations []Relation[T]) error {
	if len(items) == 0 || len(relations) == 0 {
		return nil
	}

	ids := make([]int64, len(items))
	byID := make(map[int64]*T, len(items))
	for i, item := range items {
		id := *r.schema.ID(item)
		ids[i] = id
		byID[id] = item
	}

	for _, rel := range relations {
		if err := rel.load(ctx, r.db, ids, byID); err != nil {
			return err
		}
	}
	return nil
}
