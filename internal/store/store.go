package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"

	"musiccatalog/internal/models"
)

var (
	// ErrNotFound signals a missing record.
	ErrNotFound = errors.New("not found")
	// ErrValidation indicates the entity is missing required data.
	ErrValidation = errors.New("validation failed")
	// ErrConcurrency indicates the record changed since it was read.
	ErrConcurrency = errors.New("concurrent modification")
	// ErrHasDependents indicates a delete was blocked by referencing rows.
	ErrHasDependents = errors.New("record has dependents")
	// ErrStorage wraps database faults that fit none of the other categories.
	ErrStorage = errors.New("storage failure")
	// ErrUnknownRelation is returned for an include name the schema does not declare.
	ErrUnknownRelation = errors.New("unknown relation")
	// ErrUnknownColumn is returned for a condition on an undeclared column.
	ErrUnknownColumn = errors.New("unknown column")
)

// Store bundles the catalog repositories backed by Postgres.
type Store struct {
	db *sql.DB

	Songs     *Repository[models.Song]
	Albums    *Repository[models.Album]
	Artists   *Repository[models.Artist]
	Genres    *Repository[models.Genre]
	Playlists *Repository[models.Playlist]
	Users     *Repository[models.User]
}

// New sets up a Store using the provided database handle.
func New(db *sql.DB) *Store {
	return &Store{
		db:        db,
		Songs:     NewRepository(db, SongSchema),
		Albums:    NewRepository(db, AlbumSchema),
		Artists:   NewRepository(db, ArtistSchema),
		Genres:    NewRepository(db, GenreSchema),
		Playlists: NewRepository(db, PlaylistSchema),
		Users:     NewRepository(db, UserSchema),
	}
}

// Ping reports whether the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("ping: %w: %w", ErrStorage, err)
	}
	return nil
}

// Postgres error codes the repositories react to.
const (
	codeStringTooLong       = "22001"
	codeForeignKeyViolation = "23503"
	codeNotNullViolation    = "23502"
	codeCheckViolation      = "23514"
	codeUniqueViolation     = "23505"
	codeSerialization       = "40001"
	codeDeadlock            = "40P01"
)

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// classify maps a driver error onto the repository sentinels. A foreign key
// violation on a write means the entity references a row that does not exist.
func classify(op string, err error) error {
	switch pgCode(err) {
	case codeForeignKeyViolation, codeStringTooLong, codeNotNullViolation, codeCheckViolation, codeUniqueViolation:
		return fmt.Errorf("%s: %w: %w", op, ErrValidation, err)
	case codeSerialization, codeDeadlock:
		return fmt.Errorf("%s: %w: %w", op, ErrConcurrency, err)
	}
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}

// canceled reports a context that ended before the repository touched the
// database.
func canceled(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStorage, err)
}
