package catalog

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Store provides access to catalog records.
type Store struct {
	db *sql.DB
}

// NewStore creates a new catalog store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// mapSQLiteError converts SQLite errors to sentinel error types.
func mapSQLiteError(err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return ErrNotFound
	}
	// modernc.org/sqlite wraps errors; check the message for constraint violations
	errStr := err.Error()
	if strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "PRIMARY KEY constraint failed") {
		return ErrDuplicate
	}
	if strings.Contains(errStr, "FOREIGN KEY constraint failed") ||
		strings.Contains(errStr, "CHECK constraint failed") {
		return ErrConstraint
	}
	return err
}

const recordColumns = `id, external_id, title, year, genre, rating, kind,
	series_title, season, episode,
	file_name, playback_url, size_bytes, duration_seconds,
	poster_url, poster_source, reference_id, added_at, updated_at`

// Upsert writes a record keyed by its external identifier. Returns
// wasExisting=true when a prior record was updated rather than created.
// Insert-then-update keeps the unique index on external_id as the source of
// truth under concurrent writers for the same identifier.
func (s *Store) Upsert(r *Record) (bool, error) {
	now := time.Now()
	result, err := s.db.Exec(`
		INSERT INTO catalog (external_id, title, year, genre, rating, kind,
			series_title, season, episode,
			file_name, playback_url, size_bytes, duration_seconds,
			poster_url, poster_source, reference_id, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ExternalID, r.Title, r.Year, r.Genre, r.Rating, r.Kind,
		r.SeriesTitle, r.Season, r.Episode,
		r.FileName, r.PlaybackURL, r.SizeBytes, r.DurationSeconds,
		r.PosterURL, r.PosterSource, r.ReferenceID, now, now,
	)
	if err == nil {
		id, err := result.LastInsertId()
		if err != nil {
			return false, fmt.Errorf("get last insert id: %w", err)
		}
		r.ID = id
		r.AddedAt = now
		r.UpdatedAt = now
		return false, nil
	}

	if mapped := mapSQLiteError(err); !errors.Is(mapped, ErrDuplicate) {
		return false, fmt.Errorf("insert record: %w", mapped)
	}

	// A record with this external id already exists; mutate it in place.
	_, err = s.db.Exec(`
		UPDATE catalog SET title = ?, year = ?, genre = ?, rating = ?, kind = ?,
			series_title = ?, season = ?, episode = ?,
			file_name = ?, playback_url = ?, size_bytes = ?, duration_seconds = ?,
			poster_url = ?, poster_source = ?, reference_id = ?, updated_at = ?
		WHERE external_id = ?`,
		r.Title, r.Year, r.Genre, r.Rating, r.Kind,
		r.SeriesTitle, r.Season, r.Episode,
		r.FileName, r.PlaybackURL, r.SizeBytes, r.DurationSeconds,
		r.PosterURL, r.PosterSource, r.ReferenceID, now, r.ExternalID,
	)
	if err != nil {
		return true, fmt.Errorf("update record: %w", mapSQLiteError(err))
	}

	existing, err := s.GetByExternalID(r.ExternalID)
	if err != nil {
		return true, err
	}
	r.ID = existing.ID
	r.AddedAt = existing.AddedAt
	r.UpdatedAt = now
	return true, nil
}

// Get retrieves a record by ID.
// Returns ErrNotFound if the record does not exist.
func (s *Store) Get(id int64) (*Record, error) {
	row := s.db.QueryRow("SELECT "+recordColumns+" FROM catalog WHERE id = ?", id)
	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get record %d: %w", id, err)
	}
	return r, nil
}

// GetByExternalID retrieves a record by its archive identifier.
// Returns ErrNotFound if the record does not exist.
func (s *Store) GetByExternalID(externalID string) (*Record, error) {
	row := s.db.QueryRow("SELECT "+recordColumns+" FROM catalog WHERE external_id = ?", externalID)
	r, err := scanRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", externalID, err)
	}
	return r, nil
}

// Filter specifies criteria for listing records.
type Filter struct {
	Kind   *Kind
	Query  *string // substring match against title
	Limit  int
	Offset int
}

// List returns records matching the filter with pagination.
// Returns (results, totalCount, error).
func (s *Store) List(f Filter) ([]*Record, int, error) {
	var conditions []string
	var args []any

	if f.Kind != nil {
		conditions = append(conditions, "kind = ?")
		args = append(args, *f.Kind)
	}
	if f.Query != nil {
		conditions = append(conditions, "title LIKE ?")
		args = append(args, "%"+*f.Query+"%")
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	var total int
	if err := s.db.QueryRow("SELECT COUNT(*) FROM catalog "+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count records: %w", err)
	}

	query := "SELECT " + recordColumns + " FROM catalog " + whereClause + " ORDER BY id"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", f.Limit, f.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan record: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate records: %w", err)
	}

	return results, total, nil
}

// Delete removes a record by ID.
// This operation is idempotent - no error is returned if nothing matched.
func (s *Store) Delete(id int64) error {
	if _, err := s.db.Exec("DELETE FROM catalog WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete record %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	r := &Record{}
	err := row.Scan(
		&r.ID, &r.ExternalID, &r.Title, &r.Year, &r.Genre, &r.Rating, &r.Kind,
		&r.SeriesTitle, &r.Season, &r.Episode,
		&r.FileName, &r.PlaybackURL, &r.SizeBytes, &r.DurationSeconds,
		&r.PosterURL, &r.PosterSource, &r.ReferenceID, &r.AddedAt, &r.UpdatedAt,
	)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return r, nil
}
