package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jengzang/opportunity-map-go/internal/database"
	"github.com/jengzang/opportunity-map-go/internal/mapviz"
	"github.com/jengzang/opportunity-map-go/internal/models"
)

// ErrDuplicateID is returned when an inserted entity reuses a stored ID
var ErrDuplicateID = errors.New("duplicate entity id")

// DefaultListLimit applies when a list query gives no page size
const DefaultListLimit = 10000

// EntityRepository handles database operations for map entities
type EntityRepository struct {
	db *sql.DB
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db *sql.DB) *EntityRepository {
	return &EntityRepository{db: db}
}

const entityColumns = `id, kind, name, category, location, latitude, longitude,
	value_raw, value_num, amount, created_at`

// Insert stores entities in a single transaction
func (r *EntityRepository) Insert(ctx context.Context, entities []models.MapEntity) error {
	return database.Transaction(ctx, r.db, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `INSERT INTO map_entities (`+entityColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("failed to prepare insert: %w", err)
		}
		defer stmt.Close()

		for _, e := range entities {
			raw, num := splitValue(e.Value)
			_, err := stmt.ExecContext(ctx,
				e.ID, e.Kind, e.Name, e.Category, e.Place,
				nullFloat(e.Latitude), nullFloat(e.Longitude),
				raw, num, e.Amount, e.CreatedAt.UTC(),
			)
			if isUniqueViolation(err) {
				return fmt.Errorf("entity %s: %w", e.ID, ErrDuplicateID)
			}
			if err != nil {
				return fmt.Errorf("failed to insert entity %s: %w", e.ID, err)
			}
		}
		return nil
	})
}

// List retrieves entities with filtering, ordered by creation time
func (r *EntityRepository) List(ctx context.Context, filter models.EntityFilter) ([]models.MapEntity, error) {
	query := `SELECT ` + entityColumns + ` FROM map_entities`

	var conditions []string
	var args []interface{}

	if filter.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, filter.Kind)
	}
	if filter.MinAmount > 0 {
		conditions = append(conditions, "amount >= ?")
		args = append(args, filter.MinAmount)
	}
	if filter.MaxAmount > 0 {
		conditions = append(conditions, "amount <= ?")
		args = append(args, filter.MaxAmount)
	}

	// Add bounding box filter
	if filter.MinLat != 0 || filter.MaxLat != 0 || filter.MinLon != 0 || filter.MaxLon != 0 {
		conditions = append(conditions, "latitude BETWEEN ? AND ?", "longitude BETWEEN ? AND ?")
		args = append(args, filter.MinLat, filter.MaxLat, filter.MinLon, filter.MaxLon)
	}
	if filter.Located {
		conditions = append(conditions, "latitude IS NOT NULL", "longitude IS NOT NULL")
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	query += " ORDER BY created_at ASC, rowid ASC"

	limit := DefaultListLimit
	if filter.PageSize > 0 {
		limit = filter.PageSize
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []models.MapEntity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}

	return entities, rows.Err()
}

// GetByID retrieves a single entity. Returns nil, nil when it does not exist.
func (r *EntityRepository) GetByID(ctx context.Context, id string) (*models.MapEntity, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+entityColumns+` FROM map_entities WHERE id = ?`, id)
	e, err := scanEntity(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Delete removes an entity and reports whether it existed
func (r *EntityRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM map_entities WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("failed to delete entity: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read affected rows: %w", err)
	}
	return n > 0, nil
}

// Count returns the number of entities, optionally of one kind
func (r *EntityRepository) Count(ctx context.Context, kind string) (int, error) {
	query := `SELECT COUNT(*) FROM map_entities`
	var args []interface{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}

	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count entities: %w", err)
	}
	return n, nil
}

// Amounts returns the parsed amounts of all entities, optionally of one kind
func (r *EntityRepository) Amounts(ctx context.Context, kind string) ([]float64, error) {
	query := `SELECT amount FROM map_entities`
	var args []interface{}
	if kind != "" {
		query += ` WHERE kind = ?`
		args = append(args, kind)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query amounts: %w", err)
	}
	defer rows.Close()

	var amounts []float64
	for rows.Next() {
		var a float64
		if err := rows.Scan(&a); err != nil {
			return nil, fmt.Errorf("failed to scan amount: %w", err)
		}
		amounts = append(amounts, a)
	}
	return amounts, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEntity(s scanner) (models.MapEntity, error) {
	var e models.MapEntity
	var lat, lon, num sql.NullFloat64
	var raw sql.NullString
	var createdAt time.Time

	err := s.Scan(
		&e.ID, &e.Kind, &e.Name, &e.Category, &e.Place,
		&lat, &lon, &raw, &num, &e.Amount, &createdAt,
	)
	if err == sql.ErrNoRows {
		return e, err
	}
	if err != nil {
		return e, fmt.Errorf("failed to scan entity: %w", err)
	}

	if lat.Valid {
		e.Latitude = &lat.Float64
	}
	if lon.Valid {
		e.Longitude = &lon.Float64
	}
	switch {
	case raw.Valid:
		e.Value = mapviz.RawValue(raw.String)
	case num.Valid:
		e.Value = mapviz.NumberValue(num.Float64)
	default:
		e.Value = mapviz.NoValue()
	}
	e.CreatedAt = createdAt

	return e, nil
}

func splitValue(v mapviz.Value) (sql.NullString, sql.NullFloat64) {
	if v.IsMissing() {
		return sql.NullString{}, sql.NullFloat64{}
	}
	if n, ok := v.Number(); ok {
		return sql.NullString{}, sql.NullFloat64{Float64: n, Valid: true}
	}
	return sql.NullString{String: v.String(), Valid: true}, sql.NullFloat64{}
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	code := se.Code()
	return code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY || code == sqlite3.SQLITE_CONSTRAINT_UNIQUE
}

func nullFloat(f *float64) sql.NullFloat64 {
	if f == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *f, Valid: true}
}
