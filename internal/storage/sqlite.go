package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/JamesPrial/text2graph/pkg/errors"
	"github.com/JamesPrial/text2graph/pkg/logging"
	"github.com/JamesPrial/text2graph/pkg/mcp"
)

type SqliteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSqliteBackend creates a new SQLite backend with the specified database path and WAL mode setting
func NewSqliteBackend(dbPath string, walMode bool) (*SqliteBackend, error) {
	connStr := dbPath
	if walMode {
		connStr += "?_journal_mode=WAL&_synchronous=NORMAL&_cache_size=1000&_foreign_keys=true"
	} else {
		connStr += "?_synchronous=FULL&_cache_size=1000&_foreign_keys=true"
	}

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to open database")
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to ping database")
	}

	backend := &SqliteBackend{
		db:     db,
		logger: logging.GetGlobalLogger("storage.sqlite"),
	}

	if err := backend.initSchema(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.ErrCodeStorageInitialization, "failed to initialize schema")
	}

	backend.logger.Info("Opened SQLite backend",
		slog.String("path", dbPath),
		slog.Bool("wal_mode", walMode),
	)

	return backend, nil
}

// initSchema creates the necessary tables for the database
func (s *SqliteBackend) initSchema() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (entity_type, name)
	);

	CREATE INDEX IF NOT EXISTS idx_entities_name ON entities(name);
	CREATE INDEX IF NOT EXISTS idx_entities_type ON entities(entity_type);

	CREATE TABLE IF NOT EXISTS relations (
		id TEXT PRIMARY KEY,
		source_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		target_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		relation_type TEXT NOT NULL,
		confidence REAL NOT NULL,
		source TEXT NOT NULL,
		created_at DATETIME NOT NULL,
		updated_at DATETIME NOT NULL,
		UNIQUE (source_id, target_id, relation_type)
	);

	CREATE INDEX IF NOT EXISTS idx_relations_source ON relations(source_id);
	CREATE INDEX IF NOT EXISTS idx_relations_target ON relations(target_id);
	`)
	return err
}

// CreateEntities upserts entities by (type, name) and returns the stored rows
func (s *SqliteBackend) CreateEntities(ctx context.Context, entities []mcp.Entity) ([]mcp.Entity, error) {
	if len(entities) == 0 {
		return []mcp.Entity{}, nil
	}

	timer := logging.StartTimer(ctx, s.logger, "createEntities")
	defer timer.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to begin transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entities (id, name, entity_type, description, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(entity_type, name) DO UPDATE SET
			description = CASE WHEN entities.description = '' THEN excluded.description ELSE entities.description END,
			updated_at = excluded.updated_at
			-- id and created_at are preserved
	`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to prepare statement")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	stored := make([]mcp.Entity, 0, len(entities))

	for _, entity := range entities {
		if strings.TrimSpace(entity.ID) == "" {
			return nil, errors.New(errors.ErrCodeValidationRequired, "Entity ID cannot be empty or whitespace-only")
		}
		if strings.TrimSpace(entity.Name) == "" || strings.TrimSpace(entity.EntityType) == "" {
			return nil, errors.New(errors.ErrCodeValidationRequired, "Entity name and type are required")
		}
		entity.EntityType = strings.ToUpper(entity.EntityType)
		if entity.CreatedAt.IsZero() {
			entity.CreatedAt = now
		}

		if _, err := stmt.ExecContext(ctx,
			entity.ID,
			entity.Name,
			entity.EntityType,
			entity.Description,
			entity.CreatedAt,
			now,
		); err != nil {
			if strings.Contains(err.Error(), "UNIQUE constraint failed: entities.id") {
				return nil, errors.Newf(errors.ErrCodeEntityAlreadyExists, "Entity with ID '%s' already exists", entity.ID)
			}
			return nil, errors.Wrapf(err, errors.ErrCodeStorageTransaction, "failed to insert entity %s", entity.ID)
		}

		row := tx.QueryRowContext(ctx, `
			SELECT id, name, entity_type, description, created_at, updated_at
			FROM entities
			WHERE entity_type = ? AND name = ?
		`, entity.EntityType, entity.Name)

		got, err := scanEntity(row)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeStorageTransaction, "failed to read back entity %s", entity.Name)
		}
		stored = append(stored, *got)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to commit entities")
	}

	s.logger.InfoContext(ctx, "Stored entities in SQLite", slog.Int("count", len(stored)))
	return stored, nil
}

// CreateRelations upserts relations by (source, target, type)
func (s *SqliteBackend) CreateRelations(ctx context.Context, relations []mcp.Relation) ([]mcp.Relation, error) {
	if len(relations) == 0 {
		return []mcp.Relation{}, nil
	}

	timer := logging.StartTimer(ctx, s.logger, "createRelations")
	defer timer.End()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to begin transaction")
	}
	defer tx.Rollback()

	for _, rel := range relations {
		if strings.TrimSpace(rel.ID) == "" {
			return nil, errors.New(errors.ErrCodeValidationRequired, "Relation ID cannot be empty or whitespace-only")
		}
		for _, id := range []string{rel.SourceID, rel.TargetID} {
			var exists int
			err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities WHERE id = ?", id).Scan(&exists)
			if err != nil {
				return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to check relation endpoint")
			}
			if exists == 0 {
				return nil, errors.Newf(errors.ErrCodeEntityNotFound, "Entity '%s' not found", id)
			}
		}
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO relations (id, source_id, target_id, relation_type, confidence, source, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(source_id, target_id, relation_type) DO UPDATE SET
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to prepare statement")
	}
	defer stmt.Close()

	now := time.Now().UTC()
	stored := make([]mcp.Relation, 0, len(relations))

	for _, rel := range relations {
		if rel.CreatedAt.IsZero() {
			rel.CreatedAt = now
		}
		if _, err := stmt.ExecContext(ctx,
			rel.ID, rel.SourceID, rel.TargetID, rel.RelationType,
			rel.Confidence, rel.Source, rel.CreatedAt, now,
		); err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeStorageTransaction, "failed to insert relation %s", rel.ID)
		}

		var got mcp.Relation
		err := tx.QueryRowContext(ctx, `
			SELECT id, source_id, target_id, relation_type, confidence, source, created_at, updated_at
			FROM relations
			WHERE source_id = ? AND target_id = ? AND relation_type = ?
		`, rel.SourceID, rel.TargetID, rel.RelationType).Scan(
			&got.ID, &got.SourceID, &got.TargetID, &got.RelationType,
			&got.Confidence, &got.Source, &got.CreatedAt, &got.UpdatedAt,
		)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrCodeStorageTransaction, "failed to read back relation %s", rel.ID)
		}
		stored = append(stored, got)
	}

	if err := tx.Commit(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageTransaction, "failed to commit relations")
	}

	s.logger.InfoContext(ctx, "Stored relations in SQLite", slog.Int("count", len(stored)))
	return stored, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntity(row rowScanner) (*mcp.Entity, error) {
	var entity mcp.Entity
	err := row.Scan(
		&entity.ID,
		&entity.Name,
		&entity.EntityType,
		&entity.Description,
		&entity.CreatedAt,
		&entity.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

// GetEntity retrieves a single entity by ID. A missing entity returns nil, nil.
func (s *SqliteBackend) GetEntity(ctx context.Context, id string) (*mcp.Entity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, entity_type, description, created_at, updated_at
		FROM entities
		WHERE id = ?
	`, id)

	entity, err := scanEntity(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to scan entity")
	}
	return entity, nil
}

// SearchEntities matches names with LIKE, which ignores ASCII case. An empty query returns
// every entity. Results are ordered by name, then type.
func (s *SqliteBackend) SearchEntities(ctx context.Context, query string) ([]mcp.Entity, error) {
	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(query)

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, entity_type, description, created_at, updated_at
		FROM entities
		WHERE name LIKE ? ESCAPE '\'
		ORDER BY name, entity_type
	`, "%"+escaped+"%")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to query entities")
	}
	defer rows.Close()

	entities := make([]mcp.Entity, 0)
	for rows.Next() {
		entity, err := scanEntity(rows)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to scan entity")
		}
		entities = append(entities, *entity)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "error iterating over rows")
	}

	return entities, nil
}

// GetStatistics returns node and edge counts
func (s *SqliteBackend) GetStatistics(ctx context.Context) (*mcp.Statistics, error) {
	stats := &mcp.Statistics{EntitiesByType: make(map[string]int)}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM entities").Scan(&stats.EntityCount); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to count entities")
	}
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM relations").Scan(&stats.RelationCount); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to count relations")
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT entity_type, COUNT(*)
		FROM entities
		GROUP BY entity_type
	`)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeStorageConnection, "failed to query entity counts by type")
	}
	defer rows.Close()

	for rows.Next() {
		var entityType string
		var count int
		if err := rows.Scan(&entityType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan entity type count: %w", err)
		}
		stats.EntitiesByType[entityType] = count
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating over entity type rows: %w", err)
	}

	return stats, nil
}

// Close closes the database connection
func (s *SqliteBackend) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
