package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"lifegraph/backend/pkg/logger"
)

// SQLiteStore persists the graph in an embedded SQLite database
type SQLiteStore struct {
	db     *sql.DB
	logger *zap.Logger
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS entities (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		type TEXT NOT NULL,
		primary_name TEXT NOT NULL,
		data TEXT NOT NULL, -- component map as JSON
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entities_owner_name ON entities(owner_id, primary_name);
	CREATE INDEX IF NOT EXISTS idx_entities_owner_type ON entities(owner_id, type);

	CREATE TABLE IF NOT EXISTS relationships (
		id TEXT PRIMARY KEY,
		owner_id TEXT NOT NULL,
		source_entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		target_entity_id TEXT NOT NULL REFERENCES entities(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		strength REAL NOT NULL,
		metadata TEXT, -- JSON, nullable
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		UNIQUE(owner_id, source_entity_id, target_entity_id, type)
	);

	CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_entity_id);
	CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_entity_id);
`

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// schema exists. Use ":memory:" for an ephemeral store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "lifegraph.db"
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // modernc sqlite is single-writer

	store := &SQLiteStore{
		db:     db,
		logger: logger.Named("graph.sqlite"),
	}

	if err := store.initialize(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

func (s *SQLiteStore) initialize(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// Close closes the underlying database
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// FindOrCreateEntity resolves an entity by exact (owner, name[, type]) match,
// creating it with an empty component map when absent
func (s *SQLiteStore) FindOrCreateEntity(ctx context.Context, ownerID, name, entityType string) (string, error) {
	var (
		id  string
		err error
	)
	if entityType != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM entities WHERE owner_id = ? AND primary_name = ? AND type = ? LIMIT 1`,
			ownerID, name, entityType).Scan(&id)
	} else {
		err = s.db.QueryRowContext(ctx,
			`SELECT id FROM entities WHERE owner_id = ? AND primary_name = ? LIMIT 1`,
			ownerID, name).Scan(&id)
	}
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return "", fmt.Errorf("failed to look up entity: %w", err)
	}

	id = uuid.New().String()
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO entities (id, owner_id, type, primary_name, data, created_at, updated_at)
		 VALUES (?, ?, ?, ?, '{}', ?, ?)`,
		id, ownerID, entityType, name, now, now)
	if err != nil {
		return "", fmt.Errorf("failed to create entity: %w", err)
	}

	s.logger.Debug("Entity created",
		zap.String("entity_id", id),
		zap.String("owner_id", ownerID),
		zap.String("name", name),
		zap.String("type", entityType),
	)
	return id, nil
}

// GetEntity fetches an entity by id
func (s *SQLiteStore) GetEntity(ctx context.Context, id string) (*Entity, error) {
	var (
		e       Entity
		rawData string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, owner_id, type, primary_name, data, created_at, updated_at
		 FROM entities WHERE id = ?`, id).
		Scan(&e.ID, &e.OwnerID, &e.Type, &e.PrimaryName, &rawData, &e.CreatedAt, &e.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrEntityNotFound{EntityID: id}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entity: %w", err)
	}

	if err := json.Unmarshal([]byte(rawData), &e.Data); err != nil {
		return nil, fmt.Errorf("failed to decode entity data: %w", err)
	}
	return &e, nil
}

// UpdateEntityData replaces the entity's component map
func (s *SQLiteStore) UpdateEntityData(ctx context.Context, id string, data map[string]Component) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode entity data: %w", err)
	}

	result, err := s.db.ExecContext(ctx,
		`UPDATE entities SET data = ?, updated_at = ? WHERE id = ?`,
		string(encoded), time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("failed to update entity data: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to verify entity update: %w", err)
	}
	if rows == 0 {
		return ErrEntityNotFound{EntityID: id}
	}
	return nil
}

// DeleteEntity removes an entity; the foreign keys cascade edge deletion
func (s *SQLiteStore) DeleteEntity(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM entities WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// ListEntitiesByType returns up to limit entities of a type for an owner
func (s *SQLiteStore) ListEntitiesByType(ctx context.Context, ownerID, entityType string, limit int) ([]Entity, error) {
	if limit < 1 {
		limit = DefaultQueryLimit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, owner_id, type, primary_name, data, created_at, updated_at
		 FROM entities WHERE owner_id = ? AND type = ?
		 ORDER BY updated_at DESC LIMIT ?`,
		ownerID, entityType, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var (
			e       Entity
			rawData string
		)
		if err := rows.Scan(&e.ID, &e.OwnerID, &e.Type, &e.PrimaryName, &rawData, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		if err := json.Unmarshal([]byte(rawData), &e.Data); err != nil {
			return nil, fmt.Errorf("failed to decode entity data: %w", err)
		}
		entities = append(entities, e)
	}
	return entities, rows.Err()
}

// CreateRelationship inserts an edge; a duplicate on the unique key means
// the edge already exists and the insert is a no-op
func (s *SQLiteStore) CreateRelationship(ctx context.Context, rel *Relationship) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}

	var metadata interface{}
	if rel.Metadata != nil {
		encoded, err := json.Marshal(rel.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode relationship metadata: %w", err)
		}
		metadata = string(encoded)
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO relationships (id, owner_id, source_entity_id, target_entity_id, type, strength, metadata, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(owner_id, source_entity_id, target_entity_id, type) DO NOTHING`,
		rel.ID, rel.OwnerID, rel.SourceEntityID, rel.TargetEntityID, rel.Type, rel.Strength, metadata, now, now)
	if err != nil {
		return fmt.Errorf("failed to create relationship: %w", err)
	}

	s.logger.Debug("Relationship recorded",
		zap.String("source", rel.SourceEntityID),
		zap.String("target", rel.TargetEntityID),
		zap.String("type", rel.Type),
	)
	return nil
}

// OutgoingRelationships lists up to limit edges originating at an entity
func (s *SQLiteStore) OutgoingRelationships(ctx context.Context, entityID string, limit int) ([]Relationship, error) {
	return s.queryRelationships(ctx, "source_entity_id", entityID, limit)
}

// IncomingRelationships lists up to limit edges terminating at an entity
func (s *SQLiteStore) IncomingRelationships(ctx context.Context, entityID string, limit int) ([]Relationship, error) {
	return s.queryRelationships(ctx, "target_entity_id", entityID, limit)
}

func (s *SQLiteStore) queryRelationships(ctx context.Context, column, entityID string, limit int) ([]Relationship, error) {
	if limit < 1 {
		limit = DefaultQueryLimit
	}

	// column is one of two fixed identifiers, never caller input
	query := fmt.Sprintf(
		`SELECT id, owner_id, source_entity_id, target_entity_id, type, strength, metadata, created_at, updated_at
		 FROM relationships WHERE %s = ? ORDER BY created_at LIMIT ?`, column)

	rows, err := s.db.QueryContext(ctx, query, entityID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var (
			rel      Relationship
			metadata sql.NullString
		)
		if err := rows.Scan(&rel.ID, &rel.OwnerID, &rel.SourceEntityID, &rel.TargetEntityID,
			&rel.Type, &rel.Strength, &metadata, &rel.CreatedAt, &rel.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			if err := json.Unmarshal([]byte(metadata.String), &rel.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode relationship metadata: %w", err)
			}
		}
		rels = append(rels, rel)
	}
	return rels, rows.Err()
}
