package graph

import (
	"context"
	"fmt"

	"lifegraph/backend/pkg/config"
)

// Store defines the graph persistence contract. Two backends implement it:
// an embedded SQLite store and a Neo4j store.
type Store interface {
	// FindOrCreateEntity resolves an entity by exact match on
	// (ownerID, name), additionally filtered by entityType when non-empty,
	// and returns its id, creating a new entity with an empty component map
	// when no match exists. Not guaranteed atomic under concurrent
	// identical calls.
	FindOrCreateEntity(ctx context.Context, ownerID, name, entityType string) (string, error)

	// GetEntity fetches an entity by id.
	GetEntity(ctx context.Context, id string) (*Entity, error)

	// UpdateEntityData replaces the entity's component map.
	UpdateEntityData(ctx context.Context, id string, data map[string]Component) error

	// DeleteEntity removes an entity and cascades deletion of every edge
	// touching it.
	DeleteEntity(ctx context.Context, id string) error

	// ListEntitiesByType returns up to limit entities of a type for an owner.
	ListEntitiesByType(ctx context.Context, ownerID, entityType string, limit int) ([]Entity, error)

	// CreateRelationship inserts a directed edge. A uniqueness violation on
	// (owner, source, target, type) is interpreted as "edge already exists"
	// and is not an error.
	CreateRelationship(ctx context.Context, rel *Relationship) error

	// OutgoingRelationships lists up to limit edges originating at an entity.
	OutgoingRelationships(ctx context.Context, entityID string, limit int) ([]Relationship, error)

	// IncomingRelationships lists up to limit edges terminating at an entity.
	IncomingRelationships(ctx context.Context, entityID string, limit int) ([]Relationship, error)

	Close() error
}

// DefaultQueryLimit bounds read queries when the caller passes no limit.
const DefaultQueryLimit = 50

// NewStore builds the store selected by configuration.
func NewStore(cfg *config.Config) (Store, error) {
	switch cfg.GraphBackend {
	case "sqlite":
		return NewSQLiteStore(cfg.SQLitePath)
	case "neo4j":
		return NewNeo4jStore(cfg.Neo4jURI, cfg.Neo4jUser, cfg.Neo4jPassword)
	default:
		return nil, fmt.Errorf("unknown graph backend: %s", cfg.GraphBackend)
	}
}
