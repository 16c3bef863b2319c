package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"go.uber.org/zap"

	"lifegraph/backend/pkg/logger"
)

// Neo4jStore persists the graph in Neo4j. Entities are :Entity nodes with
// the component map serialized as a JSON string property; edges are
// :RELATES_TO relationships carrying the canonical type as a property so
// MERGE can deduplicate on the (owner, source, target, type) key.
type Neo4jStore struct {
	driver neo4j.DriverWithContext
	logger *zap.Logger
}

// NewNeo4jStore connects to Neo4j and verifies connectivity
func NewNeo4jStore(uri, user, password string) (*Neo4jStore, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(user, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to create Neo4j driver: %w", err)
	}

	ctx := context.Background()
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("failed to verify Neo4j connectivity: %w", err)
	}

	return &Neo4jStore{
		driver: driver,
		logger: logger.Named("graph.neo4j"),
	}, nil
}

// Close closes the Neo4j driver connection
func (s *Neo4jStore) Close() error {
	return s.driver.Close(context.Background())
}

// FindOrCreateEntity resolves an entity by exact (owner, name[, type]) match,
// creating it with an empty component map when absent
func (s *Neo4jStore) FindOrCreateEntity(ctx context.Context, ownerID, name, entityType string) (string, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity {owner_id: $ownerID, primary_name: $name})
		WHERE $type = '' OR e.type = $type
		RETURN e.id as id
		LIMIT 1
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"ownerID": ownerID,
		"name":    name,
		"type":    entityType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up entity: %w", err)
	}
	if result.Next(ctx) {
		if id, ok := result.Record().Get("id"); ok {
			if idStr, ok := id.(string); ok {
				return idStr, nil
			}
		}
	}
	if err := result.Err(); err != nil {
		return "", fmt.Errorf("failed to look up entity: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339)
	createQuery := `
		CREATE (e:Entity {
			id: $id,
			owner_id: $ownerID,
			type: $type,
			primary_name: $name,
			data: '{}',
			created_at: datetime($now),
			updated_at: datetime($now)
		})
		RETURN e.id as id
	`
	createResult, err := session.Run(ctx, createQuery, map[string]interface{}{
		"id":      id,
		"ownerID": ownerID,
		"type":    entityType,
		"name":    name,
		"now":     now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create entity: %w", err)
	}
	if _, err := createResult.Single(ctx); err != nil {
		return "", fmt.Errorf("failed to verify entity creation: %w", err)
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
func (s *Neo4jStore) GetEntity(ctx context.Context, id string) (*Entity, error) {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity {id: $id})
		RETURN e.id as id, e.owner_id as owner_id, e.type as type,
		       e.primary_name as primary_name, e.data as data,
		       e.created_at as created_at, e.updated_at as updated_at
	`
	result, err := session.Run(ctx, query, map[string]interface{}{"id": id})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch entity: %w", err)
	}
	if !result.Next(ctx) {
		if err := result.Err(); err != nil {
			return nil, fmt.Errorf("failed to fetch entity: %w", err)
		}
		return nil, ErrEntityNotFound{EntityID: id}
	}
	return entityFromRecord(result.Record())
}

// UpdateEntityData replaces the entity's component map
func (s *Neo4jStore) UpdateEntityData(ctx context.Context, id string, data map[string]Component) error {
	encoded, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode entity data: %w", err)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity {id: $id})
		SET e.data = $data,
		    e.updated_at = datetime($now)
		RETURN e.id as id
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"id":   id,
		"data": string(encoded),
		"now":  time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return fmt.Errorf("failed to update entity data: %w", err)
	}
	if _, err := result.Single(ctx); err != nil {
		return ErrEntityNotFound{EntityID: id}
	}
	return nil
}

// DeleteEntity removes an entity and every edge touching it
func (s *Neo4jStore) DeleteEntity(ctx context.Context, id string) error {
	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.Run(ctx,
		`MATCH (e:Entity {id: $id}) DETACH DELETE e`,
		map[string]interface{}{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// ListEntitiesByType returns up to limit entities of a type for an owner
func (s *Neo4jStore) ListEntitiesByType(ctx context.Context, ownerID, entityType string, limit int) ([]Entity, error) {
	if limit < 1 {
		limit = DefaultQueryLimit
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	query := `
		MATCH (e:Entity {owner_id: $ownerID, type: $type})
		RETURN e.id as id, e.owner_id as owner_id, e.type as type,
		       e.primary_name as primary_name, e.data as data,
		       e.created_at as created_at, e.updated_at as updated_at
		ORDER BY e.updated_at DESC
		LIMIT $limit
	`
	result, err := session.Run(ctx, query, map[string]interface{}{
		"ownerID": ownerID,
		"type":    entityType,
		"limit":   limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}

	var entities []Entity
	for result.Next(ctx) {
		entity, err := entityFromRecord(result.Record())
		if err != nil {
			return nil, err
		}
		entities = append(entities, *entity)
	}
	return entities, result.Err()
}

// CreateRelationship inserts an edge; MERGE on the unique key means a
// duplicate assertion leaves the existing edge untouched
func (s *Neo4jStore) CreateRelationship(ctx context.Context, rel *Relationship) error {
	if rel.ID == "" {
		rel.ID = uuid.New().String()
	}

	metadata := ""
	if rel.Metadata != nil {
		encoded, err := json.Marshal(rel.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode relationship metadata: %w", err)
		}
		metadata = string(encoded)
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	query := `
		MATCH (src:Entity {id: $sourceID})
		MATCH (tgt:Entity {id: $targetID})
		MERGE (src)-[r:RELATES_TO {owner_id: $ownerID, type: $type}]->(tgt)
		ON CREATE SET
			r.id = $id,
			r.strength = $strength,
			r.metadata = $metadata,
			r.created_at = datetime($now),
			r.updated_at = datetime($now)
	`
	_, err := session.Run(ctx, query, map[string]interface{}{
		"sourceID": rel.SourceEntityID,
		"targetID": rel.TargetEntityID,
		"ownerID":  rel.OwnerID,
		"type":     rel.Type,
		"id":       rel.ID,
		"strength": rel.Strength,
		"metadata": metadata,
		"now":      time.Now().UTC().Format(time.RFC3339),
	})
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
func (s *Neo4jStore) OutgoingRelationships(ctx context.Context, entityID string, limit int) ([]Relationship, error) {
	return s.queryRelationships(ctx, entityID, limit, true)
}

// IncomingRelationships lists up to limit edges terminating at an entity
func (s *Neo4jStore) IncomingRelationships(ctx context.Context, entityID string, limit int) ([]Relationship, error) {
	return s.queryRelationships(ctx, entityID, limit, false)
}

func (s *Neo4jStore) queryRelationships(ctx context.Context, entityID string, limit int, outgoing bool) ([]Relationship, error) {
	if limit < 1 {
		limit = DefaultQueryLimit
	}

	session := s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	pattern := `(e:Entity {id: $entityID})-[r:RELATES_TO]->(other:Entity)`
	sourceExpr, targetExpr := "e.id", "other.id"
	if !outgoing {
		pattern = `(other:Entity)-[r:RELATES_TO]->(e:Entity {id: $entityID})`
		sourceExpr, targetExpr = "other.id", "e.id"
	}

	query := fmt.Sprintf(`
		MATCH %s
		RETURN r.id as id, r.owner_id as owner_id, %s as source_id, %s as target_id,
		       r.type as type, r.strength as strength, r.metadata as metadata,
		       r.created_at as created_at, r.updated_at as updated_at
		ORDER BY r.created_at
		LIMIT $limit
	`, pattern, sourceExpr, targetExpr)

	result, err := session.Run(ctx, query, map[string]interface{}{
		"entityID": entityID,
		"limit":    limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}

	var rels []Relationship
	for result.Next(ctx) {
		record := result.Record()
		rel := Relationship{
			ID:             getString(record, "id", ""),
			OwnerID:        getString(record, "owner_id", ""),
			SourceEntityID: getString(record, "source_id", ""),
			TargetEntityID: getString(record, "target_id", ""),
			Type:           getString(record, "type", ""),
			Strength:       getFloat64(record, "strength", 0),
			CreatedAt:      getTime(record, "created_at"),
			UpdatedAt:      getTime(record, "updated_at"),
		}
		if raw := getString(record, "metadata", ""); raw != "" {
			if err := json.Unmarshal([]byte(raw), &rel.Metadata); err != nil {
				return nil, fmt.Errorf("failed to decode relationship metadata: %w", err)
			}
		}
		rels = append(rels, rel)
	}
	return rels, result.Err()
}

// Helper functions

func entityFromRecord(record *neo4j.Record) (*Entity, error) {
	entity := &Entity{
		ID:          getString(record, "id", ""),
		OwnerID:     getString(record, "owner_id", ""),
		Type:        getString(record, "type", ""),
		PrimaryName: getString(record, "primary_name", ""),
		CreatedAt:   getTime(record, "created_at"),
		UpdatedAt:   getTime(record, "updated_at"),
	}

	raw := getString(record, "data", "{}")
	if raw == "" {
		raw = "{}"
	}
	if err := json.Unmarshal([]byte(raw), &entity.Data); err != nil {
		return nil, fmt.Errorf("failed to decode entity data: %w", err)
	}
	return entity, nil
}

func getString(record *neo4j.Record, key string, defaultValue string) string {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if str, ok := val.(string); ok {
		return str
	}
	return defaultValue
}

func getFloat64(record *neo4j.Record, key string, defaultValue float64) float64 {
	val, ok := record.Get(key)
	if !ok {
		return defaultValue
	}
	if f, ok := val.(float64); ok {
		return f
	}
	return defaultValue
}

func getTime(record *neo4j.Record, key string) time.Time {
	val, ok := record.Get(key)
	if !ok {
		return time.Time{}
	}
	// Neo4j datetime values come back as time.Time
	if t, ok := val.(time.Time); ok {
		return t
	}
	return time.Time{}
}

// Errors

// ErrEntityNotFound is returned when an entity lookup by id finds nothing
type ErrEntityNotFound struct {
	EntityID string
}

func (e ErrEntityNotFound) Error() string {
	return fmt.Sprintf("entity not found: %s", e.EntityID)
}
