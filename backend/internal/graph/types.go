package graph

import "time"

// Component is an extractor-produced record stored under an entity's data,
// keyed by component name. A component is replaced wholesale on each write,
// never deep-merged.
type Component map[string]interface{}

// Entity is a persisted node: a person, place, event, task or transaction.
// (OwnerID, PrimaryName) is the de facto identity key used by resolution;
// no uniqueness constraint enforces it and near-identical names are never
// merged.
type Entity struct {
	ID          string               `json:"id"`
	OwnerID     string               `json:"owner_id"`
	Type        string               `json:"type"`
	PrimaryName string               `json:"primary_name"`
	Data        map[string]Component `json:"data"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// Relationship is a typed, weighted, directed edge between two entities.
// (OwnerID, SourceEntityID, TargetEntityID, Type) is unique; a duplicate
// insert means the edge already exists.
type Relationship struct {
	ID             string                 `json:"id"`
	OwnerID        string                 `json:"owner_id"`
	SourceEntityID string                 `json:"source_entity_id"`
	TargetEntityID string                 `json:"target_entity_id"`
	Type           string                 `json:"type"`
	Strength       float64                `json:"strength"`
	Metadata       map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}
