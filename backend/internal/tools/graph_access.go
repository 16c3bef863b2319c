package tools

import (
	"context"

	"lifegraph/backend/internal/graph"
)

// graphAccess adapts the graph store to the GraphAccess capability
type graphAccess struct {
	store graph.Store
}

// NewGraphAccess wraps a graph store as an injectable capability
func NewGraphAccess(store graph.Store) GraphAccess {
	return &graphAccess{store: store}
}

func (g *graphAccess) Name() string {
	return ToolGraphAccess
}

func (g *graphAccess) FindOrCreateEntity(ctx context.Context, ownerID, name, entityType string) (string, error) {
	return g.store.FindOrCreateEntity(ctx, ownerID, name, entityType)
}

func (g *graphAccess) CreateRelationship(ctx context.Context, rel *graph.Relationship) error {
	return g.store.CreateRelationship(ctx, rel)
}

func (g *graphAccess) OutgoingRelationships(ctx context.Context, entityID string, limit int) ([]graph.Relationship, error) {
	return g.store.OutgoingRelationships(ctx, entityID, limit)
}

func (g *graphAccess) IncomingRelationships(ctx context.Context, entityID string, limit int) ([]graph.Relationship, error) {
	return g.store.IncomingRelationships(ctx, entityID, limit)
}
