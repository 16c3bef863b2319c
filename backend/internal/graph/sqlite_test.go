package graph

import (
	"context"
	"testing"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFindOrCreateEntity_Idempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first, err := store.FindOrCreateEntity(ctx, "owner-1", "John", "person")
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := store.FindOrCreateEntity(ctx, "owner-1", "John", "person")
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}
	if first != second {
		t.Errorf("expected same entity id, got %s and %s", first, second)
	}
}

func TestFindOrCreateEntity_ExactMatchOnly(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	john, err := store.FindOrCreateEntity(ctx, "owner-1", "John", "person")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	// Different owner, different name case, different type: all distinct
	otherOwner, _ := store.FindOrCreateEntity(ctx, "owner-2", "John", "person")
	if otherOwner == john {
		t.Error("entities must be scoped per owner")
	}
	lowercase, _ := store.FindOrCreateEntity(ctx, "owner-1", "john", "person")
	if lowercase == john {
		t.Error("name matching must be exact, not case-insensitive")
	}
	otherType, _ := store.FindOrCreateEntity(ctx, "owner-1", "John", "location")
	if otherType == john {
		t.Error("a differing type must not resolve to the same entity")
	}
}

func TestFindOrCreateEntity_EmptyTypeMatchesAnyType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	john, err := store.FindOrCreateEntity(ctx, "owner-1", "John", "person")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	untyped, err := store.FindOrCreateEntity(ctx, "owner-1", "John", "")
	if err != nil {
		t.Fatalf("untyped lookup failed: %v", err)
	}
	if untyped != john {
		t.Errorf("untyped lookup should resolve the existing entity, got %s want %s", untyped, john)
	}
}

func TestUpdateEntityData_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	id, err := store.FindOrCreateEntity(ctx, "owner-1", "John", "person")
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	data := map[string]Component{
		"identity": {"name": "John", "occupation": "engineer"},
		"expense":  {"amount": 25.5, "currency": "USD"},
	}
	if err := store.UpdateEntityData(ctx, id, data); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	entity, err := store.GetEntity(ctx, id)
	if err != nil {
		t.Fatalf("fetch failed: %v", err)
	}
	if entity.PrimaryName != "John" || entity.Type != "person" {
		t.Errorf("unexpected entity fields: %+v", entity)
	}
	if got := entity.Data["identity"]["occupation"]; got != "engineer" {
		t.Errorf("occupation = %v, want engineer", got)
	}
	if got := entity.Data["expense"]["amount"]; got != 25.5 {
		t.Errorf("amount = %v, want 25.5", got)
	}
}

func TestUpdateEntityData_MissingEntity(t *testing.T) {
	store := newTestStore(t)

	err := store.UpdateEntityData(context.Background(), "no-such-id", map[string]Component{})
	if _, ok := err.(ErrEntityNotFound); !ok {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestGetEntity_NotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetEntity(context.Background(), "no-such-id")
	if _, ok := err.(ErrEntityNotFound); !ok {
		t.Errorf("expected ErrEntityNotFound, got %v", err)
	}
}

func TestCreateRelationship_DuplicateIsNoOp(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src, _ := store.FindOrCreateEntity(ctx, "owner-1", "Me", "person")
	tgt, _ := store.FindOrCreateEntity(ctx, "owner-1", "John", "person")

	rel := &Relationship{
		OwnerID:        "owner-1",
		SourceEntityID: src,
		TargetEntityID: tgt,
		Type:           RelSiblingOf,
		Strength:       0.8,
	}
	if err := store.CreateRelationship(ctx, rel); err != nil {
		t.Fatalf("first insert failed: %v", err)
	}

	dup := &Relationship{
		OwnerID:        "owner-1",
		SourceEntityID: src,
		TargetEntityID: tgt,
		Type:           RelSiblingOf,
		Strength:       0.5,
	}
	if err := store.CreateRelationship(ctx, dup); err != nil {
		t.Fatalf("duplicate insert must not error: %v", err)
	}

	edges, err := store.OutgoingRelationships(ctx, src, 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected exactly one edge, got %d", len(edges))
	}
	if edges[0].Strength != 0.8 {
		t.Errorf("duplicate insert must not overwrite, strength = %v", edges[0].Strength)
	}
}

func TestCreateRelationship_DirectionAndTypeDistinct(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, _ := store.FindOrCreateEntity(ctx, "owner-1", "Alice", "person")
	b, _ := store.FindOrCreateEntity(ctx, "owner-1", "Bob", "person")

	pairs := []*Relationship{
		{OwnerID: "owner-1", SourceEntityID: a, TargetEntityID: b, Type: RelFriendOf, Strength: 0.8},
		{OwnerID: "owner-1", SourceEntityID: b, TargetEntityID: a, Type: RelFriendOf, Strength: 0.8},
		{OwnerID: "owner-1", SourceEntityID: a, TargetEntityID: b, Type: RelWorksWith, Strength: 0.8},
	}
	for _, rel := range pairs {
		if err := store.CreateRelationship(ctx, rel); err != nil {
			t.Fatalf("insert failed: %v", err)
		}
	}

	out, _ := store.OutgoingRelationships(ctx, a, 0)
	in, _ := store.IncomingRelationships(ctx, a, 0)
	if len(out) != 2 {
		t.Errorf("outgoing edges from a = %d, want 2", len(out))
	}
	if len(in) != 1 {
		t.Errorf("incoming edges to a = %d, want 1", len(in))
	}
}

func TestDeleteEntity_CascadesEdges(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	a, _ := store.FindOrCreateEntity(ctx, "owner-1", "Alice", "person")
	b, _ := store.FindOrCreateEntity(ctx, "owner-1", "Bob", "person")
	c, _ := store.FindOrCreateEntity(ctx, "owner-1", "Carol", "person")

	store.CreateRelationship(ctx, &Relationship{OwnerID: "owner-1", SourceEntityID: a, TargetEntityID: b, Type: RelFriendOf, Strength: 0.8})
	store.CreateRelationship(ctx, &Relationship{OwnerID: "owner-1", SourceEntityID: c, TargetEntityID: a, Type: RelKnows, Strength: 0.8})
	store.CreateRelationship(ctx, &Relationship{OwnerID: "owner-1", SourceEntityID: c, TargetEntityID: b, Type: RelKnows, Strength: 0.8})

	if err := store.DeleteEntity(ctx, a); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	if _, err := store.GetEntity(ctx, a); err == nil {
		t.Error("deleted entity still present")
	}
	in, _ := store.IncomingRelationships(ctx, b, 0)
	if len(in) != 1 {
		t.Errorf("edges touching the deleted entity must cascade, b has %d incoming", len(in))
	}
	out, _ := store.OutgoingRelationships(ctx, c, 0)
	if len(out) != 1 {
		t.Errorf("edges from c after cascade = %d, want 1", len(out))
	}
}

func TestListEntitiesByType(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	store.FindOrCreateEntity(ctx, "owner-1", "John", "person")
	store.FindOrCreateEntity(ctx, "owner-1", "Alice", "person")
	store.FindOrCreateEntity(ctx, "owner-1", "Seattle", "location")
	store.FindOrCreateEntity(ctx, "owner-2", "Bob", "person")

	people, err := store.ListEntitiesByType(ctx, "owner-1", "person", 0)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(people) != 2 {
		t.Errorf("people for owner-1 = %d, want 2", len(people))
	}
}
