package extractors

import (
	"context"
	"strconv"
	"strings"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/triage"
)

// Kind identifies an extractor capability. Triage names extractors by these
// strings; unknown names fall back to KindGeneric at dispatch time.
type Kind string

const (
	KindGeneric      Kind = "generic"
	KindFinance      Kind = "finance"
	KindPerson       Kind = "person"
	KindEvent        Kind = "event"
	KindLocation     Kind = "location"
	KindRelationship Kind = "relationship"
)

// KindFromString resolves a triage agent name to a known kind
func KindFromString(name string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(name))) {
	case KindGeneric:
		return KindGeneric, true
	case KindFinance:
		return KindFinance, true
	case KindPerson:
		return KindPerson, true
	case KindEvent:
		return KindEvent, true
	case KindLocation:
		return KindLocation, true
	case KindRelationship:
		return KindRelationship, true
	}
	return KindGeneric, false
}

// Shared is the per-request context handed to every task alongside its raw
// fields: the original query, the triage summary, and the ids assigned so
// far. Threaded explicitly; there are no process-wide default identifiers.
type Shared struct {
	Query          string
	TriageSummary  string
	ConversationID string
	OwnerID        string
	EntityID       string
	Plan           *triage.ExecutionPlan
}

// Extractor converts a task's raw fields plus the shared context into a
// normalized component. Implementations must not fail on missing optional
// fields; sensible defaults apply instead. Extractors are pure with respect
// to external state except through injected tools.
type Extractor interface {
	Kind() Kind
	CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error)
}

// Field helpers shared by the extractors. Raw task fields arrive as
// map[string]interface{} decoded from triage JSON, so numbers are float64
// and anything may be absent.

func stringField(data map[string]interface{}, key, fallback string) string {
	if val, ok := data[key]; ok {
		if str, ok := val.(string); ok && str != "" {
			return str
		}
	}
	return fallback
}

func floatField(data map[string]interface{}, key string) (float64, bool) {
	val, ok := data[key]
	if !ok {
		return 0, false
	}
	switch v := val.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		cleaned := strings.TrimLeft(strings.TrimSpace(v), "$€£")
		cleaned = strings.ReplaceAll(cleaned, ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil {
			return f, true
		}
	}
	return 0, false
}
