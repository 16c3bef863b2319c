package tools

import (
	"context"
	"time"

	"lifegraph/backend/internal/graph"
)

// Tool names used by the registry's permission map
const (
	ToolGraphAccess = "graph_access"
	ToolWebSearch   = "web_search"
	ToolCalendar    = "calendar"
	ToolWeather     = "weather"
)

// Tool is the marker every capability implements
type Tool interface {
	Name() string
}

// GraphAccess is the graph mutation capability handed to extractors that
// assert relationships. Edge writes through this handle bypass component
// assembly on purpose: relationship assertions are graph mutations, not
// entity components.
type GraphAccess interface {
	Tool
	FindOrCreateEntity(ctx context.Context, ownerID, name, entityType string) (string, error)
	CreateRelationship(ctx context.Context, rel *graph.Relationship) error
	OutgoingRelationships(ctx context.Context, entityID string, limit int) ([]graph.Relationship, error)
	IncomingRelationships(ctx context.Context, entityID string, limit int) ([]graph.Relationship, error)
}

// SearchResult is a single web search hit
type SearchResult struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Search is the web lookup capability
type Search interface {
	Tool
	Search(ctx context.Context, query string, limit int) ([]SearchResult, error)
}

// Calendar resolves relative date expressions against a reference clock
type Calendar interface {
	Tool
	ResolveDate(expression string, now time.Time) (time.Time, bool)
}

// WeatherReport is a point-in-time weather observation for a place
type WeatherReport struct {
	Location    string  `json:"location"`
	Temperature float64 `json:"temperature_c"`
	WindSpeed   float64 `json:"wind_speed_kmh"`
	Condition   string  `json:"condition"`
}

// Weather is the weather lookup capability
type Weather interface {
	Tool
	Current(ctx context.Context, location string) (*WeatherReport, error)
}
