package registry

import (
	"sync"

	"go.uber.org/zap"

	"lifegraph/backend/internal/extractors"
	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/tools"
	apperrors "lifegraph/backend/pkg/errors"
	"lifegraph/backend/pkg/logger"
)

// permissions declares which tools each extractor kind may request. An
// extractor cannot reach a tool absent from its set; GetTool is the single
// choke point enforcing this.
var permissions = map[extractors.Kind]map[string]bool{
	extractors.KindGeneric:      {tools.ToolWebSearch: true},
	extractors.KindFinance:      {},
	extractors.KindPerson:       {tools.ToolGraphAccess: true},
	extractors.KindEvent:        {tools.ToolCalendar: true},
	extractors.KindLocation:     {tools.ToolWeather: true},
	extractors.KindRelationship: {tools.ToolGraphAccess: true},
}

// Registry lazily constructs extractors and shared tools as singletons and
// scopes tool access through the permission map
type Registry struct {
	store graph.Store

	mu         sync.Mutex
	tools      map[string]tools.Tool
	extractors map[extractors.Kind]extractors.Extractor

	logger *zap.Logger
}

// New creates a registry backed by the given graph store
func New(store graph.Store) *Registry {
	return &Registry{
		store:      store,
		tools:      make(map[string]tools.Tool),
		extractors: make(map[extractors.Kind]extractors.Extractor),
		logger:     logger.Named("registry"),
	}
}

// GetExtractor resolves a triage agent name to an extractor. An unknown
// name resolves to the generic extractor; the second return reports that
// fallback so callers can record it as a recoverable condition.
func (r *Registry) GetExtractor(name string) (extractors.Extractor, bool, error) {
	kind, known := extractors.KindFromString(name)
	if !known {
		r.logger.Warn("Unknown extractor requested, falling back to generic",
			zap.String("requested", name),
		)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if extractor, ok := r.extractors[kind]; ok {
		return extractor, !known, nil
	}

	extractor, err := r.buildExtractor(kind)
	if err != nil {
		return nil, !known, err
	}
	r.extractors[kind] = extractor
	return extractor, !known, nil
}

// GetTool resolves a shared tool for a requesting extractor kind, failing
// with PermissionDenied when the kind's permission set does not declare the
// tool and ToolNotFound when no such tool exists at all.
func (r *Registry) GetTool(name string, requesting extractors.Kind) (tools.Tool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getToolLocked(name, requesting)
}

func (r *Registry) getToolLocked(name string, requesting extractors.Kind) (tools.Tool, error) {
	if !permissions[requesting][name] {
		return nil, apperrors.NewPermissionDenied(string(requesting), name)
	}

	if tool, ok := r.tools[name]; ok {
		return tool, nil
	}

	tool := r.buildTool(name)
	if tool == nil {
		return nil, apperrors.NewToolNotFound(name)
	}
	r.tools[name] = tool
	return tool, nil
}

func (r *Registry) buildTool(name string) tools.Tool {
	switch name {
	case tools.ToolGraphAccess:
		return tools.NewGraphAccess(r.store)
	case tools.ToolWebSearch:
		return tools.NewSearch("")
	case tools.ToolCalendar:
		return tools.NewCalendar()
	case tools.ToolWeather:
		return tools.NewWeather("", "")
	default:
		return nil
	}
}

func (r *Registry) buildExtractor(kind extractors.Kind) (extractors.Extractor, error) {
	switch kind {
	case extractors.KindFinance:
		return extractors.NewFinance(), nil
	case extractors.KindPerson:
		tool, err := r.getToolLocked(tools.ToolGraphAccess, kind)
		if err != nil {
			return nil, err
		}
		return extractors.NewPerson(tool.(tools.GraphAccess)), nil
	case extractors.KindEvent:
		tool, err := r.getToolLocked(tools.ToolCalendar, kind)
		if err != nil {
			return nil, err
		}
		return extractors.NewEvent(tool.(tools.Calendar)), nil
	case extractors.KindLocation:
		tool, err := r.getToolLocked(tools.ToolWeather, kind)
		if err != nil {
			return nil, err
		}
		return extractors.NewLocation(tool.(tools.Weather)), nil
	case extractors.KindRelationship:
		tool, err := r.getToolLocked(tools.ToolGraphAccess, kind)
		if err != nil {
			return nil, err
		}
		return extractors.NewRelationship(tool.(tools.GraphAccess)), nil
	default:
		tool, err := r.getToolLocked(tools.ToolWebSearch, extractors.KindGeneric)
		if err != nil {
			return nil, err
		}
		return extractors.NewGeneric(tool.(tools.Search)), nil
	}
}
