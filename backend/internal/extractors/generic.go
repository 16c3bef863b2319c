package extractors

import (
	"context"

	"go.uber.org/zap"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/tools"
	"lifegraph/backend/pkg/logger"
)

// genericExtractor passes raw fields through with defaults applied. It is
// also the fallback target when triage names an extractor nobody registered.
type genericExtractor struct {
	search tools.Search
	logger *zap.Logger
}

// NewGeneric creates the generic extractor. search may be nil; lookups are
// an optional enrichment.
func NewGeneric(search tools.Search) Extractor {
	return &genericExtractor{
		search: search,
		logger: logger.Named("extractors.generic"),
	}
}

func (g *genericExtractor) Kind() Kind {
	return KindGeneric
}

func (g *genericExtractor) CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error) {
	component := graph.Component{}
	for key, val := range data {
		component[key] = val
	}
	if _, ok := component["note"]; !ok {
		component["note"] = stringField(data, "raw", shared.Query)
	}

	// Optional enrichment when triage asks for a lookup
	if query := stringField(data, "search_query", ""); query != "" && g.search != nil {
		results, err := g.search.Search(ctx, query, 3)
		if err != nil {
			g.logger.Debug("Search enrichment failed", zap.String("query", query), zap.Error(err))
		} else if len(results) > 0 {
			component["search_results"] = results
		}
	}

	return component, nil
}
