package extractors

import (
	"context"

	"go.uber.org/zap"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/tools"
	"lifegraph/backend/pkg/logger"
)

// locationExtractor normalizes statements about places, enriching them with
// current conditions when the weather tool is available
type locationExtractor struct {
	weather tools.Weather
	logger  *zap.Logger
}

// NewLocation creates the location extractor
func NewLocation(weather tools.Weather) Extractor {
	return &locationExtractor{
		weather: weather,
		logger:  logger.Named("extractors.location"),
	}
}

func (l *locationExtractor) Kind() Kind {
	return KindLocation
}

func (l *locationExtractor) CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error) {
	place := stringField(data, "place", stringField(data, "name", ""))
	if place == "" && shared.Plan != nil && shared.Plan.TargetEntity != nil {
		place = shared.Plan.TargetEntity.Alias
	}

	component := graph.Component{
		"place": place,
	}
	for _, key := range []string{"address", "city", "country", "notes"} {
		if val := stringField(data, key, ""); val != "" {
			component[key] = val
		}
	}

	// Weather is a best-effort enrichment; a failed lookup never fails the task
	if place != "" && l.weather != nil {
		if report, err := l.weather.Current(ctx, place); err != nil {
			l.logger.Debug("Weather enrichment failed", zap.String("place", place), zap.Error(err))
		} else {
			component["weather"] = report
		}
	}

	return component, nil
}
