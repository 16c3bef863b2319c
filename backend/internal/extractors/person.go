package extractors

import (
	"context"

	"go.uber.org/zap"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/tools"
	"lifegraph/backend/pkg/logger"
)

// personExtractor normalizes statements about a person and, when the
// statement names someone other than the target entity, registers that
// person as their own graph node so later relationship assertions can
// attach to them
type personExtractor struct {
	graphAccess tools.GraphAccess
	logger      *zap.Logger
}

// NewPerson creates the person extractor
func NewPerson(graphAccess tools.GraphAccess) Extractor {
	return &personExtractor{
		graphAccess: graphAccess,
		logger:      logger.Named("extractors.person"),
	}
}

func (p *personExtractor) Kind() Kind {
	return KindPerson
}

func (p *personExtractor) CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error) {
	name := stringField(data, "name", "")
	if name == "" && shared.Plan != nil && shared.Plan.TargetEntity != nil {
		name = shared.Plan.TargetEntity.Alias
	}

	component := graph.Component{
		"name": name,
	}
	for _, key := range []string{"occupation", "birthday", "location", "notes", "nickname"} {
		if val := stringField(data, key, ""); val != "" {
			component[key] = val
		}
	}

	// A person other than the plan's target gets their own node eagerly so
	// edges written later in the same plan have somewhere to land
	if name != "" && p.graphAccess != nil && shared.OwnerID != "" {
		targetAlias := ""
		if shared.Plan != nil && shared.Plan.TargetEntity != nil {
			targetAlias = shared.Plan.TargetEntity.Alias
		}
		if name != targetAlias {
			if _, err := p.graphAccess.FindOrCreateEntity(ctx, shared.OwnerID, name, "person"); err != nil {
				p.logger.Warn("Failed to register person node",
					zap.String("name", name),
					zap.Error(err),
				)
			}
		}
	}

	return component, nil
}
