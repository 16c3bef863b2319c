package orchestrator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"lifegraph/backend/internal/extractors"
	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/history"
	"lifegraph/backend/internal/triage"
	apperrors "lifegraph/backend/pkg/errors"
	"lifegraph/backend/pkg/logger"
)

// Request is one ingestion call. OwnerID and ConversationID are assigned by
// the caller per request; nothing here falls back to a process-wide default.
type Request struct {
	Query          string
	ConversationID string
	OwnerID        string
}

// Result reports what a processed request produced
type Result struct {
	EntityID          string
	Components        map[string]graph.Component
	SuggestedResponse string
}

// ExtractorRegistry resolves triage agent names to extractors. The second
// return of GetExtractor reports a fallback to the generic extractor.
type ExtractorRegistry interface {
	GetExtractor(name string) (extractors.Extractor, bool, error)
}

// Orchestrator runs the ingestion pipeline: history, triage, sequential task
// dispatch, component merge, persistence.
type Orchestrator struct {
	triage   triage.Client
	registry ExtractorRegistry
	store    graph.Store
	history  history.Cache
	logger   *zap.Logger
}

func New(triageClient triage.Client, reg ExtractorRegistry, store graph.Store, cache history.Cache) *Orchestrator {
	return &Orchestrator{
		triage:   triageClient,
		registry: reg,
		store:    store,
		history:  cache,
		logger:   logger.Named("orchestrator"),
	}
}

// Process executes one ingestion request end to end. Individual task
// failures are recoverable; the call errors only when triage fails, every
// task fails, or persistence fails. Persistence is not transactional: a
// failed entity write after relationship extraction leaves those edges in
// place.
func (o *Orchestrator) Process(ctx context.Context, req Request) (*Result, error) {
	if req.Query == "" {
		return nil, apperrors.NewValidationFailed("query", "must not be empty")
	}
	if req.OwnerID == "" {
		return nil, apperrors.NewValidationFailed("ownerId", "must not be empty")
	}

	turns, err := o.history.Recent(ctx, req.ConversationID)
	if err != nil {
		o.logger.Warn("Failed to load conversation history, proceeding without it",
			zap.String("conversation_id", req.ConversationID),
			zap.Error(err),
		)
		turns = nil
	}

	plan, err := o.triage.Triage(ctx, req.Query, turns)
	if err != nil {
		return nil, err
	}
	if err := plan.Validate(); err != nil {
		return nil, err
	}

	o.logger.Info("Execution plan received",
		zap.String("summary", plan.TriageSummary),
		zap.Int("tasks", len(plan.ComponentTasks)),
	)

	// The target entity is resolved before any task runs: tasks execute
	// sequentially because later ones may consume the assigned entity id
	// from the shared context.
	entityID, err := o.resolveTarget(ctx, req.OwnerID, plan.TargetEntity)
	if err != nil {
		return nil, err
	}

	shared := &extractors.Shared{
		Query:          req.Query,
		TriageSummary:  plan.TriageSummary,
		ConversationID: req.ConversationID,
		OwnerID:        req.OwnerID,
		EntityID:       entityID,
		Plan:           plan,
	}

	components := make(map[string]graph.Component)
	failed := 0
	for _, task := range plan.ComponentTasks {
		component, err := o.runTask(ctx, task, shared)
		if err != nil {
			failed++
			o.logger.Warn("Component task failed",
				zap.String("task_id", task.TaskID),
				zap.String("target_agent", task.TargetAgent),
				zap.Error(err),
			)
			continue
		}
		// Last write wins when two tasks name the same component.
		components[task.ComponentName] = component
	}

	// The target entity exists even when every task failed; only its
	// components are missing.
	allFailed := len(plan.ComponentTasks) > 0 && failed == len(plan.ComponentTasks)

	if len(components) > 0 {
		if err := o.persistComponents(ctx, entityID, components); err != nil {
			return nil, err
		}
	}

	result := &Result{
		EntityID:          entityID,
		Components:        components,
		SuggestedResponse: plan.SuggestedResponse,
	}

	if allFailed {
		return nil, apperrors.ErrAllTasksFailed
	}

	turn := history.Turn{UserText: req.Query, AssistantText: plan.SuggestedResponse}
	if err := o.history.Append(ctx, req.ConversationID, turn); err != nil {
		o.logger.Warn("Failed to record conversation turn",
			zap.String("conversation_id", req.ConversationID),
			zap.Error(err),
		)
	}

	return result, nil
}

// runTask dispatches a single task to its extractor. A panic inside an
// extractor is contained here and surfaces as a task failure.
func (o *Orchestrator) runTask(ctx context.Context, task triage.ComponentTask, shared *extractors.Shared) (component graph.Component, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = apperrors.NewAgentExecutionFailed(task.TaskID, task.TargetAgent, fmt.Errorf("extractor panic: %v", r))
		}
	}()

	extractor, fellBack, err := o.registry.GetExtractor(task.TargetAgent)
	if err != nil {
		return nil, apperrors.NewAgentExecutionFailed(task.TaskID, task.TargetAgent, err)
	}
	if fellBack {
		o.logger.Info("Dispatching unrecognized agent to generic extractor",
			zap.String("task_id", task.TaskID),
			zap.String("target_agent", task.TargetAgent),
		)
	}

	component, err = extractor.CreateComponent(ctx, task.ComponentData, shared)
	if err != nil {
		return nil, apperrors.NewAgentExecutionFailed(task.TaskID, string(extractor.Kind()), err)
	}
	return component, nil
}

func (o *Orchestrator) resolveTarget(ctx context.Context, ownerID string, target *triage.TargetEntity) (string, error) {
	entityType := target.Type
	if entityType == "" {
		entityType = "unknown"
	}

	entityID, err := o.store.FindOrCreateEntity(ctx, ownerID, target.Alias, entityType)
	if err != nil {
		return "", apperrors.NewPersistenceFailed("find or create entity", err)
	}
	return entityID, nil
}

func (o *Orchestrator) persistComponents(ctx context.Context, entityID string, components map[string]graph.Component) error {
	entity, err := o.store.GetEntity(ctx, entityID)
	if err != nil {
		return apperrors.NewPersistenceFailed("load entity data", err)
	}

	merged := entity.Data
	if merged == nil {
		merged = make(map[string]graph.Component, len(components))
	}
	for name, component := range components {
		merged[name] = component
	}

	if err := o.store.UpdateEntityData(ctx, entityID, merged); err != nil {
		return apperrors.NewPersistenceFailed("update entity data", err)
	}

	o.logger.Info("Entity persisted",
		zap.String("entity_id", entityID),
		zap.Int("components", len(components)),
	)
	return nil
}
