package triage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"lifegraph/backend/internal/history"
	apperrors "lifegraph/backend/pkg/errors"
	"lifegraph/backend/pkg/logger"
)

// Client decomposes a user statement into an execution plan. Satisfied by
// the LLM-backed adapter below and by test doubles.
type Client interface {
	Triage(ctx context.Context, query string, turns []history.Turn) (*ExecutionPlan, error)
}

// Adapter talks to the triage collaborator through an OpenAI-compatible
// endpoint (LiteLLM-style proxies included)
type Adapter struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
}

// NewAdapter creates a triage adapter
func NewAdapter(baseURL, apiKey, modelID string, timeout time.Duration) *Adapter {
	// Proxies accept a dummy key when none is configured
	if apiKey == "" {
		apiKey = "dummy-key"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	config := openai.DefaultConfig(apiKey)
	config.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"

	return &Adapter{
		client:  openai.NewClientWithConfig(config),
		model:   modelID,
		timeout: timeout,
		logger:  logger.Named("triage"),
	}
}

// Triage sends the query plus conversation context to the collaborator and
// parses its output as an execution plan. Each attempt is bounded by the
// configured timeout; a failed call is retried exactly once.
func (a *Adapter) Triage(ctx context.Context, query string, turns []history.Turn) (*ExecutionPlan, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(turns)*2+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range turns {
		messages = append(messages,
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: turn.UserText},
			openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: turn.AssistantText},
		)
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	req := openai.ChatCompletionRequest{
		Model:       a.model,
		Messages:    messages,
		Temperature: 0.2,
	}

	var (
		resp openai.ChatCompletionResponse
		err  error
	)
	const maxAttempts = 2
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			a.logger.Warn("Retrying triage request", zap.Int("attempt", attempt+1))
			time.Sleep(time.Second)
		}

		attemptCtx, cancel := context.WithTimeout(ctx, a.timeout)
		resp, err = a.client.CreateChatCompletion(attemptCtx, req)
		cancel()
		if err == nil {
			break
		}

		a.logger.Error("Triage request failed",
			zap.Error(err),
			zap.Int("attempt", attempt+1),
			zap.String("model", a.model),
		)
	}
	if err != nil {
		return nil, apperrors.NewTriageUnavailable(a.model, maxAttempts, err)
	}

	if len(resp.Choices) == 0 {
		return nil, apperrors.NewTriagePlanInvalid("no choices in response", nil)
	}

	plan, err := ParsePlan(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, err
	}

	a.logger.Debug("Triage plan received",
		zap.String("model", a.model),
		zap.Int("tasks", len(plan.ComponentTasks)),
		zap.Bool("has_target", plan.TargetEntity != nil),
	)
	return plan, nil
}

// systemPrompt describes the plan schema the collaborator must emit.
var systemPrompt = fmt.Sprintf(`You are an intent triage service for a personal knowledge graph.
Decompose the user's statement into an execution plan. Respond with JSON only, no prose, matching:

{
  "triage_summary": "one sentence describing the intent",
  "suggested_response": "short confirmation to show the user",
  "target_entity": {"alias": "display name of the main entity", "type": "person|event|task|transaction|location|..."},
  "component_tasks": [
    {
      "task_id": "t1",
      "original_query_part": "the fragment this task covers",
      "target_agent": "one of: %s",
      "component_name": "name the extracted record is stored under",
      "component_data": {"raw fields": "for the extractor"}
    }
  ]
}

Order tasks so that earlier tasks produce anything later ones depend on.`, strings.Join(knownAgents, ", "))

// knownAgents mirrors the registry's extractor kinds; unknown names fall
// back to the generic extractor at dispatch time.
var knownAgents = []string{"generic", "finance", "person", "event", "location", "relationship"}
