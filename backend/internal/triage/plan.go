package triage

import (
	"encoding/json"
	"strings"

	apperrors "lifegraph/backend/pkg/errors"
)

// TargetEntity names the entity a plan resolves against
type TargetEntity struct {
	Alias string `json:"alias"`
	Type  string `json:"type"`
}

// ComponentTask is one unit of extraction work within a plan
type ComponentTask struct {
	TaskID            string                 `json:"task_id"`
	OriginalQueryPart string                 `json:"original_query_part"`
	TargetAgent       string                 `json:"target_agent"`
	ComponentName     string                 `json:"component_name"`
	ComponentData     map[string]interface{} `json:"component_data"`
}

// ExecutionPlan is the triage collaborator's decomposition of one user
// statement. Ephemeral: consumed once by the orchestrator, never persisted.
type ExecutionPlan struct {
	TriageSummary     string          `json:"triage_summary"`
	SuggestedResponse string          `json:"suggested_response"`
	TargetEntity      *TargetEntity   `json:"target_entity"`
	ComponentTasks    []ComponentTask `json:"component_tasks"`
}

// Validate checks the structural requirements: a plan without a target
// entity, without a resolvable target alias, or without a component task
// array cannot be dispatched.
func (p *ExecutionPlan) Validate() error {
	if p.TargetEntity == nil {
		return apperrors.NewTriagePlanInvalid("missing target_entity", nil)
	}
	if p.TargetEntity.Alias == "" {
		return apperrors.NewTriagePlanInvalid("target_entity has no alias", nil)
	}
	if p.ComponentTasks == nil {
		return apperrors.NewTriagePlanInvalid("missing component_tasks", nil)
	}
	return nil
}

// ParsePlan parses a triage response body into an ExecutionPlan. The
// collaborator may wrap its JSON in markdown code fences; those are
// stripped before parsing.
func ParsePlan(raw string) (*ExecutionPlan, error) {
	cleaned := StripCodeFences(raw)
	if cleaned == "" {
		return nil, apperrors.NewTriagePlanInvalid("empty response", nil)
	}

	var plan ExecutionPlan
	if err := json.Unmarshal([]byte(cleaned), &plan); err != nil {
		return nil, apperrors.NewTriagePlanInvalid("unparsable response", err)
	}
	return &plan, nil
}

// StripCodeFences removes a surrounding markdown code fence, with or
// without a language tag, leaving other content untouched.
func StripCodeFences(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	// Drop a language tag like "json" on the opening fence line
	if idx := strings.Index(trimmed, "\n"); idx != -1 {
		firstLine := strings.TrimSpace(trimmed[:idx])
		if firstLine != "" && !strings.ContainsAny(firstLine, "{[") {
			trimmed = trimmed[idx+1:]
		}
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
