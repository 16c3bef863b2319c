package extractors

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/tools"
	"lifegraph/backend/pkg/logger"
)

// SelfAlias is the primary name under which the owner's own node is
// resolved when a statement relates something to the speaker.
const SelfAlias = "Me"

// defaultStrength is assigned to edges asserted directly in a statement.
const defaultStrength = 0.8

// Candidate is one relationship tuple proposed by the pattern machine.
// Source "self" refers to the speaker and is resolved at write time.
type Candidate struct {
	Source     string
	Target     string
	Type       string
	SourceType string
	TargetType string
}

// relationshipExtractor turns social statements into graph edges. Unlike
// the other extractors it writes to the graph directly through its injected
// handle: relationship assertions are graph mutations, not entity
// components. The component it returns is only a summary of what was
// written.
type relationshipExtractor struct {
	graphAccess tools.GraphAccess
	logger      *zap.Logger
}

// NewRelationship creates the relationship extractor
func NewRelationship(graphAccess tools.GraphAccess) Extractor {
	return &relationshipExtractor{
		graphAccess: graphAccess,
		logger:      logger.Named("extractors.relationship"),
	}
}

func (r *relationshipExtractor) Kind() Kind {
	return KindRelationship
}

func (r *relationshipExtractor) CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error) {
	text := stringField(data, "raw", stringField(data, "text", shared.Query))
	candidates := ExtractRelations(text)

	written := make([]map[string]string, 0, len(candidates))
	for _, c := range candidates {
		sourceID, err := r.resolveEntity(ctx, shared.OwnerID, c.Source, c.SourceType)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve source %q: %w", c.Source, err)
		}
		targetID, err := r.resolveEntity(ctx, shared.OwnerID, c.Target, c.TargetType)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve target %q: %w", c.Target, err)
		}

		rel := &graph.Relationship{
			OwnerID:        shared.OwnerID,
			SourceEntityID: sourceID,
			TargetEntityID: targetID,
			Type:           c.Type,
			Strength:       defaultStrength,
			Metadata:       map[string]interface{}{"source_text": text},
		}
		if err := r.graphAccess.CreateRelationship(ctx, rel); err != nil {
			return nil, fmt.Errorf("failed to write edge %s-[%s]->%s: %w", c.Source, c.Type, c.Target, err)
		}

		written = append(written, map[string]string{
			"source": c.Source,
			"target": c.Target,
			"type":   c.Type,
		})
	}

	r.logger.Debug("Relationship edges written",
		zap.String("owner_id", shared.OwnerID),
		zap.Int("count", len(written)),
	)

	return graph.Component{
		"relationships": written,
		"count":         len(written),
	}, nil
}

func (r *relationshipExtractor) resolveEntity(ctx context.Context, ownerID, name, entityType string) (string, error) {
	if name == "self" {
		return r.graphAccess.FindOrCreateEntity(ctx, ownerID, SelfAlias, "person")
	}
	return r.graphAccess.FindOrCreateEntity(ctx, ownerID, name, entityType)
}

// Pattern machine. Patterns run in order over the full text; pronoun
// subjects ("he", "she", "who") resolve against the most recent named
// person, which is the only state the machine carries. Candidates missing
// a source, target or type are discarded before they reach the store.

var (
	// "Alice and Bob are friends": mutual phrasing, expands to two edges
	symmetricPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+) and ([A-Z][a-zA-Z]+) are ((?:best )?[a-z]+)`)
	// "John is my brother"
	possessivePattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+) is my ((?:best )?[a-z]+)`)
	// "John works at Acme" / "he works for Initech"
	worksAtPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+|[Hh]e|[Ss]he|who) works (?:at|for) ([A-Z][\w&'.-]*(?: [A-Z][\w&'.-]*)*)`)
	// "John lives in Seattle" / "who lives in Seattle"
	livesInPattern = regexp.MustCompile(`\b([A-Z][a-zA-Z]+|[Hh]e|[Ss]he|who) lives in ([A-Z][a-zA-Z]+(?: [A-Z][a-zA-Z]+)*)`)
)

// ExtractRelations runs the ordered patterns over a text block and returns
// the surviving candidate tuples.
func ExtractRelations(text string) []Candidate {
	var (
		candidates  []Candidate
		lastSubject string
	)

	add := func(c Candidate) {
		if c.Source == "" || c.Target == "" || c.Type == "" {
			return
		}
		candidates = append(candidates, c)
	}

	for _, match := range symmetricPattern.FindAllStringSubmatch(text, -1) {
		relType := graph.NormalizeRelationType(match[3])
		add(Candidate{Source: match[1], Target: match[2], Type: relType, SourceType: "person", TargetType: "person"})
		add(Candidate{Source: match[2], Target: match[1], Type: relType, SourceType: "person", TargetType: "person"})
		lastSubject = match[1]
	}

	for _, match := range possessivePattern.FindAllStringSubmatch(text, -1) {
		relType := graph.NormalizeRelationType(match[2])
		// For directed types the descriptor names the source: "Sarah is
		// my boss" puts Sarah at the head of the manager_of edge.
		if graph.DirectedRelationType(relType) {
			add(Candidate{Source: match[1], Target: "self", Type: relType, SourceType: "person", TargetType: "person"})
		} else {
			add(Candidate{Source: "self", Target: match[1], Type: relType, SourceType: "person", TargetType: "person"})
		}
		lastSubject = match[1]
	}

	for _, match := range worksAtPattern.FindAllStringSubmatch(text, -1) {
		subject := resolveSubject(match[1], lastSubject)
		add(Candidate{Source: subject, Target: match[2], Type: graph.RelWorksAt, SourceType: "person", TargetType: "organization"})
		if subject != "" {
			lastSubject = subject
		}
	}

	for _, match := range livesInPattern.FindAllStringSubmatch(text, -1) {
		subject := resolveSubject(match[1], lastSubject)
		add(Candidate{Source: subject, Target: match[2], Type: graph.RelLivesIn, SourceType: "person", TargetType: "location"})
		if subject != "" {
			lastSubject = subject
		}
	}

	return candidates
}

func resolveSubject(captured, lastSubject string) string {
	switch strings.ToLower(captured) {
	case "he", "she", "who":
		return lastSubject
	}
	return captured
}
