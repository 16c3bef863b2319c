package extractors

import (
	"context"
	"time"

	"lifegraph/backend/internal/graph"
	"lifegraph/backend/internal/tools"
)

// eventExtractor normalizes plans and appointments, resolving relative date
// expressions through the calendar tool
type eventExtractor struct {
	calendar tools.Calendar
	now      func() time.Time
}

// NewEvent creates the event extractor
func NewEvent(calendar tools.Calendar) Extractor {
	return &eventExtractor{
		calendar: calendar,
		now:      time.Now,
	}
}

func (e *eventExtractor) Kind() Kind {
	return KindEvent
}

func (e *eventExtractor) CreateComponent(ctx context.Context, data map[string]interface{}, shared *Shared) (graph.Component, error) {
	title := stringField(data, "title", "")
	if title == "" {
		title = stringField(data, "raw", shared.Query)
	}

	component := graph.Component{
		"title": title,
	}
	if location := stringField(data, "location", ""); location != "" {
		component["location"] = location
	}
	if participants, ok := data["participants"]; ok {
		component["participants"] = participants
	}

	when := stringField(data, "when", stringField(data, "date", ""))
	if when != "" {
		component["when"] = when
		if e.calendar != nil {
			if resolved, ok := e.calendar.ResolveDate(when, e.now()); ok {
				component["date"] = resolved.Format("2006-01-02")
			}
		}
	}

	return component, nil
}
