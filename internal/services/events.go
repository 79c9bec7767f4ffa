package services

import (
	"context"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// EventService maintains community events. Unlike the other planners, new
// events append, keeping the collection in creation order.
type EventService struct {
	base
}

func (s *EventService) List() []core.EventItem {
	return s.store.Events()
}

func (s *EventService) Create(ctx context.Context, input core.EventItem) (core.EventItem, error) {
	if input.Date.IsZero() {
		input.Date = core.Today()
	}
	if input.Type == "" {
		input.Type = core.EventPublic
	}
	input.ID = s.newID()
	if err := input.Validate(); err != nil {
		return core.EventItem{}, err
	}

	next := append(s.store.Events(), input)
	s.store.ReplaceEvents(next)
	s.dispatch(gateway.KeyEvents, next)

	s.log.InfoContext(ctx, "Event created",
		"id", input.ID, "name", input.Name, "type", string(input.Type))
	return input, nil
}

func (s *EventService) Update(ctx context.Context, id string, fields core.EventItem) ([]core.EventItem, error) {
	fields.ID = id
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	cur := s.store.Events()
	next := make([]core.EventItem, len(cur))
	copy(next, cur)
	found := false
	for i := range next {
		if next[i].ID == id {
			next[i] = fields
			found = true
			break
		}
	}
	if !found {
		return cur, nil
	}

	s.store.ReplaceEvents(next)
	s.dispatch(gateway.KeyEvents, next)
	return next, nil
}

func (s *EventService) Delete(ctx context.Context, id string) []core.EventItem {
	cur := s.store.Events()
	next := make([]core.EventItem, 0, len(cur))
	for _, e := range cur {
		if e.ID != id {
			next = append(next, e)
		}
	}
	if len(next) == len(cur) {
		return cur
	}

	s.store.ReplaceEvents(next)
	s.dispatch(gateway.KeyEvents, next)
	s.log.InfoContext(ctx, "Event deleted", "id", id)
	return next
}
