package services

import (
	"context"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// ClassService maintains the class planner. New classes prepend.
type ClassService struct {
	base
}

func (s *ClassService) List() []core.ClassItem {
	return s.store.Classes()
}

func (s *ClassService) Create(ctx context.Context, input core.ClassItem) (core.ClassItem, error) {
	if input.Status == "" {
		input.Status = core.StatusPlanning
	}
	input.ID = s.newID()
	if err := input.Validate(); err != nil {
		return core.ClassItem{}, err
	}

	next := append([]core.ClassItem{input}, s.store.Classes()...)
	s.store.ReplaceClasses(next)
	s.dispatch(gateway.KeyClasses, next)

	s.log.InfoContext(ctx, "Class scheduled",
		"id", input.ID, "name", input.Name, "date", input.Date.String())
	return input, nil
}

func (s *ClassService) Update(ctx context.Context, id string, fields core.ClassItem) ([]core.ClassItem, error) {
	fields.ID = id
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	cur := s.store.Classes()
	next := make([]core.ClassItem, len(cur))
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

	s.store.ReplaceClasses(next)
	s.dispatch(gateway.KeyClasses, next)
	return next, nil
}

func (s *ClassService) Delete(ctx context.Context, id string) []core.ClassItem {
	cur := s.store.Classes()
	next := make([]core.ClassItem, 0, len(cur))
	for _, c := range cur {
		if c.ID != id {
			next = append(next, c)
		}
	}
	if len(next) == len(cur) {
		return cur
	}

	s.store.ReplaceClasses(next)
	s.dispatch(gateway.KeyClasses, next)
	s.log.InfoContext(ctx, "Class deleted", "id", id)
	return next
}
