package services

import (
	"context"
	"strings"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// ShoppingService maintains the supply list. New items prepend; an omitted
// quantity defaults to "1".
type ShoppingService struct {
	base
}

func (s *ShoppingService) List() []core.ShoppingItem {
	return s.store.Shopping()
}

func (s *ShoppingService) Create(ctx context.Context, item, quantity string) (core.ShoppingItem, error) {
	if strings.TrimSpace(quantity) == "" {
		quantity = "1"
	}
	rec := core.ShoppingItem{ID: s.newID(), Item: strings.TrimSpace(item), Quantity: quantity}
	if err := rec.Validate(); err != nil {
		return core.ShoppingItem{}, err
	}

	next := append([]core.ShoppingItem{rec}, s.store.Shopping()...)
	s.store.ReplaceShopping(next)
	s.dispatch(gateway.KeyShopping, next)

	s.log.InfoContext(ctx, "Supply item added", "id", rec.ID, "item", rec.Item)
	return rec, nil
}

func (s *ShoppingService) Update(ctx context.Context, id string, fields core.ShoppingItem) ([]core.ShoppingItem, error) {
	fields.ID = id
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	cur := s.store.Shopping()
	next := make([]core.ShoppingItem, len(cur))
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

	s.store.ReplaceShopping(next)
	s.dispatch(gateway.KeyShopping, next)
	return next, nil
}

func (s *ShoppingService) Delete(ctx context.Context, id string) []core.ShoppingItem {
	cur := s.store.Shopping()
	next := make([]core.ShoppingItem, 0, len(cur))
	for _, it := range cur {
		if it.ID != id {
			next = append(next, it)
		}
	}
	if len(next) == len(cur) {
		return cur
	}

	s.store.ReplaceShopping(next)
	s.dispatch(gateway.KeyShopping, next)
	s.log.InfoContext(ctx, "Supply item removed", "id", id)
	return next
}
