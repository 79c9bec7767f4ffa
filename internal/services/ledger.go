package services

import (
	"context"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// LedgerService maintains the financial ledger. New transactions are
// prepended so the newest entry reads first.
type LedgerService struct {
	base
}

func (s *LedgerService) List() []core.Transaction {
	return s.store.Transactions()
}

func (s *LedgerService) Create(ctx context.Context, input core.Transaction) (core.Transaction, error) {
	if input.Date.IsZero() {
		input.Date = core.Today()
	}
	input.ID = s.newID()
	if err := input.Validate(); err != nil {
		return core.Transaction{}, err
	}

	next := append([]core.Transaction{input}, s.store.Transactions()...)
	s.store.ReplaceTransactions(next)
	s.dispatch(gateway.KeyTransactions, next)

	s.log.InfoContext(ctx, "Transaction recorded",
		"id", input.ID,
		"item", input.Item,
		"type", string(input.Type),
		"cost_cents", input.Cost.Cents)
	return input, nil
}

// Update replaces the full record matching id. Unknown ids are a silent no-op.
func (s *LedgerService) Update(ctx context.Context, id string, fields core.Transaction) ([]core.Transaction, error) {
	fields.ID = id
	if err := fields.Validate(); err != nil {
		return nil, err
	}

	cur := s.store.Transactions()
	next := make([]core.Transaction, len(cur))
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

	s.store.ReplaceTransactions(next)
	s.dispatch(gateway.KeyTransactions, next)
	return next, nil
}

func (s *LedgerService) Delete(ctx context.Context, id string) []core.Transaction {
	cur := s.store.Transactions()
	next := make([]core.Transaction, 0, len(cur))
	for _, t := range cur {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if len(next) == len(cur) {
		return cur
	}

	s.store.ReplaceTransactions(next)
	s.dispatch(gateway.KeyTransactions, next)
	s.log.InfoContext(ctx, "Transaction deleted", "id", id)
	return next
}

// Summary derives the budget overview against the configured ceiling.
func (s *LedgerService) Summary(budget core.Money) core.BudgetSummary {
	return core.Summarize(s.store.Transactions(), budget)
}
