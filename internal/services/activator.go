package services

import (
	"context"

	"makeros/internal/core"
	"makeros/internal/gateway"
)

// ActivatorService owns the singleton monthly project document. The document
// is only ever replaced wholesale; there is no field-level patch.
type ActivatorService struct {
	base
}

func (s *ActivatorService) Get() core.ActivatorDocument {
	return s.store.Activator()
}

func (s *ActivatorService) Replace(ctx context.Context, doc core.ActivatorDocument) (core.ActivatorDocument, error) {
	if err := doc.Validate(); err != nil {
		return core.ActivatorDocument{}, err
	}

	s.store.ReplaceActivator(doc)
	s.dispatch(gateway.KeyActivator, doc)

	s.log.InfoContext(ctx, "Activator document replaced",
		"title", doc.Title, "month", doc.Month)
	return doc, nil
}
