// Package spark serves the daily AI project suggestion. A suggestion is
// fetched from the provider at most once per calendar day and cached; an
// explicit regenerate bypasses the cache. A cached suggestion can be promoted
// into the monthly Activator Document.
package spark

import (
	"context"
	"sync"
	"time"

	"makeros/internal/core"
	"makeros/internal/gateway"
	applog "makeros/internal/log"
	"makeros/internal/store"
)

// Provider produces one project suggestion per call.
type Provider interface {
	Generate(ctx context.Context) (core.SuggestedProject, error)
}

// Syncer queues a save of a document under its storage key.
type Syncer interface {
	Dispatch(key string, payload any) <-chan gateway.Ack
}

// Service caches the day's suggestion and handles promotion.
type Service struct {
	mu       sync.Mutex
	provider Provider
	store    *store.Store
	sync     Syncer
	now      func() time.Time
	log      *applog.Logger
	cached   *core.SuggestedProject
}

func NewService(provider Provider, st *store.Store, sync Syncer) *Service {
	return &Service{
		provider: provider,
		store:    st,
		sync:     sync,
		now:      time.Now,
		log:      applog.Default(applog.ComponentSpark),
	}
}

// Restore installs a previously persisted suggestion. A stale one (generated
// on an earlier day) is dropped so the next read fetches fresh.
func (s *Service) Restore(p *core.SuggestedProject) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.GeneratedOn.Equal(core.DateOf(s.now())) {
		cp := *p
		s.cached = &cp
	}
}

// Current returns the cached suggestion without fetching.
func (s *Service) Current() (core.SuggestedProject, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cached == nil {
		return core.SuggestedProject{}, false
	}
	return *s.cached, true
}

// Daily returns today's suggestion, fetching from the provider only when the
// cache is empty or dated before today.
func (s *Service) Daily(ctx context.Context) (core.SuggestedProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	today := core.DateOf(s.now())
	if s.cached != nil && s.cached.GeneratedOn.Equal(today) {
		return *s.cached, nil
	}
	return s.fetch(ctx, today)
}

// Regenerate fetches a fresh suggestion regardless of the cache.
func (s *Service) Regenerate(ctx context.Context) (core.SuggestedProject, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetch(ctx, core.DateOf(s.now()))
}

// fetch calls the provider and replaces the cache. Callers hold s.mu.
func (s *Service) fetch(ctx context.Context, today core.Date) (core.SuggestedProject, error) {
	p, err := s.provider.Generate(ctx)
	if err != nil {
		return core.SuggestedProject{}, err
	}
	if err := p.Validate(); err != nil {
		return core.SuggestedProject{}, err
	}
	p.GeneratedOn = today
	s.cached = &p

	if s.sync != nil {
		s.sync.Dispatch(gateway.KeySpark, p)
	}
	s.log.InfoContext(ctx, "Suggestion generated", "title", p.Title, "date", today.String())
	return p, nil
}

// Promote turns the cached suggestion into the Activator Document. Title,
// description, materials and difficulty carry over verbatim; instructions and
// the hero image are replaced with fixed placeholders, and the month is set
// from the wall clock. The suggestion's vibe does not survive promotion.
func (s *Service) Promote(ctx context.Context) (core.ActivatorDocument, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cached == nil {
		return core.ActivatorDocument{}, core.ErrMissingSuggested
	}

	doc := core.ActivatorDocument{
		Title:        s.cached.Title,
		Description:  s.cached.Description,
		Materials:    append([]string(nil), s.cached.Materials...),
		Instructions: append([]string(nil), core.PromotionInstructions...),
		ImageURL:     core.PromotionImageURL,
		Difficulty:   s.cached.Difficulty,
		Month:        s.now().Month().String(),
	}

	s.store.ReplaceActivator(doc)
	if s.sync != nil {
		s.sync.Dispatch(gateway.KeyActivator, doc)
	}
	s.log.InfoContext(ctx, "Suggestion promoted to activator", "title", doc.Title, "month", doc.Month)
	return doc, nil
}
