// Package products drives the product administration surface: debounced
// search-as-you-type, edits and optimistic deletion over the admin
// endpoints.
package products

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"moia/internal/api"
	"moia/internal/debounce"
)

// searchDebounce matches the type-ahead pause before a search fires.
const searchDebounce = 300 * time.Millisecond

// Client is the slice of the API client the product service needs.
type Client interface {
	ProductCount(ctx context.Context) (int, error)
	SearchProducts(ctx context.Context, q api.ProductQuery) ([]api.Product, error)
	EditProduct(ctx context.Context, id int, p api.Product) (string, error)
	DeleteProduct(ctx context.Context, id int) (string, error)
}

// Service holds the current result set and funnels searches through a
// debouncer so a typing burst produces one request.
type Service struct {
	client    Client
	log       zerolog.Logger
	debouncer *debounce.Debouncer

	mu        sync.Mutex
	results   []api.Product
	onResults func([]api.Product)
}

func NewService(client Client, log zerolog.Logger) *Service {
	return &Service{
		client:    client,
		log:       log.With().Str("component", "products").Logger(),
		debouncer: debounce.New(searchDebounce),
	}
}

// SetOnResults registers the callback that receives debounced search
// results. Runs on the debouncer's timer goroutine.
func (s *Service) SetOnResults(fn func([]api.Product)) {
	s.mu.Lock()
	s.onResults = fn
	s.mu.Unlock()
}

// Count returns the number of published products.
func (s *Service) Count(ctx context.Context) (int, error) {
	return s.client.ProductCount(ctx)
}

// Results returns a copy of the latest result set.
func (s *Service) Results() []api.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]api.Product, len(s.results))
	copy(out, s.results)
	return out
}

// SearchNow runs the query immediately and replaces the result set.
func (s *Service) SearchNow(ctx context.Context, q api.ProductQuery) ([]api.Product, error) {
	found, err := s.client.SearchProducts(ctx, q)
	if err != nil {
		s.log.Error().Err(err).Msg("search products")
		return nil, err
	}
	s.mu.Lock()
	s.results = found
	notify := s.onResults
	s.mu.Unlock()
	if notify != nil {
		notify(s.Results())
	}
	return s.Results(), nil
}

// Search schedules a debounced search. Only the last query of a typing
// burst reaches the backend; failures are logged and the previous result
// set stays.
func (s *Service) Search(q api.ProductQuery) {
	s.debouncer.Call(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if _, err := s.SearchNow(ctx, q); err != nil {
			s.log.Warn().Err(err).Msg("debounced search failed")
		}
	})
}

// Edit updates a product and, on success, patches it into the result set.
// A duplicate name comes back as a *api.FieldError from the client.
func (s *Service) Edit(ctx context.Context, id int, p api.Product) (string, error) {
	msg, err := s.client.EditProduct(ctx, id, p)
	if err != nil {
		return "", err
	}
	s.mu.Lock()
	for i := range s.results {
		if s.results[i].ID == id {
			p.ID = id
			s.results[i] = p
			break
		}
	}
	s.mu.Unlock()
	return msg, nil
}

// Delete removes a product. The entry leaves the result set immediately;
// a backend failure is returned but not compensated, the next search
// reconciles.
func (s *Service) Delete(ctx context.Context, id int) (string, error) {
	s.mu.Lock()
	kept := s.results[:0]
	for _, p := range s.results {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	s.results = kept
	s.mu.Unlock()

	msg, err := s.client.DeleteProduct(ctx, id)
	if err != nil {
		s.log.Error().Err(err).Int("product", id).Msg("delete product")
		return "", err
	}
	return msg, nil
}

// Close stops any pending debounced search.
func (s *Service) Close() {
	s.debouncer.Stop()
}
