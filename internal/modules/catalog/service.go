// README: Catalog service: read-only listing and lookup with filters.
package catalog

import (
	"context"
	"errors"
	"strings"

	"breeze/internal/types"
)

var ErrNotFound = errors.New("product not found")

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// List returns products matching the filter. Filtering happens in-process over
// the cached listing; the catalog is small and read-mostly.
func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	all, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}

	search := strings.ToLower(strings.TrimSpace(f.Search))
	var out []Product
	for _, p := range all {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Featured && !p.Featured {
			continue
		}
		if search != "" && !matches(p, search) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *Service) Get(ctx context.Context, id types.ID) (*Product, error) {
	return s.store.Get(ctx, id)
}

func matches(p Product, search string) bool {
	return strings.Contains(strings.ToLower(p.Name), search) ||
		strings.Contains(strings.ToLower(p.Brand), search) ||
		strings.Contains(strings.ToLower(p.Description), search)
}
