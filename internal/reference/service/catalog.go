package service

import (
	"context"

	"github.com/smallbiznis/atelier/internal/reference/domain"
	"github.com/smallbiznis/atelier/pkg/db/pagination"
)

// Catalog serves the lookup lists shown on the registration form.
type Catalog struct {
	repo domain.Repository
}

func NewCatalog(repo domain.Repository) *Catalog {
	return &Catalog{repo: repo}
}

func (c *Catalog) ListStyles(ctx context.Context) ([]domain.Style, error) {
	return c.repo.ListStyles(ctx)
}

func (c *Catalog) ListCities(ctx context.Context, page pagination.Pagination) ([]domain.City, pagination.PageInfo, error) {
	after, err := page.After()
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	limit := page.Limit()
	cities, err := c.repo.ListCities(ctx, after, limit+1)
	if err != nil {
		return nil, pagination.PageInfo{}, err
	}

	return pagination.BuildCursorPageInfo(cities, limit, func(city domain.City) pagination.Cursor {
		return pagination.Cursor{Name: city.Name}
	})
}
