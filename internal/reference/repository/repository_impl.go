package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/atelier/internal/reference/domain"
	"gorm.io/gorm"
)

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) domain.Repository {
	return &repository{db: tx}
}

func (r *repository) FindRoleByName(ctx context.Context, name string) (*domain.Role, error) {
	var role domain.Role
	if err := first(r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)), &role); err != nil {
		return nil, err
	}
	return &role, nil
}

func (r *repository) FindStyleByName(ctx context.Context, name string) (*domain.Style, error) {
	var style domain.Style
	if err := first(r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)), &style); err != nil {
		return nil, err
	}
	return &style, nil
}

// FirstStyle returns the style with the lowest id.
func (r *repository) FirstStyle(ctx context.Context) (*domain.Style, error) {
	var style domain.Style
	if err := first(r.db.WithContext(ctx).Order("id ASC"), &style); err != nil {
		return nil, err
	}
	return &style, nil
}

func (r *repository) FindCityByName(ctx context.Context, name string) (*domain.City, error) {
	var city domain.City
	if err := first(r.db.WithContext(ctx).Where("name = ?", strings.TrimSpace(name)), &city); err != nil {
		return nil, err
	}
	return &city, nil
}

func (r *repository) InsertCity(ctx context.Context, city domain.City) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO cities (id, name, country, created_at) VALUES (?, ?, ?, ?)`,
		city.ID,
		city.Name,
		city.Country,
		city.CreatedAt,
	).Error
}

func (r *repository) ListStyles(ctx context.Context) ([]domain.Style, error) {
	var styles []domain.Style
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&styles).Error; err != nil {
		return nil, err
	}
	return styles, nil
}

// ListCities returns up to limit cities ordered by name, starting after afterName.
func (r *repository) ListCities(ctx context.Context, afterName string, limit int) ([]domain.City, error) {
	query := r.db.WithContext(ctx).Order("name ASC")
	if afterName != "" {
		query = query.Where("name > ?", afterName)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}

	var cities []domain.City
	if err := query.Find(&cities).Error; err != nil {
		return nil, err
	}
	return cities, nil
}

func first(query *gorm.DB, dest any) error {
	err := query.First(dest).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrNotFound
	}
	return err
}
