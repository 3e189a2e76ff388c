package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindRoleByName(ctx context.Context, name string) (*Role, error)
	FindStyleByName(ctx context.Context, name string) (*Style, error)
	FirstStyle(ctx context.Context) (*Style, error)
	FindCityByName(ctx context.Context, name string) (*City, error)
	InsertCity(ctx context.Context, city City) error
	ListStyles(ctx context.Context) ([]Style, error)
	ListCities(ctx context.Context, afterName string, limit int) ([]City, error)
}
