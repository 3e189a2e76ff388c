package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertProfile(ctx context.Context, profile Profile) error
	InsertStyleTag(ctx context.Context, tag StyleTag) error
	InsertStatistics(ctx context.Context, stats Statistics) error
}
