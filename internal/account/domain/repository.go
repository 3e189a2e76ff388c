package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Insert(ctx context.Context, account Account) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}
