// Package seed installs the lookup rows registration depends on.
package seed

import (
	"context"
	"errors"
	"time"

	"github.com/smallbiznis/atelier/internal/idgen"
	referencedomain "github.com/smallbiznis/atelier/internal/reference/domain"
	"gorm.io/gorm"
)

var (
	DefaultRoles  = []string{"admin", "member"}
	DefaultStyles = []string{"Casual", "Urbano", "Minimalista", "Bohemio", "Clásico", "Deportivo", "Vintage", "Sostenible"}
	DefaultCities = []string{"Madrid", "Barcelona", "Valencia", "Sevilla", "Bilbao"}
)

const DefaultCountry = "España"

// Summary counts the rows inserted by a seed run.
type Summary struct {
	Roles  int
	Styles int
	Cities int
}

// EnsureReferenceData inserts missing roles, styles and cities. Existing
// rows are left untouched, so it is safe to run on every start.
func EnsureReferenceData(ctx context.Context, db *gorm.DB, genID idgen.Generator) (Summary, error) {
	if db == nil {
		return Summary{}, errors.New("seed database handle is required")
	}
	if genID == nil {
		return Summary{}, errors.New("seed id generator is required")
	}

	var summary Summary
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		for _, name := range DefaultRoles {
			created, err := ensureRow(ctx, tx, &referencedomain.Role{}, name, func() any {
				return &referencedomain.Role{ID: genID.Generate(), Name: name, CreatedAt: now}
			})
			if err != nil {
				return err
			}
			if created {
				summary.Roles++
			}
		}

		for _, name := range DefaultStyles {
			created, err := ensureRow(ctx, tx, &referencedomain.Style{}, name, func() any {
				return &referencedomain.Style{ID: genID.Generate(), Name: name, CreatedAt: now}
			})
			if err != nil {
				return err
			}
			if created {
				summary.Styles++
			}
		}

		for _, name := range DefaultCities {
			created, err := ensureRow(ctx, tx, &referencedomain.City{}, name, func() any {
				return &referencedomain.City{ID: genID.Generate(), Name: name, Country: DefaultCountry, CreatedAt: now}
			})
			if err != nil {
				return err
			}
			if created {
				summary.Cities++
			}
		}
		return nil
	})
	if err != nil {
		return Summary{}, err
	}
	return summary, nil
}

func ensureRow(ctx context.Context, tx *gorm.DB, model any, name string, build func() any) (bool, error) {
	err := tx.WithContext(ctx).Where("name = ?", name).Take(model).Error
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := tx.WithContext(ctx).Create(build()).Error; err != nil {
		return false, err
	}
	return true, nil
}
