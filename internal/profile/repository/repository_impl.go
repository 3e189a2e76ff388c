package repository

import (
	"context"

	"github.com/smallbiznis/atelier/internal/profile/domain"
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

func (r *repository) InsertProfile(ctx context.Context, profile domain.Profile) error {
	if err := profile.Validate(); err != nil {
		return err
	}
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO profiles (id, team_id, kind, name, slug, description, founded_year, address, city_id, capacity, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		profile.ID,
		profile.TeamID,
		string(profile.Kind),
		profile.Name,
		profile.Slug,
		profile.Description,
		profile.FoundedYear,
		profile.Address,
		profile.CityID,
		profile.Capacity,
		profile.CreatedAt,
	).Error
}

func (r *repository) InsertStyleTag(ctx context.Context, tag domain.StyleTag) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO profile_styles (profile_id, style_id, created_at) VALUES (?, ?, ?)`,
		tag.ProfileID,
		tag.StyleID,
		tag.CreatedAt,
	).Error
}

func (r *repository) InsertStatistics(ctx context.Context, stats domain.Statistics) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO profile_statistics (id, profile_id, views, contacts_received, collaborations, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		stats.ID,
		stats.ProfileID,
		stats.Views,
		stats.ContactsReceived,
		stats.Collaborations,
		stats.UpdatedAt,
	).Error
}
