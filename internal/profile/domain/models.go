// Package domain contains the public profile a team presents on the
// marketplace, either a brand or a showroom.
package domain

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/atelier/internal/account/domain"
)

var ErrInvalidVariant = errors.New("invalid profile variant")

// Profile is stored as one row per team. Brand rows carry FoundedYear;
// showroom rows carry Address, CityID and optionally Capacity.
type Profile struct {
	ID          snowflake.ID       `gorm:"primaryKey" json:"id"`
	TeamID      snowflake.ID       `gorm:"not null;uniqueIndex:ux_profiles_team" json:"team_id"`
	Kind        accountdomain.Kind `gorm:"type:varchar(16);not null" json:"kind"`
	Name        string             `gorm:"type:varchar(255);not null" json:"name"`
	Slug        string             `gorm:"type:varchar(255);not null;index:ix_profiles_slug" json:"slug"`
	Description *string            `gorm:"type:text" json:"description,omitempty"`
	FoundedYear *int               `gorm:"column:founded_year" json:"founded_year,omitempty"`
	Address     *string            `gorm:"type:varchar(255)" json:"address,omitempty"`
	CityID      *snowflake.ID      `gorm:"column:city_id" json:"city_id,omitempty"`
	Capacity    *int               `json:"capacity,omitempty"`
	CreatedAt   time.Time          `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Profile) TableName() string { return "profiles" }

type BrandFields struct {
	Name        string
	Description *string
	FoundedYear *int
}

type ShowroomFields struct {
	Name        string
	Description *string
	Address     string
	CityID      snowflake.ID
	Capacity    *int
}

func NewBrand(id, teamID snowflake.ID, slug string, f BrandFields, now time.Time) Profile {
	return Profile{
		ID:          id,
		TeamID:      teamID,
		Kind:        accountdomain.KindBrand,
		Name:        f.Name,
		Slug:        slug,
		Description: f.Description,
		FoundedYear: f.FoundedYear,
		CreatedAt:   now,
	}
}

func NewShowroom(id, teamID snowflake.ID, slug string, f ShowroomFields, now time.Time) Profile {
	address := f.Address
	cityID := f.CityID
	return Profile{
		ID:          id,
		TeamID:      teamID,
		Kind:        accountdomain.KindShowroom,
		Name:        f.Name,
		Slug:        slug,
		Description: f.Description,
		Address:     &address,
		CityID:      &cityID,
		Capacity:    f.Capacity,
		CreatedAt:   now,
	}
}

// Validate checks that only the fields of the profile's variant are set.
func (p Profile) Validate() error {
	switch p.Kind {
	case accountdomain.KindBrand:
		if p.Address != nil || p.CityID != nil || p.Capacity != nil {
			return ErrInvalidVariant
		}
	case accountdomain.KindShowroom:
		if p.FoundedYear != nil || p.Address == nil || p.CityID == nil {
			return ErrInvalidVariant
		}
	default:
		return ErrInvalidVariant
	}
	return nil
}

// StyleTag attaches a style to a profile.
type StyleTag struct {
	ProfileID snowflake.ID `gorm:"primaryKey" json:"profile_id"`
	StyleID   snowflake.ID `gorm:"primaryKey" json:"style_id"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (StyleTag) TableName() string { return "profile_styles" }

// Statistics holds the engagement counters of a profile.
type Statistics struct {
	ID               snowflake.ID `gorm:"primaryKey" json:"id"`
	ProfileID        snowflake.ID `gorm:"not null;uniqueIndex:ux_profile_statistics_profile" json:"profile_id"`
	Views            int64        `gorm:"not null;default:0" json:"views"`
	ContactsReceived int64        `gorm:"column:contacts_received;not null;default:0" json:"contacts_received"`
	Collaborations   int64        `gorm:"not null;default:0" json:"collaborations"`
	UpdatedAt        time.Time    `gorm:"not null" json:"updated_at"`
}

// TableName sets the database table name.
func (Statistics) TableName() string { return "profile_statistics" }
