package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Role is a team membership role. Rows are seeded and never created on demand.
type Role struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:varchar(64);not null;uniqueIndex:ux_roles_name"`
	CreatedAt time.Time    `json:"-" gorm:"not null"`
}

func (Role) TableName() string { return "roles" }

// Style is a fashion style label profiles are tagged with.
type Style struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:varchar(100);not null;uniqueIndex:ux_styles_name"`
	CreatedAt time.Time    `json:"-" gorm:"not null"`
}

func (Style) TableName() string { return "styles" }

// City locates a showroom. Unknown cities are created during registration.
type City struct {
	ID        snowflake.ID `json:"id" gorm:"primaryKey"`
	Name      string       `json:"name" gorm:"type:varchar(255);not null;uniqueIndex:ux_cities_name"`
	Country   string       `json:"country" gorm:"type:varchar(100);not null"`
	CreatedAt time.Time    `json:"-" gorm:"not null"`
}

func (City) TableName() string { return "cities" }
