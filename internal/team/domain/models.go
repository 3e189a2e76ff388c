// Package domain contains persistence models for teams and their members.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Team groups the accounts that manage one profile. Every registration
// creates exactly one team.
type Team struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:varchar(255);not null" json:"name"`
	Kind      string       `gorm:"type:varchar(16);not null" json:"kind"`
	CreatedBy snowflake.ID `gorm:"column:created_by;not null" json:"created_by"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Team) TableName() string { return "teams" }

// Membership binds an account to a team with a role.
type Membership struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	TeamID    snowflake.ID `gorm:"not null;uniqueIndex:ux_team_members_team_account,priority:1" json:"team_id"`
	AccountID snowflake.ID `gorm:"not null;uniqueIndex:ux_team_members_team_account,priority:2" json:"account_id"`
	RoleID    snowflake.ID `gorm:"not null" json:"role_id"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "team_members" }
