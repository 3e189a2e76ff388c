package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type MemberListItem struct {
	TeamID    snowflake.ID
	AccountID snowflake.ID
	RoleName  string
}

type Repository interface {
	WithTx(tx *gorm.DB) Repository
	InsertTeam(ctx context.Context, team Team) error
	InsertMembership(ctx context.Context, member Membership) error
	ListMembers(ctx context.Context, teamID snowflake.ID) ([]MemberListItem, error)
}
