package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/atelier/internal/team/domain"
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

func (r *repository) InsertTeam(ctx context.Context, team domain.Team) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO teams (id, name, kind, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		team.ID,
		team.Name,
		team.Kind,
		team.CreatedBy,
		team.CreatedAt,
	).Error
}

func (r *repository) InsertMembership(ctx context.Context, member domain.Membership) error {
	return r.db.WithContext(ctx).Exec(
		`INSERT INTO team_members (id, team_id, account_id, role_id, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		member.ID,
		member.TeamID,
		member.AccountID,
		member.RoleID,
		member.CreatedAt,
	).Error
}

func (r *repository) ListMembers(ctx context.Context, teamID snowflake.ID) ([]domain.MemberListItem, error) {
	var items []domain.MemberListItem
	err := r.db.WithContext(ctx).Raw(
		`SELECT m.team_id, m.account_id, r.name AS role_name
		 FROM team_members m
		 JOIN roles r ON r.id = m.role_id
		 WHERE m.team_id = ?
		 ORDER BY m.created_at ASC`,
		teamID,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}

	return items, nil
}
