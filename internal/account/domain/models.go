// Package domain contains persistence models for registered accounts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Kind distinguishes the two sides of the marketplace.
type Kind string

const (
	KindBrand    Kind = "brand"
	KindShowroom Kind = "showroom"
)

func (k Kind) Valid() bool {
	return k == KindBrand || k == KindShowroom
}

const StatusActive = "active"

// Account is a registered user. Email is stored lower-cased and is unique.
type Account struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Email        string       `gorm:"type:varchar(255);not null;uniqueIndex:ux_accounts_email" json:"email"`
	PasswordHash string       `gorm:"column:password_hash;type:varchar(255);not null" json:"-"`
	FirstName    string       `gorm:"column:first_name;type:varchar(255);not null" json:"first_name"`
	LastName     string       `gorm:"column:last_name;type:varchar(255);not null" json:"last_name"`
	Kind         Kind         `gorm:"type:varchar(16);not null" json:"kind"`
	Status       string       `gorm:"type:varchar(16);not null" json:"status"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Account) TableName() string { return "accounts" }
