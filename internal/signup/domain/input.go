package domain

import (
	"github.com/bwmarrin/snowflake"
	accountdomain "github.com/smallbiznis/atelier/internal/account/domain"
)

// Input is a validated and normalised registration. Exactly one of Brand
// and Showroom is set, matching Kind.
type Input struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Kind      accountdomain.Kind

	Brand    *BrandInput
	Showroom *ShowroomInput
}

type BrandInput struct {
	Name        string
	Description *string
	FoundedYear *int
	Styles      []string
}

type ShowroomInput struct {
	Name        string
	Description *string
	Address     string
	City        string
	Capacity    *int
	Styles      []string
}

// ProfileName returns the name of whichever variant is set.
func (in Input) ProfileName() string {
	switch {
	case in.Brand != nil:
		return in.Brand.Name
	case in.Showroom != nil:
		return in.Showroom.Name
	}
	return ""
}

// StyleLabels returns the requested style labels of whichever variant is set.
func (in Input) StyleLabels() []string {
	switch {
	case in.Brand != nil:
		return in.Brand.Styles
	case in.Showroom != nil:
		return in.Showroom.Styles
	}
	return nil
}

// Result identifies the rows created by a successful registration.
type Result struct {
	AccountID   snowflake.ID       `json:"account_id"`
	TeamID      snowflake.ID       `json:"team_id"`
	ProfileID   snowflake.ID       `json:"profile_id"`
	Kind        accountdomain.Kind `json:"kind"`
	Slug        string             `json:"slug"`
	StyleIDs    []snowflake.ID     `json:"style_ids"`
	CityCreated bool               `json:"city_created"`
}
