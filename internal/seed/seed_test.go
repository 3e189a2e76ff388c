package seed_test

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/atelier/internal/migration"
	referencedomain "github.com/smallbiznis/atelier/internal/reference/domain"
	"github.com/smallbiznis/atelier/internal/seed"
	dbpkg "github.com/smallbiznis/atelier/pkg/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureReferenceDataIsIdempotent(t *testing.T) {
	db, err := dbpkg.NewTest()
	require.NoError(t, err)
	require.NoError(t, migration.Run(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	ctx := context.Background()
	first, err := seed.EnsureReferenceData(ctx, db, node)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{Roles: 2, Styles: 8, Cities: 5}, first)

	second, err := seed.EnsureReferenceData(ctx, db, node)
	require.NoError(t, err)
	assert.Equal(t, seed.Summary{}, second)

	var madrid referencedomain.City
	require.NoError(t, db.Where("name = ?", "Madrid").Take(&madrid).Error)
	assert.Equal(t, seed.DefaultCountry, madrid.Country)

	var styles int64
	require.NoError(t, db.Model(&referencedomain.Style{}).Count(&styles).Error)
	assert.EqualValues(t, len(seed.DefaultStyles), styles)
}

func TestEnsureReferenceDataRequiresHandles(t *testing.T) {
	_, err := seed.EnsureReferenceData(context.Background(), nil, nil)
	assert.Error(t, err)
}
