package seeders_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/storefront/app/models"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/database/seeders"
	"github.com/shashiranjanraj/storefront/pkg/auth"
	"github.com/shashiranjanraj/storefront/pkg/database/dbtest"
)

func TestSeedingIsIdempotent(t *testing.T) {
	config.Set("ADMIN_EMAIL", "root@shop.test")
	config.Set("ADMIN_PASSWORD", "topsecret1")
	t.Cleanup(config.Reset)

	db := dbtest.New(t, models.All()...)
	ctx := context.Background()

	require.NoError(t, seeders.RunAll(ctx, db, io.Discard))
	require.NoError(t, seeders.RunAll(ctx, db, io.Discard))

	var admins []models.User
	require.NoError(t, db.Where("role = ?", models.RoleAdmin).Find(&admins).Error)
	require.Len(t, admins, 1)
	assert.Equal(t, "root@shop.test", admins[0].Email)
	assert.True(t, auth.CheckPassword(admins[0].Password, "topsecret1"))

	var categories int64
	db.Model(&models.Category{}).Where("name = ?", seeders.StarterCategory).Count(&categories)
	assert.Equal(t, int64(1), categories)
}
