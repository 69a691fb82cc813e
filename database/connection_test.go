package database_test

import (
	"context"
	"testing"

	"rewarder/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConnection_SessionSettings(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	var tz, app string
	require.NoError(t, testDB.DB.QueryRow(ctx, "SHOW timezone").Scan(&tz))
	require.NoError(t, testDB.DB.QueryRow(ctx, "SHOW application_name").Scan(&app))

	assert.Equal(t, "UTC", tz)
	assert.Equal(t, "rewarder", app)
	assert.NoError(t, testDB.DB.HealthCheck(ctx))
}

func TestHealthCheck_ClosedPool(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	testDB.DB.Close()

	assert.Error(t, testDB.DB.HealthCheck(context.Background()))
}
