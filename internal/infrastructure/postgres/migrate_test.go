package postgres

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationVersions_Ordenadas(t *testing.T) {
	versions, err := migrationVersions()
	require.NoError(t, err)
	require.NotEmpty(t, versions)
	assert.Equal(t, "0001_init.sql", versions[0])
	for i := 1; i < len(versions); i++ {
		assert.Less(t, versions[i-1], versions[i])
	}
}

func TestInitMigration_TablasDelMotor(t *testing.T) {
	body, err := migrationFiles.ReadFile("migrations/0001_init.sql")
	require.NoError(t, err)
	sql := string(body)
	for _, table := range []string{
		"locations", "stock_lines", "warehouse_boxes", "stock_movements",
		"sales", "sale_lines", "returns", "return_lines", "transfer_shipments", "transfer_lines",
	} {
		assert.True(t, strings.Contains(sql, "CREATE TABLE IF NOT EXISTS "+table+" "), table)
	}
	assert.Contains(t, sql, "CHECK (current_stock >= 0)")
}
