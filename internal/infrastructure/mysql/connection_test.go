package mysql

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"storefront/internal/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DatabaseConfig{
		Host:     "db.internal",
		Port:     3307,
		User:     "shop",
		Password: "pw",
		Name:     "storefront",
	})

	assert.Contains(t, dsn, "shop:pw@tcp(db.internal:3307)/storefront")
	assert.Contains(t, dsn, "parseTime=true")
}
