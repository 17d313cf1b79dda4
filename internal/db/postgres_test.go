package db

import (
	"testing"

	"ecoshop/internal/config"

	"github.com/stretchr/testify/assert"
)

func TestDSN(t *testing.T) {
	cfg := &config.Config{
		DBHost: "db", DBPort: "5433", DBUser: "shop", DBPass: "pw", DBName: "ecoshop", DBSSLMode: "disable",
	}
	assert.Equal(t, "host=db port=5433 user=shop password=pw dbname=ecoshop sslmode=disable", DSN(cfg))
}
