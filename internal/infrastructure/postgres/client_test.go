package postgres

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fastygo/tasktrack/internal/config"
)

func TestDSN(t *testing.T) {
	assert.Equal(t, "postgres://explicit", DSN(config.DatabaseConfig{URL: "postgres://explicit", Host: "ignored"}))

	dsn := DSN(config.DatabaseConfig{
		Host: "db", Port: "5432", Name: "tasktrack",
		User: "app", Password: "p@ss word", SSLMode: "disable",
	})
	assert.Equal(t, "postgres://app:p%40ss%20word@db:5432/tasktrack?sslmode=disable", dsn)
}
