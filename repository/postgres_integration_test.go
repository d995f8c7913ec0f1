package repository

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"testing"
	"time"

	"pricewise/config"
	"pricewise/database"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Set PRICEWISE_PG_IT=1 to run against a throwaway postgres container.
func TestRepositoriesPostgres(t *testing.T) {
	if os.Getenv("PRICEWISE_PG_IT") != "1" {
		t.Skip("set PRICEWISE_PG_IT=1 to run postgres integration tests")
	}

	ctx := context.Background()

	// suppress logging
	testcontainers.Logger = log.New(io.Discard, "", 0)

	pg, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		Started: true,
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "pricewise",
				"POSTGRES_PASSWORD": "pricewise",
				"POSTGRES_DB":       "pricewise",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := pg.Terminate(ctx); err != nil {
			t.Fatal(err)
		}
	})

	host, err := pg.Host(ctx)
	require.NoError(t, err)
	port, err := pg.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://pricewise:pricewise@%s:%s/pricewise?sslmode=disable", host, port.Port())
	db, err := database.Connect(ctx, config.DatabaseConfig{Driver: database.DriverPostgres, URL: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.CreateTables(ctx, db))

	exerciseRepositories(t, db)
}
