//go:build e2e

package e2e

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"slotbook/internal/infra/db"
	"slotbook/internal/pkg/config"

	"github.com/docker/go-connections/nat"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresContainerOnce sync.Once
	postgresTestContainer testcontainers.Container

	testUser     = "test"
	testPassword = "testpass"
)

type containerInfo struct {
	Host string
	Port nat.Port
}

// SetupDatabase starts (or reuses) the shared Postgres container, creates a
// database unique to the calling test, applies the schema and returns a pool
// connected to it.
func SetupDatabase(t *testing.T) *pgxpool.Pool {
	t.Helper()

	info := startPostgres(t)

	dbName := "testdb_" + strings.ReplaceAll(uuid.New().String(), "-", "")
	adminDSN := fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
		testUser, testPassword, info.Host, info.Port.Port())

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	adminPool, err := pgxpool.New(ctx, adminDSN)
	require.NoError(t, err, "admin connection failed")
	defer adminPool.Close()

	var createErr error
	for attempt := range 5 {
		if attempt > 0 {
			time.Sleep(time.Duration(500*attempt) * time.Millisecond)
		}
		_, createErr = adminPool.Exec(ctx, "CREATE DATABASE "+dbName)
		if createErr == nil {
			break
		}
	}
	require.NoError(t, createErr, "failed to create test database")

	t.Cleanup(func() {
		cleanupCtx, cleanupCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cleanupCancel()
		cleanupPool, err := pgxpool.New(cleanupCtx, adminDSN)
		if err != nil {
			slog.Warn("cleanup connection failed", "database", dbName, "error", err.Error())
			return
		}
		defer cleanupPool.Close()
		if _, err := cleanupPool.Exec(cleanupCtx, "DROP DATABASE IF EXISTS "+dbName); err != nil {
			slog.Warn("failed to drop test database", "database", dbName, "error", err.Error())
		}
	})

	cfg := config.DBConfig{
		Host:     info.Host,
		Port:     info.Port.Port(),
		User:     testUser,
		Password: testPassword,
		DBName:   dbName,
		SSLMode:  "disable",
	}

	pool, err := db.NewPool(ctx, cfg)
	require.NoError(t, err, "database connection failed")
	t.Cleanup(pool.Close)

	require.NoError(t, db.ApplySchema(ctx, pool), "schema apply failed")
	return pool
}

func startPostgres(t *testing.T) containerInfo {
	t.Helper()
	postgresContainerOnce.Do(func() {
		req := testcontainers.ContainerRequest{
			Image:        "postgres:17",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     testUser,
				"POSTGRES_PASSWORD": testPassword,
				"POSTGRES_DB":       "postgres",
			},
			Tmpfs: map[string]string{
				"/var/lib/postgresql/data": "rw,size=512m",
			},
			Cmd: []string{
				"postgres",
				"-c", "fsync=off",
				"-c", "synchronous_commit=off",
				"-c", "full_page_writes=off",
				"-c", "max_connections=200",
				"-c", "log_statement=none",
			},
			WaitingFor: wait.ForSQL("5432/tcp", "pgx", func(host string, port nat.Port) string {
				return fmt.Sprintf("postgres://%s:%s@%s:%s/postgres?sslmode=disable",
					testUser, testPassword, host, port.Port())
			}).WithStartupTimeout(60 * time.Second),
			Labels: map[string]string{"purpose": "e2e-tests"},
		}

		startCtx, cancel := context.WithTimeout(context.Background(), 180*time.Second)
		defer cancel()

		var err error
		postgresTestContainer, err = testcontainers.GenericContainer(startCtx, testcontainers.GenericContainerRequest{
			ContainerRequest: req,
			Started:          true,
		})
		require.NoError(t, err, "failed to start postgres container")
	})

	ctx := context.Background()
	mappedPort, err := postgresTestContainer.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)
	host, err := postgresTestContainer.Host(ctx)
	require.NoError(t, err)

	return containerInfo{Host: host, Port: mappedPort}
}

// SeedCatalog inserts a service, a qualified provider and a working day, and
// returns the generated ids. Day is the UTC midnight of the working date.
func SeedCatalog(t *testing.T, pool *pgxpool.Pool, durationMin int, day time.Time, openHour, closeHour int) (serviceID, providerID uuid.UUID) {
	t.Helper()
	ctx := context.Background()

	serviceID = uuid.New()
	providerID = uuid.New()

	_, err := pool.Exec(ctx,
		`INSERT INTO services (id, name, duration_min) VALUES ($1, $2, $3)`,
		serviceID, "Consultation", durationMin)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO providers (id, name) VALUES ($1, $2)`,
		providerID, "Dana")
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO provider_services (provider_id, service_id) VALUES ($1, $2)`,
		providerID, serviceID)
	require.NoError(t, err)

	_, err = pool.Exec(ctx,
		`INSERT INTO working_hours (provider_id, work_date, start_time, end_time, is_available)
		 VALUES ($1, $2::date, $3, $4, TRUE)`,
		providerID, day, day.Add(time.Duration(openHour)*time.Hour), day.Add(time.Duration(closeHour)*time.Hour))
	require.NoError(t, err)

	return serviceID, providerID
}
